package core

// execImmediate implements Category 3: MOV/CMP/ADD/SUB Rd, #imm8.
func execImmediate(m *Machine, hw uint16) {
	op := (hw >> 11) & 0x3
	rd := int((hw >> 8) & 0x7)
	imm8 := uint32(hw & 0xFF)

	switch op {
	case 0: // MOV
		m.SetRegister(rd, imm8)
		m.CPSR.setNZ(imm8)
		// C, V unchanged.

	case 1: // CMP
		current := m.GetRegister(rd)
		result := current - imm8
		m.CPSR.setFlagsSub(current, imm8, result)

	case 2: // ADD
		current := m.GetRegister(rd)
		result := current + imm8
		m.CPSR.setFlagsAdd(current, imm8, result)
		m.SetRegister(rd, result)

	case 3: // SUB
		current := m.GetRegister(rd)
		result := current - imm8
		m.CPSR.setFlagsSub(current, imm8, result)
		m.SetRegister(rd, result)
	}
}

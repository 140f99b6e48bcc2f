package core

// execAddSubtract implements Category 2: ADD/SUB Rd, Rs, Rn|#imm3.
func execAddSubtract(m *Machine, hw uint16) {
	immediate := (hw >> 10) & 0x1
	isSub := (hw >> 9) & 0x1
	rnOrImm := uint32((hw >> 6) & 0x7)
	rs := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	op1 := m.GetRegister(rs)

	var op2 uint32
	if immediate == 1 {
		op2 = rnOrImm
	} else {
		op2 = m.GetRegister(int(rnOrImm))
	}

	var result uint32
	if isSub == 1 {
		result = op1 - op2
		m.CPSR.setFlagsSub(op1, op2, result)
	} else {
		result = op1 + op2
		m.CPSR.setFlagsAdd(op1, op2, result)
	}
	m.SetRegister(rd, result)
}

package core

// execSPRelativeLoadStore implements Category 11: LDR/STR Rd, [SP, #imm8*4].
func execSPRelativeLoadStore(m *Machine, hw uint16) {
	load := (hw >> 11) & 0x1
	rd := int((hw >> 8) & 0x7)
	imm8 := uint32(hw & 0xFF)

	addr := m.GetRegister(SP) + imm8*4

	if load == 1 {
		m.SetRegister(rd, readWord(m.Mem, addr))
	} else {
		writeWord(m.Mem, addr, m.GetRegister(rd))
	}
}

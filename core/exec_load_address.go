package core

// execLoadAddress implements Category 12: ADD Rd, PC|SP, #imm8*4 (no flags).
func execLoadAddress(m *Machine, hw uint16) {
	useSP := (hw >> 11) & 0x1
	rd := int((hw >> 8) & 0x7)
	imm8 := uint32(hw & 0xFF)

	var base uint32
	if useSP == 1 {
		base = m.GetRegister(SP)
	} else {
		base = pcOperand(m) &^ 3
	}
	m.SetRegister(rd, base+imm8*4)
}

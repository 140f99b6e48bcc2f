package core

// execAddOffsetToSP implements Category 13: ADD/SUB SP, #imm7*4 (no flags).
func execAddOffsetToSP(m *Machine, hw uint16) {
	negative := (hw >> 7) & 0x1
	imm7 := uint32(hw & 0x7F)
	offset := imm7 * 4

	if negative == 1 {
		m.SetRegister(SP, m.GetRegister(SP)-offset)
	} else {
		m.SetRegister(SP, m.GetRegister(SP)+offset)
	}
}

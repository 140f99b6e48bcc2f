package core

// execLoadStoreHalfword implements Category 10: STRH/LDRH Rd, [Rb, #imm5*2].
func execLoadStoreHalfword(m *Machine, hw uint16) {
	load := (hw >> 11) & 0x1
	offset5 := uint32((hw >> 6) & 0x1F)
	rb := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	addr := m.GetRegister(rb) + offset5*2

	if load == 1 {
		m.SetRegister(rd, uint32(readHalfword(m.Mem, addr)))
	} else {
		writeHalfword(m.Mem, addr, uint16(m.GetRegister(rd)))
	}
}

package core

// execLoadStoreSignExtended implements Category 8: STRH, LDRH, LDSB,
// LDSH, all addressed as [Rb, Ro].
func execLoadStoreSignExtended(m *Machine, hw uint16) {
	hBit := (hw >> 11) & 0x1
	sBit := (hw >> 10) & 0x1
	ro := int((hw >> 6) & 0x7)
	rb := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	addr := m.GetRegister(rb) + m.GetRegister(ro)

	switch {
	case sBit == 0 && hBit == 0: // STRH
		writeHalfword(m.Mem, addr, uint16(m.GetRegister(rd)))

	case sBit == 0 && hBit == 1: // LDRH (zero-extended)
		m.SetRegister(rd, uint32(readHalfword(m.Mem, addr)))

	case sBit == 1 && hBit == 0: // LDSB (sign-extended byte)
		b := m.Mem.ReadByte(addr)
		m.SetRegister(rd, signExtend(uint32(b), 8))

	default: // LDSH (sign-extended halfword)
		hw16 := readHalfword(m.Mem, addr)
		m.SetRegister(rd, signExtend(uint32(hw16), 16))
	}
}

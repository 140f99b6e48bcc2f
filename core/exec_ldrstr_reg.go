package core

// execLoadStoreRegisterOffset implements Category 7: LDR/STR/LDRB/STRB
// Rd, [Rb, Ro].
func execLoadStoreRegisterOffset(m *Machine, hw uint16) {
	load := (hw >> 11) & 0x1
	byteTransfer := (hw >> 10) & 0x1
	ro := int((hw >> 6) & 0x7)
	rb := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	addr := m.GetRegister(rb) + m.GetRegister(ro)

	if load == 1 {
		var value uint32
		if byteTransfer == 1 {
			value = uint32(m.Mem.ReadByte(addr))
		} else {
			value = readWord(m.Mem, addr)
		}
		m.SetRegister(rd, value)
	} else {
		value := m.GetRegister(rd)
		if byteTransfer == 1 {
			m.Mem.WriteByte(addr, byte(value))
		} else {
			writeWord(m.Mem, addr, value)
		}
	}
}

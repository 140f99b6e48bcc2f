package core

// execLoadStoreImmediateOffset implements Category 9: LDR/STR/LDRB/STRB
// Rd, [Rb, #imm].
func execLoadStoreImmediateOffset(m *Machine, hw uint16) {
	byteTransfer := (hw >> 12) & 0x1
	load := (hw >> 11) & 0x1
	offset5 := uint32((hw >> 6) & 0x1F)
	rb := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	var offset uint32
	if byteTransfer == 1 {
		offset = offset5
	} else {
		offset = offset5 * 4
	}
	addr := m.GetRegister(rb) + offset

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

package core

// execPCRelativeLoad implements Category 6: LDR Rd, [PC, #imm8*4].
// The assembler emits offsets assuming PC is two half-words ahead of the
// current instruction; that compensation is pcOperand, further word-aligned
// by clearing bit 1 (and bit 0, always already clear).
func execPCRelativeLoad(m *Machine, hw uint16) {
	rd := int((hw >> 8) & 0x7)
	imm8 := uint32(hw & 0xFF)

	base := pcOperand(m) &^ 3
	addr := base + imm8*4

	value := readWord(m.Mem, addr)
	m.SetRegister(rd, value)
}

package core

// execUnconditionalBranch implements Category 18: B offset11.
func execUnconditionalBranch(m *Machine, hw uint16) {
	offset11 := uint32(hw & 0x7FF)
	offset := signExtend(offset11<<1, 12)
	m.R[PC] = pcOperand(m) + offset
}

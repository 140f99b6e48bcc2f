package core

// execLongBranchWithLink implements Category 19: BL offset23, encoded as
// two consecutive half-words sharing the H bit to distinguish the high
// and low halves of the offset.
//
// The first half (H=0) stashes its 11 high offset bits, shifted into
// position, in LR. The second half (H=1) combines that with its own 11
// low bits, sign-extends the result to a 23-bit (pre-shift-by-1) branch
// offset, and computes the call target from the already-incremented PC
// with no further pipeline compensation, since the offset was computed
// against the second half-word's own fetch address.
func execLongBranchWithLink(m *Machine, hw uint16) {
	h := (hw >> 11) & 0x1
	offset11 := uint32(hw & 0x7FF)

	if h == 0 {
		m.SetRegister(LR, offset11<<12)
		return
	}

	combined := m.GetRegister(LR) | (offset11 << 1)
	total := signExtend(combined, 23)
	target := m.R[PC] + total
	newLR := m.R[PC] | 1

	m.SetRegister(LR, newLR)
	m.R[PC] = target
}

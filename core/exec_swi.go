package core

// execSoftwareInterrupt implements Category 17: SWI imm8.
//
// LR is set to the already-incremented PC (no further pipeline
// compensation, per the category's own pipeline note), and control is
// handed to the host's SoftwareInterrupt handler rather than to any
// in-core dispatch table.
func execSoftwareInterrupt(m *Machine, hw uint16) {
	imm8 := uint8(hw & 0xFF)

	m.SetRegister(LR, m.R[PC])
	m.Mem.SoftwareInterrupt(m, imm8)
}

package core

// execMoveShiftedRegister implements Category 1: LSL/LSR/ASR Rd, Rs, #offset5.
// op=3 is reserved and terminates the machine.
func execMoveShiftedRegister(m *Machine, hw uint16) {
	op := (hw >> 11) & 0x3
	offset5 := uint32((hw >> 6) & 0x1F)
	rs := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	value := m.GetRegister(rs)

	var kind ShiftKind
	switch op {
	case 0:
		kind = ShiftLSL
	case 1:
		kind = ShiftLSR
	case 2:
		kind = ShiftASR
	default:
		m.Terminated = true
		return
	}

	result, carry := shiftCategory1(kind, value, offset5)
	if kind == ShiftLSL && offset5 == 0 {
		carry = m.CPSR.C // LSL by 0 leaves carry untouched
	}

	m.SetRegister(rd, result)
	m.CPSR.setNZ(result)
	m.CPSR.C = carry
}

package core

// execPushPop implements Category 14: PUSH/POP {Rlist}, with the
// optional LR (push) / PC (pop) slot selected by the R bit.
func execPushPop(m *Machine, hw uint16) {
	load := (hw >> 11) & 0x1
	rBit := (hw >> 8) & 0x1
	rlist := uint8(hw & 0xFF)

	if load == 0 {
		// PUSH: registers 15 down to 0; only LR (14) can additionally be
		// selected via rBit, R0-R7 via rlist. Each selected register is
		// written to a newly-decremented SP, high register first.
		if rBit == 1 {
			m.SetRegister(SP, m.GetRegister(SP)-4)
			writeWord(m.Mem, m.GetRegister(SP), m.GetRegister(LR))
		}
		for i := 7; i >= 0; i-- {
			if rlist&(1<<uint(i)) == 0 {
				continue
			}
			m.SetRegister(SP, m.GetRegister(SP)-4)
			writeWord(m.Mem, m.GetRegister(SP), m.GetRegister(i))
		}
		return
	}

	// POP: registers 0 up to 15; R0-R7 via rlist, then PC via rBit.
	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		value := readWord(m.Mem, m.GetRegister(SP))
		m.SetRegister(SP, m.GetRegister(SP)+4)
		m.SetRegister(i, value)
	}
	if rBit == 1 {
		value := readWord(m.Mem, m.GetRegister(SP))
		m.SetRegister(SP, m.GetRegister(SP)+4)
		m.R[PC] = value &^ 1
	}
}

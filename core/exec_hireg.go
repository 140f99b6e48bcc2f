package core

// execHiRegisterOrBX implements Category 5: ADD/CMP/MOV between any
// combination of low/high registers, and BX. ADD and MOV here do not
// update flags (architectural quirk); CMP does.
func execHiRegisterOrBX(m *Machine, hw uint16) {
	op := (hw >> 8) & 0x3
	h1 := (hw >> 7) & 0x1
	h2 := (hw >> 6) & 0x1
	rsField := int((hw >> 3) & 0x7)
	rdField := int(hw & 0x7)

	rs := rsField
	if h2 == 1 {
		rs += 8
	}
	rd := rdField
	if h1 == 1 {
		rd += 8
	}

	switch op {
	case 0: // ADD
		m.SetRegister(rd, m.GetRegister(rd)+m.GetRegister(rs))
		if rd == PC {
			m.R[PC] &^= 1
		}

	case 1: // CMP
		if h1 == 0 && h2 == 0 {
			// Both operands low registers: reserved, belongs to Category 4.
			m.Terminated = true
			return
		}
		a := m.GetRegister(rd)
		b := m.GetRegister(rs)
		result := a - b
		m.CPSR.setFlagsSub(a, b, result)

	case 2: // MOV
		m.SetRegister(rd, m.GetRegister(rs))
		if rd == PC {
			m.R[PC] &^= 1
		}

	case 3: // BX
		target := m.GetRegister(rs)
		m.R[PC] = target &^ 1
	}
}

package core

// execMultipleLoadStore implements Category 15: STMIA/LDMIA Rb!, {Rlist}.
//
// When Rb is itself in Rlist and this is a store, this implementation
// always stores Rb's original (pre-instruction) value, because the base
// register write-back happens once, after the loop. The strict ARM rule
// stores the original value only when Rb is the lowest register in Rlist,
// and the written-back value otherwise.
func execMultipleLoadStore(m *Machine, hw uint16) {
	load := (hw >> 11) & 0x1
	rb := int((hw >> 8) & 0x7)
	rlist := uint8(hw & 0xFF)

	addr := m.GetRegister(rb)

	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		if load == 1 {
			m.SetRegister(i, readWord(m.Mem, addr))
		} else {
			writeWord(m.Mem, addr, m.GetRegister(i))
		}
		addr += 4
	}

	m.SetRegister(rb, addr)
}

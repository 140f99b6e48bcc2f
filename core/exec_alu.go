package core

// ALU opcodes for Category 4, in encoded order.
const (
	aluAND = 0x0
	aluEOR = 0x1
	aluLSL = 0x2
	aluLSR = 0x3
	aluASR = 0x4
	aluADC = 0x5
	aluSBC = 0x6
	aluROR = 0x7
	aluTST = 0x8
	aluNEG = 0x9
	aluCMP = 0xA
	aluCMN = 0xB
	aluORR = 0xC
	aluMUL = 0xD
	aluBIC = 0xE
	aluMVN = 0xF
)

// execALU implements Category 4: two-register ALU operations.
func execALU(m *Machine, hw uint16) {
	op := (hw >> 6) & 0xF
	rs := int((hw >> 3) & 0x7)
	rd := int(hw & 0x7)

	dst := m.GetRegister(rd)
	src := m.GetRegister(rs)

	writeResult := true
	var result uint32
	var carry, overflow bool
	haveCarry, haveOverflow := false, false

	switch op {
	case aluAND:
		result = dst & src
	case aluEOR:
		result = dst ^ src
	case aluLSL:
		amount := src & 0xFF
		result = shiftAmountValue(ShiftLSL, dst, amount)
		carry = shiftAmountCarry(ShiftLSL, dst, amount)
		haveCarry = amount != 0
	case aluLSR:
		amount := src & 0xFF
		result = shiftAmountValue(ShiftLSR, dst, amount)
		carry = shiftAmountCarry(ShiftLSR, dst, amount)
		haveCarry = amount != 0
	case aluASR:
		amount := src & 0xFF
		result = shiftAmountValue(ShiftASR, dst, amount)
		carry = shiftAmountCarry(ShiftASR, dst, amount)
		haveCarry = amount != 0
	case aluADC:
		carryIn := uint32(0)
		if m.CPSR.C {
			carryIn = 1
		}
		mid := dst + src
		result = mid + carryIn
		carry = addCarry(dst, src) || addCarry(mid, carryIn)
		overflow = addOverflow(dst, src, result)
		haveCarry, haveOverflow = true, true
	case aluSBC:
		// dst - src - borrow == dst + ^src + carryIn, so SBC reuses the
		// same add-with-carry decomposition as ADC instead of computing
		// src+borrow directly: that sum wraps to 0 when src is 0xFFFFFFFF
		// and borrow is 1, which fed a wrong "no borrow" carry result.
		carryIn := uint32(0)
		if m.CPSR.C {
			carryIn = 1
		}
		notSrc := ^src
		mid := dst + notSrc
		result = mid + carryIn
		carry = addCarry(dst, notSrc) || addCarry(mid, carryIn)
		overflow = addOverflow(dst, notSrc, result)
		haveCarry, haveOverflow = true, true
	case aluROR:
		amount := src & 0xFF
		result = shiftAmountValue(ShiftROR, dst, amount)
		carry = shiftAmountCarry(ShiftROR, dst, amount)
		haveCarry = amount != 0
	case aluTST:
		result = dst & src
		writeResult = false
	case aluNEG:
		result = 0 - src
		carry = subCarry(0, src)
		overflow = subOverflow(0, src, result)
		haveCarry, haveOverflow = true, true
	case aluCMP:
		result = dst - src
		carry = subCarry(dst, src)
		overflow = subOverflow(dst, src, result)
		haveCarry, haveOverflow = true, true
		writeResult = false
	case aluCMN:
		result = dst + src
		carry = addCarry(dst, src)
		overflow = addOverflow(dst, src, result)
		haveCarry, haveOverflow = true, true
		writeResult = false
	case aluORR:
		result = dst | src
	case aluMUL:
		result = dst * src
	case aluBIC:
		result = dst &^ src
	case aluMVN:
		result = ^src
	}

	m.CPSR.setNZ(result)
	if haveCarry {
		m.CPSR.C = carry
	}
	if haveOverflow {
		m.CPSR.V = overflow
	}

	if writeResult {
		m.SetRegister(rd, result)
	}
}

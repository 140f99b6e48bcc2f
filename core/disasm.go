package core

import "fmt"

// regName renders register index i using the conventional Thumb asm
// names for SP/LR/PC and "Rn" otherwise.
func regName(i int) string {
	switch i {
	case SP:
		return "SP"
	case LR:
		return "LR"
	case PC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", i)
	}
}

// rlistString renders an 8-bit Rlist mask as a brace-delimited register
// list, the syntax PUSH/POP/STMIA/LDMIA share with the parser/encoder.
func rlistString(rlist uint8, extra string) string {
	s := "{"
	first := true
	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) == 0 {
			continue
		}
		if !first {
			s += ", "
		}
		s += regName(i)
		first = false
	}
	if extra != "" {
		if !first {
			s += ", "
		}
		s += extra
	}
	return s + "}"
}

var aluMnemonics = [...]string{
	aluAND: "AND", aluEOR: "EOR", aluLSL: "LSL", aluLSR: "LSR",
	aluASR: "ASR", aluADC: "ADC", aluSBC: "SBC", aluROR: "ROR",
	aluTST: "TST", aluNEG: "NEG", aluCMP: "CMP", aluCMN: "CMN",
	aluORR: "ORR", aluMUL: "MUL", aluBIC: "BIC", aluMVN: "MVN",
}

// Disassemble renders a single decoded half-word as one line of Thumb
// assembly text, given the address it was fetched from (needed for the
// PC-relative categories). It is a pure function over the instruction
// bits: it has no knowledge of register contents or symbol names, so a
// host wanting symbolicated output (the debugger's disassembly pane,
// the tools linter) layers that on top.
func Disassemble(halfword uint16, pc uint32) string {
	cat := Decode(halfword)

	switch cat {
	case CatMoveShiftedRegister:
		op := (halfword >> 11) & 0x3
		offset5 := (halfword >> 6) & 0x1F
		rs := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		mnem := [...]string{"LSL", "LSR", "ASR", "???"}[op]
		return fmt.Sprintf("%s %s, %s, #%d", mnem, regName(rd), regName(rs), offset5)

	case CatAddSubtract:
		immediate := (halfword >> 10) & 0x1
		isSub := (halfword >> 9) & 0x1
		rnOrImm := (halfword >> 6) & 0x7
		rs := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		mnem := "ADD"
		if isSub == 1 {
			mnem = "SUB"
		}
		if immediate == 1 {
			return fmt.Sprintf("%s %s, %s, #%d", mnem, regName(rd), regName(rs), rnOrImm)
		}
		return fmt.Sprintf("%s %s, %s, %s", mnem, regName(rd), regName(rs), regName(int(rnOrImm)))

	case CatImmediate:
		op := (halfword >> 11) & 0x3
		rd := int((halfword >> 8) & 0x7)
		imm8 := halfword & 0xFF
		mnem := [...]string{"MOV", "CMP", "ADD", "SUB"}[op]
		return fmt.Sprintf("%s %s, #%d", mnem, regName(rd), imm8)

	case CatALU:
		op := (halfword >> 6) & 0xF
		rs := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		return fmt.Sprintf("%s %s, %s", aluMnemonics[op], regName(rd), regName(rs))

	case CatHiRegisterOrBX:
		op := (halfword >> 8) & 0x3
		h1 := (halfword >> 7) & 0x1
		h2 := (halfword >> 6) & 0x1
		rs := int((halfword >> 3) & 0x7)
		if h2 == 1 {
			rs += 8
		}
		rd := int(halfword & 0x7)
		if h1 == 1 {
			rd += 8
		}
		switch op {
		case 0:
			return fmt.Sprintf("ADD %s, %s", regName(rd), regName(rs))
		case 1:
			return fmt.Sprintf("CMP %s, %s", regName(rd), regName(rs))
		case 2:
			return fmt.Sprintf("MOV %s, %s", regName(rd), regName(rs))
		default:
			return fmt.Sprintf("BX %s", regName(rs))
		}

	case CatPCRelativeLoad:
		rd := int((halfword >> 8) & 0x7)
		imm8 := uint32(halfword & 0xFF)
		return fmt.Sprintf("LDR %s, [PC, #%d]", regName(rd), imm8*4)

	case CatLoadStoreRegisterOffset:
		load := (halfword >> 11) & 0x1
		byteTransfer := (halfword >> 10) & 0x1
		ro := int((halfword >> 6) & 0x7)
		rb := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		mnem := "STR"
		if load == 1 {
			mnem = "LDR"
		}
		if byteTransfer == 1 {
			mnem += "B"
		}
		return fmt.Sprintf("%s %s, [%s, %s]", mnem, regName(rd), regName(rb), regName(ro))

	case CatLoadStoreSignExtended:
		hBit := (halfword >> 11) & 0x1
		sBit := (halfword >> 10) & 0x1
		ro := int((halfword >> 6) & 0x7)
		rb := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		var mnem string
		switch {
		case sBit == 0 && hBit == 0:
			mnem = "STRH"
		case sBit == 0 && hBit == 1:
			mnem = "LDRH"
		case sBit == 1 && hBit == 0:
			mnem = "LDSB"
		default:
			mnem = "LDSH"
		}
		return fmt.Sprintf("%s %s, [%s, %s]", mnem, regName(rd), regName(rb), regName(ro))

	case CatLoadStoreImmediateOffset:
		byteTransfer := (halfword >> 12) & 0x1
		load := (halfword >> 11) & 0x1
		offset5 := uint32((halfword >> 6) & 0x1F)
		rb := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		mnem := "STR"
		if load == 1 {
			mnem = "LDR"
		}
		offset := offset5 * 4
		if byteTransfer == 1 {
			mnem += "B"
			offset = offset5
		}
		return fmt.Sprintf("%s %s, [%s, #%d]", mnem, regName(rd), regName(rb), offset)

	case CatLoadStoreHalfword:
		load := (halfword >> 11) & 0x1
		offset5 := uint32((halfword >> 6) & 0x1F)
		rb := int((halfword >> 3) & 0x7)
		rd := int(halfword & 0x7)
		mnem := "STRH"
		if load == 1 {
			mnem = "LDRH"
		}
		return fmt.Sprintf("%s %s, [%s, #%d]", mnem, regName(rd), regName(rb), offset5*2)

	case CatSPRelativeLoadStore:
		load := (halfword >> 11) & 0x1
		rd := int((halfword >> 8) & 0x7)
		imm8 := uint32(halfword & 0xFF)
		mnem := "STR"
		if load == 1 {
			mnem = "LDR"
		}
		return fmt.Sprintf("%s %s, [SP, #%d]", mnem, regName(rd), imm8*4)

	case CatLoadAddress:
		useSP := (halfword >> 11) & 0x1
		rd := int((halfword >> 8) & 0x7)
		imm8 := uint32(halfword & 0xFF)
		base := "PC"
		if useSP == 1 {
			base = "SP"
		}
		return fmt.Sprintf("ADD %s, %s, #%d", regName(rd), base, imm8*4)

	case CatAddOffsetToSP:
		negative := (halfword >> 7) & 0x1
		imm7 := uint32(halfword & 0x7F)
		mnem := "ADD"
		if negative == 1 {
			mnem = "SUB"
		}
		return fmt.Sprintf("%s SP, #%d", mnem, imm7*4)

	case CatPushPop:
		load := (halfword >> 11) & 0x1
		rBit := (halfword >> 8) & 0x1
		rlist := uint8(halfword & 0xFF)
		if load == 0 {
			extra := ""
			if rBit == 1 {
				extra = "LR"
			}
			return fmt.Sprintf("PUSH %s", rlistString(rlist, extra))
		}
		extra := ""
		if rBit == 1 {
			extra = "PC"
		}
		return fmt.Sprintf("POP %s", rlistString(rlist, extra))

	case CatMultipleLoadStore:
		load := (halfword >> 11) & 0x1
		rb := int((halfword >> 8) & 0x7)
		rlist := uint8(halfword & 0xFF)
		mnem := "STMIA"
		if load == 1 {
			mnem = "LDMIA"
		}
		return fmt.Sprintf("%s %s!, %s", mnem, regName(rb), rlistString(rlist, ""))

	case CatConditionalBranch:
		cond := ConditionCode((halfword >> 8) & 0xF)
		if cond == 0xE {
			return "??? (reserved cond)"
		}
		soffset8 := uint32(halfword & 0xFF)
		offset := signExtend(soffset8, 8) << 1
		target := pc + 4 + offset
		return fmt.Sprintf("B%s #0x%08X", cond, target)

	case CatSoftwareInterrupt:
		imm8 := halfword & 0xFF
		return fmt.Sprintf("SWI #%d", imm8)

	case CatUnconditionalBranch:
		offset11 := uint32(halfword & 0x7FF)
		offset := signExtend(offset11<<1, 12)
		target := pc + 4 + offset
		return fmt.Sprintf("B #0x%08X", target)

	case CatLongBranchWithLink:
		h := (halfword >> 11) & 0x1
		offset11 := uint32(halfword & 0x7FF)
		if h == 0 {
			return fmt.Sprintf("BL.hi #0x%04X", offset11)
		}
		return fmt.Sprintf("BL.lo #0x%04X", offset11)

	default:
		return fmt.Sprintf(".word 0x%04X", halfword)
	}
}

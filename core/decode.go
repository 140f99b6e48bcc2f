package core

// Category identifies one of the 19 Thumb-1 instruction formats, or the
// reserved/unrecognized bucket.
type Category int

const (
	CatUnknown Category = iota
	CatMoveShiftedRegister
	CatAddSubtract
	CatImmediate
	CatALU
	CatHiRegisterOrBX
	CatPCRelativeLoad
	CatLoadStoreRegisterOffset
	CatLoadStoreSignExtended
	CatLoadStoreImmediateOffset
	CatLoadStoreHalfword
	CatSPRelativeLoadStore
	CatLoadAddress
	CatAddOffsetToSP
	CatPushPop
	CatMultipleLoadStore
	CatConditionalBranch
	CatSoftwareInterrupt
	CatUnconditionalBranch
	CatLongBranchWithLink
)

var categoryNames = [...]string{
	CatUnknown:                  "UNKNOWN",
	CatMoveShiftedRegister:      "MOVE_SHIFTED_REGISTER",
	CatAddSubtract:              "ADD_SUBTRACT",
	CatImmediate:                "IMMEDIATE",
	CatALU:                      "ALU",
	CatHiRegisterOrBX:           "HI_REGISTER_OR_BX",
	CatPCRelativeLoad:           "PC_RELATIVE_LOAD",
	CatLoadStoreRegisterOffset:  "LOAD_STORE_REGISTER_OFFSET",
	CatLoadStoreSignExtended:    "LOAD_STORE_SIGN_EXTENDED",
	CatLoadStoreImmediateOffset: "LOAD_STORE_IMMEDIATE_OFFSET",
	CatLoadStoreHalfword:        "LOAD_STORE_HALFWORD",
	CatSPRelativeLoadStore:      "SP_RELATIVE_LOAD_STORE",
	CatLoadAddress:              "LOAD_ADDRESS",
	CatAddOffsetToSP:            "ADD_OFFSET_TO_SP",
	CatPushPop:                  "PUSH_POP",
	CatMultipleLoadStore:        "MULTIPLE_LOAD_STORE",
	CatConditionalBranch:        "CONDITIONAL_BRANCH",
	CatSoftwareInterrupt:        "SOFTWARE_INTERRUPT",
	CatUnconditionalBranch:      "UNCONDITIONAL_BRANCH",
	CatLongBranchWithLink:       "LONG_BRANCH_WITH_LINK",
}

// String returns the category's canonical name, for trace and stats output.
func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return "UNKNOWN"
	}
	return categoryNames[c]
}

// categoryTable maps the high byte of a half-word directly to its
// category, collapsing the prefix ladder into a single 256-entry lookup.
// Built once in init().
var categoryTable [256]Category

func init() {
	for hi := 0; hi < 256; hi++ {
		categoryTable[hi] = classifyHighByte(byte(hi))
	}
}

// classifyHighByte resolves the 19-entry prefix table in order. Two
// encodings overlap and are tested first: 00011XXX is add/subtract, not
// move-shifted-register, and 11011111 is SWI, not conditional branch.
func classifyHighByte(hi byte) Category {
	switch {
	case hi&0xF8 == 0x18: // 00011XXX: Add/subtract claims this sub-range of 000XXXXX
		return CatAddSubtract
	case hi&0xE0 == 0x00: // 000XXXXX (except handled above)
		return CatMoveShiftedRegister
	case hi&0xE0 == 0x20: // 001XXXXX
		return CatImmediate
	case hi&0xFC == 0x40: // 010000XX
		return CatALU
	case hi&0xFC == 0x44: // 010001XX
		return CatHiRegisterOrBX
	case hi&0xF8 == 0x48: // 01001XXX
		return CatPCRelativeLoad
	case hi&0xF2 == 0x50: // 0101XX0X
		return CatLoadStoreRegisterOffset
	case hi&0xF2 == 0x52: // 0101XX1X
		return CatLoadStoreSignExtended
	case hi&0xE0 == 0x60: // 011XXXXX
		return CatLoadStoreImmediateOffset
	case hi&0xF0 == 0x80: // 1000XXXX
		return CatLoadStoreHalfword
	case hi&0xF0 == 0x90: // 1001XXXX
		return CatSPRelativeLoadStore
	case hi&0xF0 == 0xA0: // 1010XXXX
		return CatLoadAddress
	case hi == 0xB0: // 10110000
		return CatAddOffsetToSP
	case hi&0xF6 == 0xB4: // 1011X10X
		return CatPushPop
	case hi&0xF0 == 0xC0: // 1100XXXX
		return CatMultipleLoadStore
	case hi == 0xDF: // 11011111
		return CatSoftwareInterrupt
	case hi&0xF0 == 0xD0: // 1101XXXX (except 11011111, handled above)
		return CatConditionalBranch
	case hi&0xF8 == 0xE0: // 11100XXX
		return CatUnconditionalBranch
	case hi&0xF0 == 0xF0: // 1111XXXX
		return CatLongBranchWithLink
	}
	return CatUnknown
}

// Decode classifies a fetched half-word by its high byte.
func Decode(halfword uint16) Category {
	return categoryTable[byte(halfword>>8)]
}

// signExtend sign-extends the low bits bits of value (a two's-complement
// field) out to 32 bits: bit bits-1 is copied through bits bits..31.
func signExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

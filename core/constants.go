package core

// Register bank layout. R13-R15 have architectural roles; R0-R12 are
// general purpose. Most Thumb-1 encodings only address R0-R7 (a 3-bit
// field); the "H" (high register) variants in category 5 reach R8-R15
// by adding 8 to the encoded field.
const (
	R0 = 0
	R1 = 1
	R2 = 2
	R3 = 3
	R4 = 4
	R5 = 5
	R6 = 6
	R7 = 7
	R8 = 8
	R9 = 9
	R10 = 10
	R11 = 11
	R12 = 12
	SP = 13
	LR = 14
	PC = 15

	RegisterCount = 16
)

// CPSR flag bit positions.
const (
	FlagBitN = 31
	FlagBitZ = 30
	FlagBitC = 29
	FlagBitV = 28
)

const (
	SignBitMask = 0x80000000
	Mask32Bit   = 0xFFFFFFFF
)

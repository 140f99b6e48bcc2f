package encoder

import "github.com/tinylab/thumb16vm/core"

// Register field widths. Most Thumb-1 encodings address only R0-R7 with a
// 3-bit field; category 5 (hi-register ops/BX) reaches R8-R15 by adding a
// separate H1/H2 bit per operand, per core's Category 5 decoder.
const (
	LowRegisterCount = 8
	LowRegisterMask  = 0x7
)

// Immediate field widths used across the Thumb-1 categories.
const (
	MaxImm3  = 0x7   // category 2 add/subtract immediate
	MaxImm5  = 0x1F  // categories 1, 9, 10 shift/offset immediates
	MaxImm7  = 0x7F  // category 13 add-offset-to-SP
	MaxImm8  = 0xFF  // categories 3, 6, 11, 12, 16, 17 immediates
	MaxImm11 = 0x7FF // categories 18, 19 branch offsets
)

// Register aliases, re-exported from core for readability in encoder code.
const (
	RegisterSP = core.SP
	RegisterLR = core.LR
	RegisterPC = core.PC
)

// Word size for directives and literal pool slots; instructions themselves
// are 2 bytes (4 for a BL pair), tracked per-instruction by
// parser.Instruction.EncodedLen rather than a single constant here.
const WordSize = 4

// Literal Pool Address Calculation
// These constants control how literal pool addresses are calculated when no
// explicit .ltorg directive is present. The assembler places literals at a
// 1KB-aligned boundary (category 6's imm8<<2 reaches at most 1KB from a
// word-aligned PC, a quarter of ARM's 4KB ldr-literal range).
const (
	LiteralPoolOffset        = 0x400     // 1KB offset for automatic literal pool placement
	LiteralPoolAlignmentMask = 0xFFFFFC00 // Mask to align addresses to 1KB boundaries
)

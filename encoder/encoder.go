package encoder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tinylab/thumb16vm/core"
	"github.com/tinylab/thumb16vm/parser"
)

// Encoder converts parsed instructions into Thumb-1 half-words.
type Encoder struct {
	symbolTable       *parser.SymbolTable
	currentAddr       uint32
	LiteralPool       map[uint32]uint32 // address -> value for literal pool (exported)
	LiteralPoolStart  uint32            // Start address for literal pool (set externally)
	LiteralPoolLocs   []uint32          // Addresses of .ltorg directives (multiple pools)
	LiteralPoolCounts []int             // Expected literal counts for each pool (from parser)
	pendingLiterals   map[uint32]uint32 // value -> preferred address mapping for dedup
	PoolWarnings      []string          // Warnings about pool capacity issues
}

// NewEncoder creates a new encoder instance.
func NewEncoder(symbolTable *parser.SymbolTable) *Encoder {
	return &Encoder{
		symbolTable:       symbolTable,
		LiteralPool:       make(map[uint32]uint32),
		LiteralPoolLocs:   make([]uint32, 0),
		LiteralPoolCounts: make([]int, 0),
		pendingLiterals:   make(map[uint32]uint32),
		PoolWarnings:      make([]string, 0),
	}
}

// EncodeInstruction converts a single parsed instruction into one or two
// Thumb-1 half-words (two only for BL, category 19's pair).
func (e *Encoder) EncodeInstruction(inst *parser.Instruction, address uint32) (halfwords []uint16, err error) {
	defer func() { err = WrapEncodingError(inst, err) }()
	e.currentAddr = address

	mnemonic := strings.ToUpper(inst.Mnemonic)

	switch mnemonic {
	case "MOV", "MVN":
		return e.encodeDataProcessingMove(inst)
	case "ADD", "ADC", "SUB", "SBC", "NEG":
		return e.encodeDataProcessingArithmetic(inst)
	case "AND", "ORR", "EOR", "BIC":
		return e.encodeDataProcessingLogical(inst)
	case "LSL", "LSR", "ASR", "ROR":
		return e.encodeDataProcessingShift(inst)
	case "CMP", "CMN", "TST":
		return e.encodeDataProcessingCompare(inst)
	case "MUL":
		return e.encodeMUL(inst)

	case "LDR", "STR", "LDRB", "STRB":
		return e.encodeMemory(inst, mnemonic)
	case "LDRH", "STRH", "LDSB", "LDSH":
		return e.encodeMemoryHalfword(inst, mnemonic)

	case "B":
		return e.encodeUnconditionalBranch(inst)
	case "BL":
		return e.encodeLongBranchWithLink(inst)
	case "BX":
		return e.encodeBX(inst)
	case "BEQ", "BNE", "BCS", "BHS", "BCC", "BLO", "BMI", "BPL",
		"BVS", "BVC", "BHI", "BLS", "BGE", "BLT", "BGT", "BLE":
		return e.encodeConditionalBranch(inst, e.encodeCondition(inst.Condition))

	case "PUSH":
		return e.encodePush(inst)
	case "POP":
		return e.encodePop(inst)
	case "LDMIA":
		return e.encodeLoadStoreMultiple(inst, false)
	case "STMIA":
		return e.encodeLoadStoreMultiple(inst, true)

	case "NOP":
		return []uint16{e.encodeNOP()}, nil

	case "SWI", "SVC":
		return e.encodeSWI(inst)

	default:
		return nil, fmt.Errorf("unknown instruction: %s", mnemonic)
	}
}

// encodeCondition converts a Bcc condition suffix to its 4-bit code.
func (e *Encoder) encodeCondition(cond string) uint32 {
	switch strings.ToUpper(cond) {
	case "EQ":
		return uint32(core.CondEQ)
	case "NE":
		return uint32(core.CondNE)
	case "CS", "HS":
		return uint32(core.CondCS)
	case "CC", "LO":
		return uint32(core.CondCC)
	case "MI":
		return uint32(core.CondMI)
	case "PL":
		return uint32(core.CondPL)
	case "VS":
		return uint32(core.CondVS)
	case "VC":
		return uint32(core.CondVC)
	case "HI":
		return uint32(core.CondHI)
	case "LS":
		return uint32(core.CondLS)
	case "GE":
		return uint32(core.CondGE)
	case "LT":
		return uint32(core.CondLT)
	case "GT":
		return uint32(core.CondGT)
	default:
		return uint32(core.CondLE)
	}
}

// parseRegister parses a register name and returns its number.
func (e *Encoder) parseRegister(reg string) (uint32, error) {
	reg = strings.ToUpper(strings.TrimSpace(reg))

	switch reg {
	case "SP", "R13":
		return 13, nil
	case "LR", "R14":
		return 14, nil
	case "PC", "R15":
		return 15, nil
	}

	if strings.HasPrefix(reg, "R") {
		numStr := reg[1:]
		num, err := strconv.ParseUint(numStr, 10, 32)
		if err != nil || num > 15 {
			return 0, fmt.Errorf("invalid register: %s", reg)
		}
		return uint32(num), nil
	}

	return 0, fmt.Errorf("invalid register: %s", reg)
}

// parseImmediate parses an immediate value.
func (e *Encoder) parseImmediate(imm string) (uint32, error) {
	imm = strings.TrimSpace(imm)

	if imm == "" {
		return 0, fmt.Errorf("empty immediate value")
	}

	imm = strings.TrimPrefix(imm, "#")

	if strings.HasPrefix(imm, "'") && strings.HasSuffix(imm, "'") && len(imm) >= 3 {
		charLiteral := imm[1 : len(imm)-1]

		if strings.HasPrefix(charLiteral, "\\") {
			b, consumed, err := parser.ParseEscapeChar(charLiteral)
			if err != nil {
				return 0, fmt.Errorf("invalid escape sequence in character literal: %s", imm)
			}
			if consumed != len(charLiteral) {
				return 0, fmt.Errorf("invalid character literal: %s", imm)
			}
			return uint32(b), nil
		}

		if len(charLiteral) != 1 {
			return 0, fmt.Errorf("character literal must contain exactly one character: %s", imm)
		}
		return uint32(charLiteral[0]), nil
	}

	negative := false
	if strings.HasPrefix(imm, "-") {
		negative = true
		imm = imm[1:]
	}

	if !strings.HasPrefix(imm, "0x") && !strings.HasPrefix(imm, "0X") {
		if sym, exists := e.symbolTable.Lookup(imm); exists && sym.Defined {
			return sym.Value, nil
		}
	}

	var value uint64
	var err error

	switch {
	case strings.HasPrefix(imm, "0x") || strings.HasPrefix(imm, "0X"):
		value, err = strconv.ParseUint(imm[2:], 16, 32)
	case strings.HasPrefix(imm, "0b") || strings.HasPrefix(imm, "0B"):
		value, err = strconv.ParseUint(imm[2:], 2, 32)
	case strings.HasPrefix(imm, "0") && len(imm) > 1:
		value, err = strconv.ParseUint(imm[1:], 8, 32)
	default:
		value, err = strconv.ParseUint(imm, 10, 32)
	}

	if err != nil {
		return 0, fmt.Errorf("invalid immediate value: %s", imm)
	}

	result := uint32(value)
	if negative {
		if result < 1 || result > uint32(math.MaxInt32)+1 {
			return 0, fmt.Errorf("immediate value out of valid signed 32-bit range: %s", imm)
		}
		result = uint32(-int32(result)) // #nosec G115 -- bounds checked above
	}

	return result, nil
}

// evaluateExpression evaluates a constant expression like "label+12" or "symbol-4".
func (e *Encoder) evaluateExpression(expr string) (uint32, error) {
	expr = strings.TrimSpace(expr)

	for i := 1; i < len(expr); i++ {
		if expr[i] == '+' || expr[i] == '-' {
			left := strings.TrimSpace(expr[:i])
			right := strings.TrimSpace(expr[i+1:])
			op := expr[i]

			leftVal, err := e.evaluateTerm(left)
			if err != nil {
				return 0, err
			}
			rightVal, err := e.evaluateTerm(right)
			if err != nil {
				return 0, err
			}

			if op == '+' {
				return leftVal + rightVal, nil
			}
			return leftVal - rightVal, nil
		}
	}

	return e.evaluateTerm(expr)
}

// evaluateTerm evaluates a single term (symbol or number).
func (e *Encoder) evaluateTerm(term string) (uint32, error) {
	term = strings.TrimSpace(term)

	if sym, exists := e.symbolTable.Lookup(term); exists && sym.Defined {
		return sym.Value, nil
	}

	return e.parseImmediate(term)
}

// ValidatePoolCapacity checks if actual literal pool usage matches expected
// capacity. Call after encoding all instructions.
func (e *Encoder) ValidatePoolCapacity() {
	if len(e.LiteralPoolLocs) == 0 {
		return
	}

	actualCounts := make(map[uint32]int)

	for addr := range e.LiteralPool {
		for i, poolLoc := range e.LiteralPoolLocs {
			if i+1 < len(e.LiteralPoolLocs) {
				if addr >= poolLoc && addr < e.LiteralPoolLocs[i+1] {
					actualCounts[poolLoc]++
					break
				}
			} else if addr >= poolLoc {
				actualCounts[poolLoc]++
				break
			}
		}
	}

	for i, poolLoc := range e.LiteralPoolLocs {
		expectedCount := parser.EstimatedLiteralsPerPool
		if i < len(e.LiteralPoolCounts) {
			expectedCount = e.LiteralPoolCounts[i]
		}

		actualCount := actualCounts[poolLoc]

		if actualCount > expectedCount {
			warning := fmt.Sprintf(
				"Literal pool at 0x%08X: actual count (%d) exceeds expected (%d)",
				poolLoc, actualCount, expectedCount,
			)
			e.PoolWarnings = append(e.PoolWarnings, warning)
		}

		if expectedCount >= parser.EstimatedLiteralsPerPool && actualCount > parser.EstimatedLiteralsPerPool/2 {
			warning := fmt.Sprintf(
				"Literal pool at 0x%08X: using %d of %d estimated literals (%.1f%%)",
				poolLoc, actualCount, parser.EstimatedLiteralsPerPool,
				float64(actualCount)/float64(parser.EstimatedLiteralsPerPool)*100,
			)
			e.PoolWarnings = append(e.PoolWarnings, warning)
		}
	}
}

// GetPoolWarnings returns all collected pool capacity warnings.
func (e *Encoder) GetPoolWarnings() []string {
	return e.PoolWarnings
}

// HasPoolWarnings returns true if any warnings were collected.
func (e *Encoder) HasPoolWarnings() bool {
	return len(e.PoolWarnings) > 0
}

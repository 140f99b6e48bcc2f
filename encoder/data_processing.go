package encoder

import (
	"fmt"
	"strings"

	"github.com/tinylab/thumb16vm/parser"
)

// Category 3 (move/compare/add/subtract immediate) opcodes.
const (
	immOpMOV = 0x0
	immOpCMP = 0x1
	immOpADD = 0x2
	immOpSUB = 0x3
)

// Category 4 (ALU operations) opcodes, in the order core/exec_alu.go decodes.
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

// encodeCat1MoveShifted builds Category 1: LSL/LSR/ASR Rd, Rs, #offset5.
func encodeCat1MoveShifted(op, offset5, rs, rd uint32) uint16 {
	return uint16(op<<11 | (offset5&MaxImm5)<<6 | (rs&LowRegisterMask)<<3 | rd&LowRegisterMask)
}

// encodeCat2AddSubtract builds Category 2: ADD/SUB Rd, Rs, Rn|#imm3.
func encodeCat2AddSubtract(isSub, immediate, rnOrImm3, rs, rd uint32) uint16 {
	return uint16(0x3<<11 | immediate<<10 | isSub<<9 | (rnOrImm3&MaxImm3)<<6 | (rs&LowRegisterMask)<<3 | rd&LowRegisterMask)
}

// encodeCat3Immediate builds Category 3: MOV/CMP/ADD/SUB Rd, #imm8.
func encodeCat3Immediate(op, rd, imm8 uint32) uint16 {
	return uint16(0x1<<13 | op<<11 | (rd&LowRegisterMask)<<8 | imm8&MaxImm8)
}

// encodeCat4ALU builds Category 4: two-register ALU operation.
func encodeCat4ALU(op, rs, rd uint32) uint16 {
	return uint16(0x10<<10 | op<<6 | (rs&LowRegisterMask)<<3 | rd&LowRegisterMask)
}

// encodeCat5HiReg builds Category 5: ADD/CMP/MOV across low/high registers.
func encodeCat5HiReg(op, rs, rd uint32) uint16 {
	h1 := uint32(0)
	if rd >= LowRegisterCount {
		h1 = 1
	}
	h2 := uint32(0)
	if rs >= LowRegisterCount {
		h2 = 1
	}
	return uint16(0x11<<10 | op<<8 | h1<<7 | h2<<6 | (rs&LowRegisterMask)<<3 | rd&LowRegisterMask)
}

// encodeCat5BX builds Category 5's BX Rs.
func encodeCat5BX(rs uint32) uint16 {
	h2 := uint32(0)
	if rs >= LowRegisterCount {
		h2 = 1
	}
	return uint16(0x11<<10 | 0x3<<8 | h2<<6 | (rs&LowRegisterMask)<<3)
}

// encodeDataProcessingMove encodes MOV/MVN (category 3 immediate MOV,
// category 4 MVN register, or category 5 MOV across register ranges).
func (e *Encoder) encodeDataProcessingMove(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	operand2 := strings.TrimSpace(inst.Operands[1])
	mnemonic := strings.ToUpper(inst.Mnemonic)

	if strings.HasPrefix(operand2, "#") || isNumeric(operand2) {
		if mnemonic == "MVN" {
			return nil, fmt.Errorf("MVN does not take an immediate operand in Thumb-1")
		}
		if rd >= LowRegisterCount {
			return nil, fmt.Errorf("MOV Rd,#imm destination must be R0-R7")
		}
		value, err := e.parseImmediate(operand2)
		if err != nil {
			return nil, err
		}
		if value > MaxImm8 {
			return nil, fmt.Errorf("MOV immediate %d exceeds 8-bit range", value)
		}
		return []uint16{encodeCat3Immediate(immOpMOV, rd, value)}, nil
	}

	rs, err := e.parseRegister(operand2)
	if err != nil {
		return nil, err
	}

	if mnemonic == "MVN" {
		if rd >= LowRegisterCount || rs >= LowRegisterCount {
			return nil, fmt.Errorf("MVN only operates on R0-R7")
		}
		return []uint16{encodeCat4ALU(aluMVN, rs, rd)}, nil
	}

	// MOV Rd, Rs across any register range is category 5 (no flags).
	return []uint16{encodeCat5HiReg(0x2, rs, rd)}, nil
}

// encodeDataProcessingArithmetic encodes ADD/ADC/SUB/SBC/NEG.
func (e *Encoder) encodeDataProcessingArithmetic(inst *parser.Instruction) ([]uint16, error) {
	mnemonic := strings.ToUpper(inst.Mnemonic)

	if mnemonic == "NEG" {
		if len(inst.Operands) < 2 {
			return nil, fmt.Errorf("NEG requires 2 operands, got %d", len(inst.Operands))
		}
		rd, err := e.parseRegister(inst.Operands[0])
		if err != nil {
			return nil, err
		}
		rs, err := e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
		if rd >= LowRegisterCount || rs >= LowRegisterCount {
			return nil, fmt.Errorf("NEG only operates on R0-R7")
		}
		return []uint16{encodeCat4ALU(aluNEG, rs, rd)}, nil
	}

	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	// Two-operand form (Rd, Rs) implies Rd as both destination and first
	// source, matching the common Thumb-1 assembler shorthand.
	var rn uint32
	var operand2 string
	if len(inst.Operands) >= 3 {
		rn, err = e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
		operand2 = inst.Operands[2]
	} else {
		rn = rd
		operand2 = inst.Operands[1]
	}

	isSub := mnemonic == "SUB"
	isAdc := mnemonic == "ADC"
	isSbc := mnemonic == "SBC"

	if isAdc || isSbc {
		if rn != rd {
			return nil, fmt.Errorf("%s Rd,Rn,Rs requires Rn == Rd (result register is also an operand)", mnemonic)
		}
		rs, err := e.parseRegister(operand2)
		if err != nil {
			return nil, err
		}
		if rd >= LowRegisterCount || rs >= LowRegisterCount {
			return nil, fmt.Errorf("%s only operates on R0-R7", mnemonic)
		}
		op := uint32(aluADC)
		if isSbc {
			op = aluSBC
		}
		return []uint16{encodeCat4ALU(op, rs, rd)}, nil
	}

	operand2 = strings.TrimSpace(operand2)
	if strings.HasPrefix(operand2, "#") || isNumeric(operand2) {
		imm, err := e.parseImmediate(operand2)
		if err != nil {
			return nil, err
		}

		// ADD Rd, PC|SP, #imm*4 is category 12 (load address); ADD/SUB
		// SP, #imm*4 is category 13. Both have no flag update and a wider
		// immediate than the ordinary arithmetic categories.
		if rn == RegisterPC || rn == RegisterSP {
			if imm%4 != 0 {
				return nil, fmt.Errorf("%s: immediate %d must be a multiple of 4", mnemonic, imm)
			}
			if rd == RegisterSP {
				if isSub && rn != RegisterSP {
					return nil, fmt.Errorf("SUB SP,PC,#imm is not a valid Thumb-1 encoding")
				}
				if imm/4 > MaxImm7 {
					return nil, fmt.Errorf("%s SP,#imm offset %d exceeds maximum %d", mnemonic, imm, MaxImm7*4)
				}
				return []uint16{encodeCat13AddOffsetToSP(isSub, imm/4)}, nil
			}
			if isSub {
				return nil, fmt.Errorf("SUB Rd,PC|SP,#imm is not a valid Thumb-1 encoding")
			}
			if rd < LowRegisterCount && rn != rd {
				if imm/4 > MaxImm8 {
					return nil, fmt.Errorf("%s: immediate %d exceeds maximum %d", mnemonic, imm, MaxImm8*4)
				}
				return []uint16{encodeCat12LoadAddress(rn == RegisterSP, rd, imm/4)}, nil
			}
		}
		if rd >= LowRegisterCount {
			return nil, fmt.Errorf("%s Rd,#imm destination must be R0-R7", mnemonic)
		}
		if rn == rd && imm <= MaxImm8 {
			op := uint32(immOpADD)
			if isSub {
				op = immOpSUB
			}
			return []uint16{encodeCat3Immediate(op, rd, imm)}, nil
		}
		if imm > MaxImm3 {
			return nil, fmt.Errorf("%s Rd,Rs,#imm3 immediate %d exceeds 3-bit range", mnemonic, imm)
		}
		if rn >= LowRegisterCount {
			return nil, fmt.Errorf("%s source register must be R0-R7", mnemonic)
		}
		iSub := uint32(0)
		if isSub {
			iSub = 1
		}
		return []uint16{encodeCat2AddSubtract(iSub, 1, imm, rn, rd)}, nil
	}

	rs, err := e.parseRegister(operand2)
	if err != nil {
		return nil, err
	}

	// ADD/CMP/MOV with any high register operand routes through category 5.
	if rd >= LowRegisterCount || rs >= LowRegisterCount || rn >= LowRegisterCount {
		if isSub {
			return nil, fmt.Errorf("SUB does not support high registers in Thumb-1")
		}
		if rn != rd {
			return nil, fmt.Errorf("category 5 ADD only supports Rd += Rs, not a separate Rn operand")
		}
		return []uint16{encodeCat5HiReg(0x0, rs, rd)}, nil
	}

	iSub := uint32(0)
	if isSub {
		iSub = 1
	}
	return []uint16{encodeCat2AddSubtract(iSub, 0, rs, rn, rd)}, nil
}

// encodeDataProcessingLogical encodes AND/ORR/EOR/BIC (category 4 only -
// Thumb-1 has no immediate form of the logical ALU operations).
func (e *Encoder) encodeDataProcessingLogical(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}
	var rs uint32
	if len(inst.Operands) >= 3 {
		mid, err := e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
		if mid != rd {
			return nil, fmt.Errorf("%s Rd,Rn,Rs requires Rn == Rd (result register is also an operand)", inst.Mnemonic)
		}
		rs, err = e.parseRegister(inst.Operands[2])
		if err != nil {
			return nil, err
		}
	} else {
		rs, err = e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
	}
	if rd >= LowRegisterCount || rs >= LowRegisterCount {
		return nil, fmt.Errorf("%s only operates on R0-R7", inst.Mnemonic)
	}

	var op uint32
	switch strings.ToUpper(inst.Mnemonic) {
	case "AND":
		op = aluAND
	case "ORR":
		op = aluORR
	case "EOR":
		op = aluEOR
	case "BIC":
		op = aluBIC
	default:
		return nil, fmt.Errorf("unknown logical instruction: %s", inst.Mnemonic)
	}
	return []uint16{encodeCat4ALU(op, rs, rd)}, nil
}

// encodeDataProcessingShift encodes LSL/LSR/ASR/ROR. The three-operand
// immediate form (Rd, Rs, #imm5) is category 1; the register-amount form
// (Rd, Rs) and ROR (always register-amount) are category 4.
func (e *Encoder) encodeDataProcessingShift(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}
	mnemonic := strings.ToUpper(inst.Mnemonic)

	if len(inst.Operands) >= 3 && mnemonic != "ROR" {
		rs, err := e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
		third := strings.TrimSpace(inst.Operands[2])
		if strings.HasPrefix(third, "#") || isNumeric(third) {
			if rd >= LowRegisterCount || rs >= LowRegisterCount {
				return nil, fmt.Errorf("%s only operates on R0-R7", mnemonic)
			}
			imm, err := e.parseImmediate(third)
			if err != nil {
				return nil, err
			}
			if imm > MaxImm5 {
				return nil, fmt.Errorf("%s shift amount %d exceeds 5-bit range", mnemonic, imm)
			}
			var op uint32
			switch mnemonic {
			case "LSL":
				op = 0
			case "LSR":
				op = 1
			case "ASR":
				op = 2
			}
			return []uint16{encodeCat1MoveShifted(op, imm, rs, rd)}, nil
		}
	}

	var rs uint32
	if len(inst.Operands) >= 3 {
		mid, err := e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
		if mid != rd {
			return nil, fmt.Errorf("%s Rd,Rn,Rs requires Rn == Rd (result register is also an operand)", mnemonic)
		}
		rs, err = e.parseRegister(inst.Operands[2])
		if err != nil {
			return nil, err
		}
	} else {
		rs, err = e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
	}
	if rd >= LowRegisterCount || rs >= LowRegisterCount {
		return nil, fmt.Errorf("%s only operates on R0-R7", mnemonic)
	}

	var op uint32
	switch mnemonic {
	case "LSL":
		op = aluLSL
	case "LSR":
		op = aluLSR
	case "ASR":
		op = aluASR
	case "ROR":
		op = aluROR
	}
	return []uint16{encodeCat4ALU(op, rs, rd)}, nil
}

// encodeDataProcessingCompare encodes CMP (categories 3/4/5) and CMN/TST
// (category 4 only, register operands).
func (e *Encoder) encodeDataProcessingCompare(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	rn, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}
	mnemonic := strings.ToUpper(inst.Mnemonic)
	operand2 := strings.TrimSpace(inst.Operands[1])

	if mnemonic == "CMP" && (strings.HasPrefix(operand2, "#") || isNumeric(operand2)) {
		if rn >= LowRegisterCount {
			return nil, fmt.Errorf("CMP Rn,#imm only operates on R0-R7")
		}
		imm, err := e.parseImmediate(operand2)
		if err != nil {
			return nil, err
		}
		if imm > MaxImm8 {
			return nil, fmt.Errorf("CMP immediate %d exceeds 8-bit range", imm)
		}
		return []uint16{encodeCat3Immediate(immOpCMP, rn, imm)}, nil
	}

	rm, err := e.parseRegister(operand2)
	if err != nil {
		return nil, err
	}

	if mnemonic == "CMP" && (rn >= LowRegisterCount || rm >= LowRegisterCount) {
		return []uint16{encodeCat5HiReg(0x1, rm, rn)}, nil
	}

	if rn >= LowRegisterCount || rm >= LowRegisterCount {
		return nil, fmt.Errorf("%s only operates on R0-R7", mnemonic)
	}
	var op uint32
	switch mnemonic {
	case "CMP":
		op = aluCMP
	case "CMN":
		op = aluCMN
	case "TST":
		op = aluTST
	default:
		return nil, fmt.Errorf("unknown comparison instruction: %s", inst.Mnemonic)
	}
	return []uint16{encodeCat4ALU(op, rm, rn)}, nil
}

// encodeMUL encodes MUL Rd, Rs (category 4).
func (e *Encoder) encodeMUL(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("MUL requires 2 operands, got %d", len(inst.Operands))
	}
	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}
	var rs uint32
	if len(inst.Operands) >= 3 {
		mid, err := e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
		if mid != rd {
			return nil, fmt.Errorf("MUL Rd,Rn,Rs requires Rn == Rd (result register is also an operand)")
		}
		rs, err = e.parseRegister(inst.Operands[2])
		if err != nil {
			return nil, err
		}
	} else {
		rs, err = e.parseRegister(inst.Operands[1])
		if err != nil {
			return nil, err
		}
	}
	if rd >= LowRegisterCount || rs >= LowRegisterCount {
		return nil, fmt.Errorf("MUL only operates on R0-R7")
	}
	return []uint16{encodeCat4ALU(aluMUL, rs, rd)}, nil
}

// isNumeric checks if a string looks like a number.
func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	s = strings.TrimPrefix(s, "-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") ||
		strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") ||
		(len(s) > 0 && s[0] >= '0' && s[0] <= '9')
}

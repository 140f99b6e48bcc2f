package encoder

import (
	"fmt"
	"strings"

	"github.com/tinylab/thumb16vm/parser"
)

// encodeMemory encodes LDR, STR, LDRB, STRB (categories 7 and 9: the
// register-offset and immediate-offset word/byte transfers), plus the
// LDR Rd,=value/label pseudo-instruction (category 6 via the literal
// pool) and SP-relative addressing (category 11).
func (e *Encoder) encodeMemory(inst *parser.Instruction, mnemonic string) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(inst.Operands[1], "=") {
		return e.encodeLDRPseudo(inst, rd)
	}
	if inst.Operands[1] == "=" && len(inst.Operands) > 2 {
		tempInst := *inst
		tempInst.Operands = []string{inst.Operands[0], "=" + inst.Operands[2]}
		return e.encodeLDRPseudo(&tempInst, rd)
	}

	addrMode := inst.Operands[1]
	if len(inst.Operands) > 2 && strings.HasSuffix(addrMode, "]") {
		addrMode = addrMode + "," + inst.Operands[2]
	}

	rb, offsetReg, offsetImm, isRegOffset, err := parseAddressingMode(e, addrMode)
	if err != nil {
		return nil, err
	}

	load := strings.HasPrefix(mnemonic, "LDR")
	byteTransfer := strings.HasSuffix(mnemonic, "B")

	if rb == RegisterSP {
		if byteTransfer || isRegOffset {
			return nil, fmt.Errorf("%s: SP-relative addressing only supports word transfers with an immediate offset", inst.Mnemonic)
		}
		if rd >= LowRegisterCount {
			return nil, fmt.Errorf("%s: SP-relative load/store destination must be R0-R7", inst.Mnemonic)
		}
		if offsetImm%4 != 0 || offsetImm/4 > MaxImm8 {
			return nil, fmt.Errorf("%s: SP offset must be a multiple of 4 up to %d", inst.Mnemonic, MaxImm8*4)
		}
		return []uint16{encodeCat11SPRelative(load, rd, offsetImm/4)}, nil
	}

	if rb >= LowRegisterCount || rd >= LowRegisterCount {
		return nil, fmt.Errorf("%s: base and destination registers must be R0-R7", inst.Mnemonic)
	}

	if isRegOffset {
		if offsetReg >= LowRegisterCount {
			return nil, fmt.Errorf("%s: offset register must be R0-R7", inst.Mnemonic)
		}
		return []uint16{encodeCat7RegisterOffset(load, byteTransfer, offsetReg, rb, rd)}, nil
	}

	var maxOffset uint32 = MaxImm5 * 4
	if byteTransfer {
		maxOffset = MaxImm5
	}
	if offsetImm > maxOffset {
		return nil, fmt.Errorf("%s: immediate offset %d exceeds maximum %d", inst.Mnemonic, offsetImm, maxOffset)
	}
	if !byteTransfer && offsetImm%4 != 0 {
		return nil, fmt.Errorf("%s: word offset %d must be a multiple of 4", inst.Mnemonic, offsetImm)
	}
	return []uint16{encodeCat9ImmediateOffset(load, byteTransfer, offsetImm, rb, rd)}, nil
}

// encodeMemoryHalfword encodes STRH/LDRH/LDSB/LDSH (categories 8 and 10).
func (e *Encoder) encodeMemoryHalfword(inst *parser.Instruction, mnemonic string) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 operands", inst.Mnemonic)
	}

	rd, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	addrMode := inst.Operands[1]
	if len(inst.Operands) > 2 && strings.HasSuffix(addrMode, "]") {
		addrMode = addrMode + "," + inst.Operands[2]
	}

	rb, offsetReg, offsetImm, isRegOffset, err := parseAddressingMode(e, addrMode)
	if err != nil {
		return nil, err
	}
	if rb >= LowRegisterCount || rd >= LowRegisterCount {
		return nil, fmt.Errorf("%s: base and destination registers must be R0-R7", inst.Mnemonic)
	}

	// LDSB/LDSH only have a register-offset form (category 8); STRH/LDRH
	// have both the register-offset (category 8) and immediate-offset*2
	// (category 10) forms.
	switch mnemonic {
	case "LDSB", "LDSH":
		if !isRegOffset {
			return nil, fmt.Errorf("%s requires a register offset: [Rb, Ro]", inst.Mnemonic)
		}
		if offsetReg >= LowRegisterCount {
			return nil, fmt.Errorf("%s: offset register must be R0-R7", inst.Mnemonic)
		}
		return []uint16{encodeCat8SignExtended(mnemonic, offsetReg, rb, rd)}, nil

	case "STRH", "LDRH":
		if isRegOffset {
			if offsetReg >= LowRegisterCount {
				return nil, fmt.Errorf("%s: offset register must be R0-R7", inst.Mnemonic)
			}
			return []uint16{encodeCat8SignExtended(mnemonic, offsetReg, rb, rd)}, nil
		}
		if offsetImm%2 != 0 || offsetImm/2 > MaxImm5 {
			return nil, fmt.Errorf("%s: immediate offset must be an even number up to %d", inst.Mnemonic, MaxImm5*2)
		}
		return []uint16{encodeCat10Halfword(mnemonic == "LDRH", offsetImm/2, rb, rd)}, nil
	}

	return nil, fmt.Errorf("unknown halfword instruction: %s", mnemonic)
}

// parseAddressingMode parses "[Rb]", "[Rb, #imm]" or "[Rb, Ro]" - the only
// shapes Thumb-1 supports (no pre/post-indexed writeback, no shifted
// register offsets).
func parseAddressingMode(e *Encoder, addrMode string) (rb, offsetReg, offsetImm uint32, isRegOffset bool, err error) {
	addrMode = strings.TrimSpace(addrMode)
	if !strings.HasPrefix(addrMode, "[") {
		return 0, 0, 0, false, fmt.Errorf("invalid addressing mode: %s", addrMode)
	}
	addrMode = strings.TrimPrefix(addrMode, "[")
	addrMode = strings.TrimSuffix(addrMode, "]")
	parts := strings.SplitN(addrMode, ",", 2)

	rb, err = e.parseRegister(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, 0, false, err
	}
	if len(parts) == 1 {
		return rb, 0, 0, false, nil
	}

	offsetStr := strings.TrimSpace(parts[1])
	if strings.HasPrefix(offsetStr, "#") || isNumeric(strings.TrimPrefix(offsetStr, "-")) {
		imm, err := e.parseImmediate(offsetStr)
		if err != nil {
			return 0, 0, 0, false, err
		}
		return rb, 0, imm, false, nil
	}

	ro, err := e.parseRegister(offsetStr)
	if err != nil {
		return 0, 0, 0, false, err
	}
	return rb, ro, 0, true, nil
}

// encodeLDRPseudo encodes LDR Rd,=value (or =label) as a category 3 MOV
// when the value fits in 8 bits, otherwise as a category 6 PC-relative
// load from the literal pool.
func (e *Encoder) encodeLDRPseudo(inst *parser.Instruction, rd uint32) ([]uint16, error) {
	if rd >= LowRegisterCount {
		return nil, fmt.Errorf("LDR =value destination must be R0-R7")
	}

	valueStr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(inst.Operands[1]), "="))
	if valueStr == "" {
		return nil, fmt.Errorf("empty pseudo-instruction value in operand: '%s'", inst.Operands[1])
	}

	value, err := e.evaluateExpression(valueStr)
	if err != nil {
		return nil, fmt.Errorf("invalid pseudo-instruction value '%s': %w", valueStr, err)
	}

	if value <= MaxImm8 {
		return []uint16{encodeCat3Immediate(immOpMOV, rd, value)}, nil
	}

	var literalAddr uint32
	var found bool
	for addr, v := range e.LiteralPool {
		if v == value {
			literalAddr, found = addr, true
			break
		}
	}

	pc := (e.currentAddr + 4) &^ 3 // PC as the core sees it: +2 fetch advance, +2 pipeline, word-aligned
	if !found {
		literalAddr = e.findNearestLiteralPoolLocation(pc, value)
		poolSize := uint32(len(e.LiteralPool) * 4)
		if literalAddr == 0 && e.LiteralPoolStart != 0 {
			// Pool placed just past the assembled image, where it cannot
			// collide with code or data directives.
			candidate := e.LiteralPoolStart + poolSize
			if candidate >= pc && candidate-pc <= MaxImm8*4 {
				literalAddr = candidate
			}
		}
		if literalAddr == 0 {
			literalAddr = (e.currentAddr & LiteralPoolAlignmentMask) + LiteralPoolOffset + poolSize
		}
		e.LiteralPool[literalAddr] = value
		e.pendingLiterals[value] = literalAddr
	}

	if literalAddr < pc {
		return nil, fmt.Errorf("literal pool entry at 0x%08X precedes PC-relative load at 0x%08X", literalAddr, pc)
	}
	offset := literalAddr - pc
	if offset%4 != 0 || offset/4 > MaxImm8 {
		return nil, fmt.Errorf("literal pool offset %d out of range for category 6 PC-relative load", offset)
	}

	return []uint16{encodeCat6PCRelativeLoad(rd, offset/4)}, nil
}

// findNearestLiteralPoolLocation finds the nearest .ltorg location within
// category 6's 1020-byte forward reach of pc, or 0 if none qualifies.
func (e *Encoder) findNearestLiteralPoolLocation(pc uint32, value uint32) uint32 {
	if len(e.LiteralPoolLocs) == 0 {
		return 0
	}

	if addr, ok := e.pendingLiterals[value]; ok {
		if addr >= pc && addr-pc <= MaxImm8*4 {
			return addr
		}
		delete(e.pendingLiterals, value)
	}

	var bestAddr uint32
	var bestDistance uint32 = 0xFFFFFFFF
	for _, poolLoc := range e.LiteralPoolLocs {
		if poolLoc < pc {
			continue
		}
		distance := poolLoc - pc
		if distance > MaxImm8*4 {
			continue
		}
		literalsAtPool := e.countLiteralsAtPool(poolLoc)
		candidateAddr := poolLoc + uint32(literalsAtPool*4)
		if candidateAddr-pc > MaxImm8*4 {
			continue
		}
		if distance < bestDistance {
			bestAddr, bestDistance = candidateAddr, distance
		}
	}
	return bestAddr
}

// countLiteralsAtPool counts literals already assigned near poolLoc.
func (e *Encoder) countLiteralsAtPool(poolLoc uint32) int {
	count := 0
	for addr := range e.LiteralPool {
		if addr >= poolLoc && addr < poolLoc+1024 {
			count++
		}
	}
	return count
}

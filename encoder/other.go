package encoder

import (
	"fmt"
	"strings"

	"github.com/tinylab/thumb16vm/parser"
)

// encodePush encodes Category 14: PUSH {reglist}, reglist restricted to
// R0-R7 plus an optional LR.
func (e *Encoder) encodePush(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("PUSH requires 1 operand, got %d", len(inst.Operands))
	}
	rlist, rBit, err := e.parsePushPopList(inst.Operands[0], RegisterLR)
	if err != nil {
		return nil, err
	}
	return []uint16{encodeCat14PushPop(false, rBit, rlist)}, nil
}

// encodePop encodes Category 14: POP {reglist}, reglist restricted to
// R0-R7 plus an optional PC.
func (e *Encoder) encodePop(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("POP requires 1 operand, got %d", len(inst.Operands))
	}
	rlist, rBit, err := e.parsePushPopList(inst.Operands[0], RegisterPC)
	if err != nil {
		return nil, err
	}
	return []uint16{encodeCat14PushPop(true, rBit, rlist)}, nil
}

// encodeCat14PushPop builds Category 14's raw encoding.
func encodeCat14PushPop(load bool, rBit, rlist uint32) uint16 {
	l := boolBit(load)
	return uint16(0xB<<12 | l<<11 | 0x2<<9 | rBit<<8 | rlist&0xFF)
}

// parsePushPopList parses a PUSH/POP register list, separating the R0-R7
// mask from the optional extra slot (LR for PUSH, PC for POP).
func (e *Encoder) parsePushPopList(list string, extra uint32) (rlist, rBit uint32, err error) {
	mask, err := e.parseRegisterList(list)
	if err != nil {
		return 0, 0, err
	}
	if mask&(1<<extra) != 0 {
		rBit = 1
		mask &^= 1 << extra
	}
	if mask&^0xFF != 0 {
		return 0, 0, fmt.Errorf("push/pop register list may only contain R0-R7 and %s", registerName(extra))
	}
	return mask, rBit, nil
}

// registerName names a register for use in error messages.
func registerName(reg uint32) string {
	switch reg {
	case RegisterLR:
		return "LR"
	case RegisterPC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", reg)
	}
}

// encodeLoadStoreMultiple encodes Category 15: STMIA/LDMIA Rb!, {reglist}.
func (e *Encoder) encodeLoadStoreMultiple(inst *parser.Instruction, isStore bool) ([]uint16, error) {
	if len(inst.Operands) < 2 {
		return nil, fmt.Errorf("%s requires 2 operands, got %d", inst.Mnemonic, len(inst.Operands))
	}

	baseReg := strings.TrimSuffix(strings.TrimSpace(inst.Operands[0]), "!")
	rb, err := e.parseRegister(baseReg)
	if err != nil {
		return nil, err
	}
	if rb >= LowRegisterCount {
		return nil, fmt.Errorf("%s base register must be R0-R7", inst.Mnemonic)
	}

	rlist, err := e.parseRegisterList(inst.Operands[1])
	if err != nil {
		return nil, err
	}
	if rlist&^0xFF != 0 {
		return nil, fmt.Errorf("%s register list may only contain R0-R7", inst.Mnemonic)
	}

	load := boolBit(!isStore)
	return []uint16{uint16(0xC<<12 | load<<11 | rb<<8 | rlist&0xFF)}, nil
}

// parseRegisterList parses a register list like {R0, R1, R2-R5, LR}.
func (e *Encoder) parseRegisterList(list string) (uint32, error) {
	list = strings.TrimSpace(list)
	list = strings.TrimPrefix(list, "{")
	list = strings.TrimSuffix(list, "}")

	var mask uint32

	parts := strings.Split(list, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return 0, fmt.Errorf("invalid register range: %s", part)
			}

			start, err := e.parseRegister(strings.TrimSpace(rangeParts[0]))
			if err != nil {
				return 0, err
			}
			end, err := e.parseRegister(strings.TrimSpace(rangeParts[1]))
			if err != nil {
				return 0, err
			}
			if start > end {
				return 0, fmt.Errorf("invalid register range: %s (start > end)", part)
			}
			for r := start; r <= end; r++ {
				mask |= 1 << r
			}
		} else {
			reg, err := e.parseRegister(part)
			if err != nil {
				return 0, err
			}
			mask |= 1 << reg
		}
	}

	return mask, nil
}

// encodeNOP encodes NOP as MOV R8, R8 (a two-register hi-register MOV
// that touches no low register and updates no flags).
func (e *Encoder) encodeNOP() uint16 {
	return encodeCat5HiReg(0x2, 8, 8)
}

// encodeSWI encodes Category 17: SWI/SVC imm8.
func (e *Encoder) encodeSWI(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("%s requires 1 operand, got %d", inst.Mnemonic, len(inst.Operands))
	}

	imm, err := e.parseImmediate(inst.Operands[0])
	if err != nil {
		return nil, err
	}
	if imm > MaxImm8 {
		return nil, fmt.Errorf("%s immediate too large: 0x%X (max 0x%X)", inst.Mnemonic, imm, MaxImm8)
	}

	return []uint16{uint16(0xDF<<8 | imm&MaxImm8)}, nil
}

package encoder

import (
	"fmt"
	"strings"

	"github.com/tinylab/thumb16vm/parser"
)

// encodeBX encodes BX Rs (category 5).
func (e *Encoder) encodeBX(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("BX requires 1 operand, got %d", len(inst.Operands))
	}
	rs, err := e.parseRegister(inst.Operands[0])
	if err != nil {
		return nil, err
	}
	return []uint16{encodeCat5BX(rs)}, nil
}

// resolveBranchTarget looks up a label or parses a literal address operand.
func (e *Encoder) resolveBranchTarget(target string) (uint32, error) {
	target = strings.TrimSpace(target)
	if sym, exists := e.symbolTable.Lookup(target); exists && sym.Defined {
		return sym.Value, nil
	}
	addr, err := e.parseImmediate(target)
	if err != nil {
		return 0, fmt.Errorf("undefined label or invalid address: %s", target)
	}
	return addr, nil
}

// encodeConditionalBranch encodes Category 16: Bcc label, one half-word
// with an 8-bit signed, halfword-granularity offset.
func (e *Encoder) encodeConditionalBranch(inst *parser.Instruction, cond uint32) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("%s requires 1 operand, got %d", inst.Mnemonic, len(inst.Operands))
	}

	targetAddr, err := e.resolveBranchTarget(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	pc := e.currentAddr + 4
	offset := int32(targetAddr) - int32(pc)
	if offset&0x1 != 0 {
		return nil, fmt.Errorf("%s target not halfword-aligned: offset=%d", inst.Mnemonic, offset)
	}
	soffset8 := offset / 2
	if soffset8 < -128 || soffset8 > 127 {
		return nil, fmt.Errorf("%s offset out of range: %d (max +/-256 bytes)", inst.Mnemonic, offset)
	}

	return []uint16{uint16(0xD<<12 | cond<<8 | uint32(soffset8)&MaxImm8)}, nil
}

// encodeUnconditionalBranch encodes Category 18: B label, an 11-bit
// signed, halfword-granularity offset.
func (e *Encoder) encodeUnconditionalBranch(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("B requires 1 operand, got %d", len(inst.Operands))
	}

	targetAddr, err := e.resolveBranchTarget(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	pc := e.currentAddr + 4
	offset := int32(targetAddr) - int32(pc)
	if offset&0x1 != 0 {
		return nil, fmt.Errorf("B target not halfword-aligned: offset=%d", offset)
	}
	offset11 := offset / 2
	if offset11 < -1024 || offset11 > 1023 {
		return nil, fmt.Errorf("B offset out of range: %d (max +/-2KB)", offset)
	}

	return []uint16{uint16(0xE000 | uint32(offset11)&MaxImm11)}, nil
}

// encodeLongBranchWithLink encodes Category 19: BL label, as a pair of
// half-words sharing a 23-bit offset split H=0 (high 11 bits) then H=1
// (low 11 bits), per core's exec_longbranch.go.
func (e *Encoder) encodeLongBranchWithLink(inst *parser.Instruction) ([]uint16, error) {
	if len(inst.Operands) < 1 {
		return nil, fmt.Errorf("BL requires 1 operand, got %d", len(inst.Operands))
	}

	targetAddr, err := e.resolveBranchTarget(inst.Operands[0])
	if err != nil {
		return nil, err
	}

	// The second half-word computes its target from its own (already
	// incremented) PC, so the offset is relative to the PC after the
	// second half-word's fetch, four bytes past the first half-word.
	pc := e.currentAddr + 4
	offset := int32(targetAddr) - int32(pc)
	if offset < -0x400000 || offset > 0x3FFFFF {
		return nil, fmt.Errorf("BL offset out of range: %d (max +/-4MB)", offset)
	}

	total := uint32(offset)
	highOffset11 := (total >> 12) & MaxImm11
	lowOffset11 := (total >> 1) & MaxImm11

	first := uint16(0xF<<12 | highOffset11)
	second := uint16(0xF<<12 | 0x1<<11 | lowOffset11)
	return []uint16{first, second}, nil
}

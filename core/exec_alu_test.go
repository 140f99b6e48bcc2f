package core_test

import (
	"testing"

	"github.com/tinylab/thumb16vm/core"
	"github.com/stretchr/testify/assert"
)

// aluHalfword builds a Category 4 two-register ALU encoding: 010000
// ooooRRRddd, op 4 bits, rs 3 bits, rd 3 bits.
func aluHalfword(op, rs, rd uint16) uint16 {
	return 0x4000 | (op << 6) | (rs << 3) | rd
}

// runALU sets R0=dst, R1=src, CPSR.C=carryIn, executes one ALU op
// encoded as "op R0, R1", and returns the machine for assertions.
func runALU(op uint16, dst, src uint32, carryIn bool) *core.Machine {
	mem := newFlatMemory(64)
	mem.putHalfword(0, aluHalfword(op, 1, 0))
	m := core.NewMachine(mem, 0, 0)
	m.SetRegister(0, dst)
	m.SetRegister(1, src)
	m.CPSR.C = carryIn
	m.Step()
	return m
}

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

func TestExecALU_ADC_CarryOutOnWraparound(t *testing.T) {
	m := runALU(aluADC, 0xFFFFFFFF, 0, true)
	assert.Equal(t, uint32(0), m.GetRegister(0))
	assert.True(t, m.CPSR.C)
	assert.True(t, m.CPSR.Z)
}

func TestExecALU_ADC_NoCarryIn(t *testing.T) {
	m := runALU(aluADC, 5, 3, false)
	assert.Equal(t, uint32(8), m.GetRegister(0))
	assert.False(t, m.CPSR.C)
}

// TestExecALU_SBC_BorrowSurvivesMaxSrc is the regression case for the bug
// where computing carry from "src+borrow" wrapped 0xFFFFFFFF+1 to 0 and
// reported no borrow where one occurred.
func TestExecALU_SBC_BorrowSurvivesMaxSrc(t *testing.T) {
	m := runALU(aluSBC, 5, 0xFFFFFFFF, false)
	assert.Equal(t, uint32(5), m.GetRegister(0))
	assert.False(t, m.CPSR.C, "borrow must be reported, not masked by a 32-bit wraparound")
}

func TestExecALU_SBC_NoBorrow(t *testing.T) {
	m := runALU(aluSBC, 10, 3, true)
	assert.Equal(t, uint32(7), m.GetRegister(0))
	assert.True(t, m.CPSR.C)
}

func TestExecALU_SBC_MatchesSubtractWithIncomingBorrow(t *testing.T) {
	// C=false means a borrow is already pending, so SBC must subtract one
	// extra compared to a plain CMP-style subtraction.
	m := runALU(aluSBC, 10, 3, false)
	assert.Equal(t, uint32(6), m.GetRegister(0))
	assert.True(t, m.CPSR.C)
}

func TestExecALU_NEG_Zero(t *testing.T) {
	m := runALU(aluNEG, 0, 0, false)
	assert.Equal(t, uint32(0), m.GetRegister(0))
	assert.True(t, m.CPSR.Z)
	assert.True(t, m.CPSR.C, "NEG 0 does not borrow")
}

func TestExecALU_NEG_MinInt32Overflows(t *testing.T) {
	m := runALU(aluNEG, 0, 0x80000000, false)
	assert.Equal(t, uint32(0x80000000), m.GetRegister(0))
	assert.True(t, m.CPSR.V)
}

func TestExecALU_CMN_DoesNotWriteRegister(t *testing.T) {
	m := runALU(aluCMN, 5, 0xFFFFFFFF, false)
	assert.Equal(t, uint32(5), m.GetRegister(0), "CMN must not modify Rd")
	assert.True(t, m.CPSR.C)
	assert.False(t, m.CPSR.Z, "5 + 0xFFFFFFFF wraps to 4, not 0")
}

func TestExecALU_TST_DoesNotWriteRegister(t *testing.T) {
	m := runALU(aluTST, 0xF0, 0x0F, false)
	assert.Equal(t, uint32(0xF0), m.GetRegister(0))
	assert.True(t, m.CPSR.Z)
}

func TestExecALU_BIC_ClearsMaskedBits(t *testing.T) {
	m := runALU(aluBIC, 0xFF, 0x0F, false)
	assert.Equal(t, uint32(0xF0), m.GetRegister(0))
}

func TestExecALU_MVN_IsBitwiseComplementOfSrc(t *testing.T) {
	m := runALU(aluMVN, 0, 0, false)
	assert.Equal(t, ^uint32(0), m.GetRegister(0))
}

func TestExecALU_MUL_Basic(t *testing.T) {
	m := runALU(aluMUL, 6, 7, false)
	assert.Equal(t, uint32(42), m.GetRegister(0))
}

func TestExecALU_ROR_ByRegisterAmount(t *testing.T) {
	m := runALU(aluROR, 0x1, 4, false)
	assert.Equal(t, uint32(0x10000000), m.GetRegister(0))
	assert.False(t, m.CPSR.C)
}

func TestExecALU_ROR_ZeroAmountLeavesCarryUnchanged(t *testing.T) {
	mem := newFlatMemory(64)
	mem.putHalfword(0, aluHalfword(aluROR, 1, 0))
	m := core.NewMachine(mem, 0, 0)
	m.SetRegister(0, 0x1234)
	m.SetRegister(1, 0)
	m.CPSR.C = true
	m.Step()
	assert.Equal(t, uint32(0x1234), m.GetRegister(0))
	assert.True(t, m.CPSR.C)
}

package core_test

import (
	"testing"

	"github.com/tinylab/thumb16vm/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatMemory is a trivial Memory backed by a plain byte slice, for tests
// that don't care about segmentation or syscalls.
type flatMemory struct {
	bytes []byte
	swi   func(m *core.Machine, number uint8)
}

func newFlatMemory(size int) *flatMemory {
	return &flatMemory{bytes: make([]byte, size)}
}

func (f *flatMemory) ReadByte(addr uint32) byte {
	if int(addr) >= len(f.bytes) {
		return 0xFF
	}
	return f.bytes[addr]
}

func (f *flatMemory) WriteByte(addr uint32, value byte) {
	if int(addr) >= len(f.bytes) {
		return
	}
	f.bytes[addr] = value
}

func (f *flatMemory) SoftwareInterrupt(m *core.Machine, number uint8) {
	if f.swi != nil {
		f.swi(m, number)
		return
	}
	m.Terminated = true
}

func (f *flatMemory) putHalfword(addr uint32, hw uint16) {
	f.bytes[addr] = byte(hw)
	f.bytes[addr+1] = byte(hw >> 8)
}

func TestDecode_AddSubtractCarvedOutOfMoveShifted(t *testing.T) {
	// 00011XXX (0x18-0x1F) must be Add/Subtract, not MoveShiftedRegister.
	for hi := 0x18; hi <= 0x1F; hi++ {
		assert.Equal(t, core.CatAddSubtract, core.Decode(uint16(hi)<<8))
	}
	assert.Equal(t, core.CatMoveShiftedRegister, core.Decode(0x0000))
	assert.Equal(t, core.CatMoveShiftedRegister, core.Decode(0x1700))
}

func TestDecode_SoftwareInterruptCarvedOutOfConditionalBranch(t *testing.T) {
	assert.Equal(t, core.CatSoftwareInterrupt, core.Decode(0xDF00))
	assert.Equal(t, core.CatConditionalBranch, core.Decode(0xDE00))
	assert.Equal(t, core.CatConditionalBranch, core.Decode(0xD000))
}

func TestStep_MovImmediateSetsRegisterAndFlags(t *testing.T) {
	mem := newFlatMemory(64)
	// MOV R0, #0: category 3, op=00, rd=0, imm8=0
	mem.putHalfword(0, 0x2000)
	m := core.NewMachine(mem, 0, 0)

	m.Step()

	assert.Equal(t, uint32(0), m.GetRegister(0))
	assert.True(t, m.CPSR.Z)
	assert.False(t, m.CPSR.N)
	assert.Equal(t, uint32(2), m.GetRegister(core.PC))
}

func TestStep_UnrecognizedEncodingTerminates(t *testing.T) {
	mem := newFlatMemory(64)
	// high byte 0xE8 is not assigned to any category (1110 1XXX).
	mem.putHalfword(0, 0xE800)
	m := core.NewMachine(mem, 0, 0)

	m.Step()

	assert.True(t, m.Terminated)
}

func TestStep_TerminatedMachineIsANoOp(t *testing.T) {
	mem := newFlatMemory(64)
	mem.putHalfword(0, 0x2005) // MOV R0, #5
	m := core.NewMachine(mem, 0, 0)
	m.Terminated = true

	m.Step()

	assert.Equal(t, uint32(0), m.GetRegister(0))
	assert.Equal(t, uint32(0), m.GetRegister(core.PC))
}

func TestConditionalBranch_ZeroOffsetLandsOnNextInstruction(t *testing.T) {
	// Bcc soffset8 = -1 (0xFF) with a true condition leaves PC where the
	// fetch left it: with P = 0x102 (PC after the fetch at 0x100),
	// P -> P + 2 + (sign_extend(-1) << 1) = P, the next instruction.
	mem := newFlatMemory(64)
	mem.putHalfword(0x100, 0xD0FF) // cond EQ, soffset8 = 0xFF
	m := core.NewMachine(mem, 0, 0x100)
	m.CPSR.Z = true

	m.Step()

	assert.Equal(t, uint32(0x102), m.GetRegister(core.PC))
}

func TestConditionalBranch_ReservedConditionTerminates(t *testing.T) {
	mem := newFlatMemory(64)
	mem.putHalfword(0, 0xDE00) // cond = 0xE, reserved
	m := core.NewMachine(mem, 0, 0)

	m.Step()

	assert.True(t, m.Terminated)
}

func TestUnconditionalBranch_Forward(t *testing.T) {
	mem := newFlatMemory(0x200)
	mem.putHalfword(0x100, 0xE002) // B +4 (offset11=2 halfwords -> 4 bytes)
	m := core.NewMachine(mem, 0, 0x100)

	m.Step()

	// PC after fetch is 0x102; pcOperand adds the pipeline +2 to 0x104;
	// the branch then adds the 4-byte offset.
	assert.Equal(t, uint32(0x108), m.GetRegister(core.PC))
}

func TestUnconditionalBranch_Backward(t *testing.T) {
	mem := newFlatMemory(0x200)
	mem.putHalfword(0x100, 0xE7FE) // B -4 (offset11 = 0x7FE, an 11-bit -2)
	m := core.NewMachine(mem, 0, 0x100)

	m.Step()

	assert.Equal(t, uint32(0x100), m.GetRegister(core.PC))
}

func TestLongBranchWithLink_TwoHalfwordSequence(t *testing.T) {
	mem := newFlatMemory(0x10000)
	// BL target = base + 0x1000, split across two half-words at 0x0 and 0x2.
	const base = uint32(0x4000)
	const target = base + 4 + 0x1000

	offset := int32(target) - int32(base+4)
	off11 := uint32(offset>>1) & 0x7FF
	highOff := uint32(offset>>12) & 0x7FF

	mem.putHalfword(base, 0xF000|uint16(highOff))
	mem.putHalfword(base+2, 0xF800|uint16(off11))

	m := core.NewMachine(mem, 0, base)
	m.Step()
	m.Step()

	assert.Equal(t, target, m.GetRegister(core.PC))
	assert.Equal(t, (base+4)|1, m.GetRegister(core.LR))
}

func TestPushPop_RoundTripsRegisters(t *testing.T) {
	mem := newFlatMemory(0x1000)
	const sp0 = uint32(0x800)

	// PUSH {R0, R1, LR}
	mem.putHalfword(0, 0xB500|0x03)
	// POP {R0, R1, PC}
	mem.putHalfword(2, 0xBD00|0x03)

	m := core.NewMachine(mem, sp0, 0)
	m.SetRegister(0, 0x11111111)
	m.SetRegister(1, 0x22222222)
	m.SetRegister(core.LR, 0xABCDEF00)

	m.Step() // PUSH
	assert.Equal(t, sp0-12, m.GetRegister(core.SP))

	m.SetRegister(0, 0)
	m.SetRegister(1, 0)

	m.Step() // POP

	assert.Equal(t, uint32(0x11111111), m.GetRegister(0))
	assert.Equal(t, uint32(0x22222222), m.GetRegister(1))
	assert.Equal(t, sp0, m.GetRegister(core.SP))
	assert.Equal(t, uint32(0xABCDEF00)&^1, m.GetRegister(core.PC))
}

func TestMultipleLoadStore_BaseInListStoresOriginalValue(t *testing.T) {
	mem := newFlatMemory(0x1000)
	const rb = 2
	const base = uint32(0x100)

	// STMIA R2!, {R0, R2} - R2 is both the base and in the list.
	hw := uint16(0xC000) | uint16(rb)<<8 | 0x05 // rlist = R0, R2
	mem.putHalfword(0, hw)

	m := core.NewMachine(mem, 0, 0)
	m.SetRegister(0, 0x99)
	m.SetRegister(rb, base)

	m.Step()

	stored := uint32(mem.ReadByte(base+4)) | uint32(mem.ReadByte(base+5))<<8 |
		uint32(mem.ReadByte(base+6))<<16 | uint32(mem.ReadByte(base+7))<<24
	assert.Equal(t, base, stored, "Rb must be stored at its pre-instruction value")
	assert.Equal(t, base+8, m.GetRegister(rb), "Rb is written back after the loop")
}

func TestSoftwareInterrupt_SetsLRAndInvokesHost(t *testing.T) {
	mem := newFlatMemory(64)
	mem.putHalfword(0x10, 0xDF2A) // SWI #0x2A
	var gotNumber uint8
	mem.swi = func(m *core.Machine, number uint8) {
		gotNumber = number
	}

	m := core.NewMachine(mem, 0, 0x10)
	m.Step()

	assert.Equal(t, uint8(0x2A), gotNumber)
	assert.Equal(t, uint32(0x12), m.GetRegister(core.LR))
}

func TestRun_StopsOnTermination(t *testing.T) {
	mem := newFlatMemory(64)
	mem.putHalfword(0, 0xE800) // unrecognized
	m := core.NewMachine(mem, 0, 0)

	n := m.Run(10)

	require.Equal(t, 1, n)
	assert.True(t, m.Terminated)
}

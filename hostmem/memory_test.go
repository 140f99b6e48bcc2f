package hostmem_test

import (
	"bytes"
	"testing"

	"github.com/tinylab/thumb16vm/core"
	"github.com/tinylab/thumb16vm/hostmem"
	"github.com/stretchr/testify/assert"
)

func TestMemory_UnmappedReadReturnsSentinel(t *testing.T) {
	mem := hostmem.New()
	assert.Equal(t, byte(0xFF), mem.ReadByte(0x00000000))
}

func TestMemory_UnmappedWriteIsDropped(t *testing.T) {
	mem := hostmem.New()
	mem.WriteByte(0x00000000, 0x42)
	assert.Equal(t, byte(0xFF), mem.ReadByte(0x00000000))
}

func TestMemory_ReadWriteRoundTrip(t *testing.T) {
	mem := hostmem.New()
	mem.WriteByte(hostmem.DataSegmentStart, 0x99)
	assert.Equal(t, byte(0x99), mem.ReadByte(hostmem.DataSegmentStart))
}

func TestMemory_MakeCodeReadOnlyDropsWrites(t *testing.T) {
	mem := hostmem.New()
	mem.WriteByte(hostmem.CodeSegmentStart, 0x11)
	mem.MakeCodeReadOnly()
	mem.WriteByte(hostmem.CodeSegmentStart, 0x22)
	assert.Equal(t, byte(0x11), mem.ReadByte(hostmem.CodeSegmentStart))
}

func TestSoftwareInterrupt_ExitTerminatesMachine(t *testing.T) {
	mem := hostmem.New()
	m := core.NewMachine(mem, 0, 0)
	mem.SoftwareInterrupt(m, hostmem.SWIExit)
	assert.True(t, m.Terminated)
}

func TestSoftwareInterrupt_WriteCharGoesToStdout(t *testing.T) {
	var buf bytes.Buffer
	tbl := hostmem.NewSyscallTable()
	tbl.Stdout = &buf
	mem := hostmem.NewWithSyscalls(tbl)
	m := core.NewMachine(mem, 0, 0)
	m.SetRegister(0, uint32('A'))

	mem.SoftwareInterrupt(m, hostmem.SWIWriteChar)

	assert.Equal(t, "A", buf.String())
}

func TestAllocateAndFree(t *testing.T) {
	tbl := hostmem.NewSyscallTable()
	mem := hostmem.NewWithSyscalls(tbl)
	m := core.NewMachine(mem, 0, 0)
	m.SetRegister(0, 16)

	mem.SoftwareInterrupt(m, hostmem.SWIAllocate)
	addr := m.GetRegister(0)
	assert.NotZero(t, addr)

	m.SetRegister(0, addr)
	mem.SoftwareInterrupt(m, hostmem.SWIFree)
	assert.Equal(t, uint32(0), m.GetRegister(0))
}

// Package hostmem implements the host side of core.Memory: a segmented
// address space with read/write/execute permissions per segment, plus the
// software-interrupt trap the core calls out to on SWI.
//
// There is no alignment checking anywhere here - byte-granular unaligned
// access is well-defined, not an error condition.
package hostmem

import (
	"fmt"

	"github.com/tinylab/thumb16vm/core"
)

// Default segment layout, in bytes.
const (
	CodeSegmentStart  = 0x00008000
	CodeSegmentSize   = 0x00010000
	DataSegmentStart  = 0x00020000
	DataSegmentSize   = 0x00010000
	HeapSegmentStart  = 0x00030000
	HeapSegmentSize   = 0x00010000
	StackSegmentStart = 0x00040000
	StackSegmentSize  = 0x00010000
)

// Permission is a bitmask of what a segment allows.
type Permission byte

const (
	PermNone    Permission = 0
	PermRead    Permission = 1 << 0
	PermWrite   Permission = 1 << 1
	PermExecute Permission = 1 << 2
)

// segment is one mapped, contiguous region of the address space.
type segment struct {
	start uint32
	size  uint32
	data  []byte
	perm  Permission
	name  string
}

// Memory is the default core.Memory implementation: a handful of fixed
// segments (code/data/heap/stack) plus a pluggable syscall table.
//
// Reads to unmapped addresses return 0xFF, matching the convention most
// emulators use for open-bus reads, rather than erroring - there is no
// error channel in core.Memory's signature. Writes to unmapped or
// read-only addresses are silently dropped. A host that wants to surface
// these as faults should wrap Memory and inspect LastFault.
type Memory struct {
	segments []*segment

	// LastFault records the most recent out-of-bounds or permission-denied
	// access, for hosts (the debugger, the API server) that want to report
	// it without the core itself needing an error return.
	LastFault error

	// LastWriteAddr/LastWriteSize record the most recent successful write,
	// for hosts (the GUI/TUI) that highlight the address a step just
	// touched. WriteHalfword/WriteWord report the base address and full
	// width rather than the last byte WriteByte happened to touch.
	LastWriteAddr uint32
	LastWriteSize uint32

	reads  uint64
	writes uint64

	swi *SyscallTable
}

// New creates a Memory with the standard code/data/heap/stack layout and
// its own default syscall table.
func New() *Memory {
	return NewWithSyscalls(NewSyscallTable())
}

// NewWithSyscalls creates a Memory with the standard segment layout but a
// caller-supplied syscall table, so hosts (the debugger, the API server,
// tests) can redirect stdio or inspect allocator state.
func NewWithSyscalls(swi *SyscallTable) *Memory {
	m := &Memory{swi: swi}
	// Code starts writable so the loader can place the program, its data
	// directives, and the literal pool; hosts that want W^X call
	// MakeCodeReadOnly once loading is done.
	m.AddSegment("code", CodeSegmentStart, CodeSegmentSize, PermRead|PermWrite|PermExecute)
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, PermRead|PermWrite)
	m.AddSegment("heap", HeapSegmentStart, HeapSegmentSize, PermRead|PermWrite)
	m.AddSegment("stack", StackSegmentStart, StackSegmentSize, PermRead|PermWrite)
	return m
}

// AddSegment maps a new named region. Overlapping segments are not
// detected; the first segment containing an address wins.
func (m *Memory) AddSegment(name string, start, size uint32, perm Permission) {
	m.segments = append(m.segments, &segment{
		start: start,
		size:  size,
		data:  make([]byte, size),
		perm:  perm,
		name:  name,
	})
}

func (m *Memory) find(addr uint32) (*segment, uint32) {
	for _, s := range m.segments {
		if addr >= s.start && addr < s.start+s.size {
			return s, addr - s.start
		}
	}
	return nil, 0
}

// ReadByte implements core.Memory. Unmapped or unreadable addresses yield
// 0xFF and set LastFault.
func (m *Memory) ReadByte(addr uint32) byte {
	s, off := m.find(addr)
	if s == nil {
		m.LastFault = faultf("unmapped read at 0x%08X", addr)
		return 0xFF
	}
	if s.perm&PermRead == 0 {
		m.LastFault = faultf("read permission denied for segment %q at 0x%08X", s.name, addr)
		return 0xFF
	}
	m.reads++
	return s.data[off]
}

// WriteByte implements core.Memory. Unmapped or unwritable addresses are
// silently dropped, with LastFault set for diagnostic callers.
func (m *Memory) WriteByte(addr uint32, value byte) {
	s, off := m.find(addr)
	if s == nil {
		m.LastFault = faultf("unmapped write at 0x%08X", addr)
		return
	}
	if s.perm&PermWrite == 0 {
		m.LastFault = faultf("write permission denied for segment %q at 0x%08X", s.name, addr)
		return
	}
	m.writes++
	s.data[off] = value
	m.LastWriteAddr = addr
	m.LastWriteSize = 1
}

// ReadHalfword reads a 16-bit little-endian value, for hosts (the debugger,
// the tracer) that want word-sized reads without composing ReadByte calls
// themselves. Unaligned addresses are fine - see the package doc comment.
func (m *Memory) ReadHalfword(addr uint32) uint16 {
	lo := m.ReadByte(addr)
	hi := m.ReadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// ReadWord reads a 32-bit little-endian value.
func (m *Memory) ReadWord(addr uint32) uint32 {
	b0 := m.ReadByte(addr)
	b1 := m.ReadByte(addr + 1)
	b2 := m.ReadByte(addr + 2)
	b3 := m.ReadByte(addr + 3)
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}

// WriteHalfword writes a 16-bit little-endian value.
func (m *Memory) WriteHalfword(addr uint32, value uint16) {
	before := m.writes
	m.WriteByte(addr, byte(value))
	m.WriteByte(addr+1, byte(value>>8))
	if m.writes == before+2 {
		m.LastWriteAddr = addr
		m.LastWriteSize = 2
	}
}

// WriteWord writes a 32-bit little-endian value.
func (m *Memory) WriteWord(addr uint32, value uint32) {
	before := m.writes
	m.WriteByte(addr, byte(value))
	m.WriteByte(addr+1, byte(value>>8))
	m.WriteByte(addr+2, byte(value>>16))
	m.WriteByte(addr+3, byte(value>>24))
	if m.writes == before+4 {
		m.LastWriteAddr = addr
		m.LastWriteSize = 4
	}
}

// SoftwareInterrupt implements core.Memory by dispatching to the syscall
// table, which may in turn mutate the machine's registers, terminate it,
// or perform host I/O.
func (m *Memory) SoftwareInterrupt(machine *core.Machine, number uint8) {
	m.swi.Dispatch(machine, m, number)
}

// LoadBytes copies data into memory starting at addr, one WriteByte at a
// time, so it is subject to the same permission rules as any other write.
func (m *Memory) LoadBytes(addr uint32, data []byte) {
	for i, b := range data {
		m.WriteByte(addr+uint32(i), b)
	}
}

// MakeCodeReadOnly strips write permission from the code segment, once a
// program has finished loading.
func (m *Memory) MakeCodeReadOnly() {
	for _, s := range m.segments {
		if s.name == "code" {
			s.perm = PermRead | PermExecute
		}
	}
}

// Stats returns total successful reads and writes observed so far.
func (m *Memory) Stats() (reads, writes uint64) {
	return m.reads, m.writes
}

// Syscalls returns the syscall table backing this memory's software
// interrupts, so a host-level session can inspect exit codes, breakpoint
// hits, or redirect stdio after construction.
func (m *Memory) Syscalls() *SyscallTable {
	return m.swi
}

func faultf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Package vm is the complete virtual machine: a core.Machine paired with
// its hostmem.Memory, plus the session-level bookkeeping (run state, entry
// point, exit code, instruction log, cycle limit) that belongs to the
// host rather than the interpreter core itself. Register/flag/decode/
// execute logic lives in core and segmented memory in hostmem; this
// package holds only the orchestration between them.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tinylab/thumb16vm/core"
	"github.com/tinylab/thumb16vm/hostmem"
)

// ExecutionState is the coarse run state shown by the debugger front ends.
type ExecutionState int

const (
	StateRunning ExecutionState = iota
	StateHalted
	StateBreakpoint
	StateError
	// StateWaitingForInput marks a VM blocked on a console read, so a GUI
	// front end can tell "paused" apart from "blocked on stdin" and route
	// SendInput accordingly. Step itself never sets this; it belongs to the
	// host loop driving a blocking read syscall from another goroutine.
	StateWaitingForInput
)

func (s ExecutionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateBreakpoint:
		return "breakpoint"
	case StateError:
		return "error"
	case StateWaitingForInput:
		return "waiting-for-input"
	default:
		return "unknown"
	}
}

const (
	// DefaultMaxCycles bounds a Run loop so a runaway program (or a bug in
	// this emulator) cannot spin forever.
	DefaultMaxCycles  = 10_000_000
	DefaultLogCapacity = 1024
)

// Segment layout constants alias hostmem's, so front ends that address
// memory regions by name don't need their own hostmem import.
const (
	CodeSegmentStart  = hostmem.CodeSegmentStart
	CodeSegmentSize   = hostmem.CodeSegmentSize
	DataSegmentStart  = hostmem.DataSegmentStart
	DataSegmentSize   = hostmem.DataSegmentSize
	HeapSegmentStart  = hostmem.HeapSegmentStart
	HeapSegmentSize   = hostmem.HeapSegmentSize
	StackSegmentStart = hostmem.StackSegmentStart
	StackSegmentSize  = hostmem.StackSegmentSize
)

// Segment permission bits, aliased from hostmem for the same reason.
const (
	PermNone    = hostmem.PermNone
	PermRead    = hostmem.PermRead
	PermWrite   = hostmem.PermWrite
	PermExecute = hostmem.PermExecute
)

// VM is the complete virtual machine.
type VM struct {
	Machine *core.Machine
	Memory  *hostmem.Memory

	State      ExecutionState
	MaxCycles  uint64
	CycleLimit uint64 // 0 means unlimited, beyond the DefaultMaxCycles safety net

	InstructionLog []uint32 // History of executed instruction addresses
	LastError      error

	EntryPoint       uint32
	StackTop         uint32
	ProgramArguments []string
	ExitCode         int32

	// OutputWriter is where a front-end may redirect program stdout;
	// synced into the syscall table on every Step.
	OutputWriter io.Writer

	// LastMemoryWrite/LastMemoryWriteSize/HasMemoryWrite support GUI/TUI
	// highlighting of the most recently written address. Step sets these
	// from Memory.LastWriteAddr/Size whenever the instruction it just
	// dispatched changed the write counter.
	LastMemoryWrite     uint32
	LastMemoryWriteSize uint32
	HasMemoryWrite      bool

	// FilesystemRoot jails the guest program's SWIOpen to a directory tree;
	// synced into the syscall table on every Step. Empty means no file
	// access is permitted.
	FilesystemRoot string

	// OnStateChange, if set, fires whenever Step observes State transition
	// to a new value - a session layer uses this to broadcast breakpoint
	// and halt notifications to a connected front end.
	OnStateChange func(ExecutionState)
}

// NewVM creates a virtual machine with the standard segment layout, its own
// syscall table wired to the process's real stdio, PC parked at the start of
// the code segment and SP at the top of the stack segment.
func NewVM() *VM {
	mem := hostmem.New()
	machine := core.NewMachine(mem, hostmem.StackSegmentStart+hostmem.StackSegmentSize, hostmem.CodeSegmentStart)

	return &VM{
		Machine:          machine,
		Memory:           mem,
		State:            StateHalted,
		MaxCycles:        DefaultMaxCycles,
		InstructionLog:   make([]uint32, 0, DefaultLogCapacity),
		EntryPoint:       hostmem.CodeSegmentStart,
		StackTop:         hostmem.StackSegmentStart + hostmem.StackSegmentSize,
		ProgramArguments: make([]string, 0),
		OutputWriter:     os.Stdout,
	}
}

// NewVMWithStdin creates a VM whose syscall table reads from r instead of
// os.Stdin, for the TUI and for tests that script console input.
func NewVMWithStdin(r io.Reader) *VM {
	v := NewVM()
	v.Memory.Syscalls().Stdin = bufio.NewReader(r)
	return v
}

// Reset restores the machine to its zero state and re-parks PC/SP at the
// entry point and stack top, preserving loaded memory contents - useful for
// debugger "restart" without re-assembling the program.
func (v *VM) Reset() {
	v.Machine.R = [core.RegisterCount]uint32{}
	v.Machine.CPSR = core.CPSR{}
	v.Machine.Terminated = false
	v.Machine.Cycles = 0
	v.Machine.R[core.PC] = v.EntryPoint
	if v.StackTop != 0 {
		v.Machine.R[core.SP] = v.StackTop
	}
	v.State = StateHalted
	v.InstructionLog = v.InstructionLog[:0]
	v.LastError = nil
	v.ExitCode = 0
	v.HasMemoryWrite = false
}

// ResetRegisters resets only the register bank and execution state,
// preserving loaded memory contents - for a debugger restart that should
// not require re-assembling the program.
func (v *VM) ResetRegisters() {
	v.Machine.R = [core.RegisterCount]uint32{}
	v.Machine.CPSR = core.CPSR{}
	v.Machine.Terminated = false
	v.Machine.Cycles = 0
	v.Machine.R[core.PC] = v.EntryPoint
	if v.StackTop != 0 {
		v.Machine.R[core.SP] = v.StackTop
	}
	v.State = StateHalted
	v.InstructionLog = v.InstructionLog[:0]
	v.LastError = nil
	v.HasMemoryWrite = false
}

// SetStdinReader redirects the guest program's console input to r, for a
// TUI/GUI that pipes user-typed input in rather than letting the syscall
// table read os.Stdin directly.
func (v *VM) SetStdinReader(r io.Reader) {
	v.Memory.Syscalls().Stdin = bufio.NewReader(r)
}

// ResetStdinReader restores the guest program's console input to os.Stdin.
func (v *VM) ResetStdinReader() {
	v.Memory.Syscalls().Stdin = bufio.NewReader(os.Stdin)
}

// SetEntryPoint sets the program counter to address, recording it as the
// entry point for future Reset calls.
func (v *VM) SetEntryPoint(address uint32) {
	v.EntryPoint = address
	v.Machine.R[core.PC] = address
}

// InitializeStack sets the initial stack pointer, recording stackTop for
// future Reset calls.
func (v *VM) InitializeStack(stackTop uint32) {
	v.StackTop = stackTop
	v.Machine.R[core.SP] = stackTop
}

// Step executes a single instruction, translating core.Machine's
// Terminated flag (plus the syscall table's exit/breakpoint signals) into
// one of the four ExecutionStates.
func (v *VM) Step() error {
	if v.State == StateError {
		return fmt.Errorf("VM is in error state: %w", v.LastError)
	}

	limit := v.CycleLimit
	if limit == 0 {
		limit = v.MaxCycles
	}
	if limit > 0 && v.Machine.Cycles >= limit {
		v.State = StateError
		v.LastError = fmt.Errorf("cycle limit exceeded (%d cycles)", limit)
		if v.OnStateChange != nil {
			v.OnStateChange(v.State)
		}
		return v.LastError
	}

	sc := v.Memory.Syscalls()
	if sc.FilesystemRoot != v.FilesystemRoot {
		sc.FilesystemRoot = v.FilesystemRoot
	}
	if v.OutputWriter != nil {
		sc.Stdout = v.OutputWriter
	}

	pc := v.Machine.R[core.PC]
	v.InstructionLog = append(v.InstructionLog, pc)

	_, writesBefore := v.Memory.Stats()

	prevState := v.State
	v.Machine.Step()

	if _, writesAfter := v.Memory.Stats(); writesAfter != writesBefore {
		v.LastMemoryWrite = v.Memory.LastWriteAddr
		v.LastMemoryWriteSize = v.Memory.LastWriteSize
		v.HasMemoryWrite = true
	}

	if v.Machine.Terminated {
		switch {
		case sc.HitBreakpoint:
			v.State = StateBreakpoint
		case sc.Exited:
			v.State = StateHalted
			v.ExitCode = sc.ExitCode
		default:
			v.State = StateHalted
		}
	}

	if v.OnStateChange != nil && v.State != prevState {
		v.OnStateChange(v.State)
	}

	return nil
}

// Run steps until the machine terminates, the cycle limit is hit, or an
// error occurs.
func (v *VM) Run() error {
	v.State = StateRunning
	for v.State == StateRunning {
		if err := v.Step(); err != nil {
			return err
		}
		if v.Machine.Terminated {
			break
		}
	}
	return nil
}

// GetExitCode returns the program's exit code, set by an SWIExit syscall.
func (v *VM) GetExitCode() int32 {
	return v.ExitCode
}

package integration

import (
	"strings"
	"testing"

	"github.com/tinylab/thumb16vm/parser"
	"github.com/tinylab/thumb16vm/service"
	"github.com/tinylab/thumb16vm/vm"
)

// A debugger restart must rewind PC to the entry point while keeping the
// loaded program and its breakpoints, and a subsequent run must stop at
// the preserved breakpoint rather than at the entry point.
func TestRestartWithBreakpoint(t *testing.T) {
	machine := vm.NewVM()
	machine.InitializeStack(uint32(vm.StackSegmentStart + vm.StackSegmentSize))
	svc := service.NewDebuggerService(machine)

	const entryPoint = uint32(0x8000)
	source := `.org 0x8000
    .text
    .global _start
_start:
    MOV R0, #10
    MOV R1, #0
    MOV R2, #1
loop:
    CMP R0, #0
    BEQ done
    MOV R3, R1
    ADD R1, R1, R2
    MOV R2, R3
    SUB R0, R0, #1
    B loop
done:
    SWI #0x00
`

	p := parser.NewParser(source, "test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := svc.LoadProgram(program, entryPoint); err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}
	if pc := svc.GetRegisterState().PC; pc != entryPoint {
		t.Fatalf("after load: PC=0x%08X, want 0x%08X", pc, entryPoint)
	}

	// Step into the program and plant a breakpoint where we stop.
	for i := 0; i < 3; i++ {
		if err := svc.Step(); err != nil {
			t.Fatalf("step %d failed: %v", i+1, err)
		}
	}
	breakpointAddr := svc.GetRegisterState().PC
	if breakpointAddr == entryPoint {
		t.Fatal("PC did not advance after stepping")
	}
	if err := svc.AddBreakpoint(breakpointAddr); err != nil {
		t.Fatalf("AddBreakpoint failed: %v", err)
	}

	// Restart rewinds PC but keeps program and breakpoints.
	if err := svc.ResetToEntryPoint(); err != nil {
		t.Fatalf("ResetToEntryPoint failed: %v", err)
	}
	if pc := svc.GetRegisterState().PC; pc != entryPoint {
		t.Fatalf("after restart: PC=0x%08X, want entry 0x%08X", pc, entryPoint)
	}
	breakpoints := svc.GetBreakpoints()
	if len(breakpoints) != 1 || breakpoints[0].Address != breakpointAddr {
		t.Fatalf("breakpoints after restart: %+v, want one at 0x%08X", breakpoints, breakpointAddr)
	}

	// Run again; execution must stop at the preserved breakpoint.
	svc.SetRunning(true)
	if err := svc.RunUntilHalt(); err != nil && !strings.Contains(err.Error(), "breakpoint") {
		t.Logf("RunUntilHalt: %v", err)
	}

	if pc := svc.GetRegisterState().PC; pc != breakpointAddr {
		t.Fatalf("stopped at PC=0x%08X, want breakpoint 0x%08X", pc, breakpointAddr)
	}
	if state := svc.GetExecutionState(); state != service.StateBreakpoint {
		t.Fatalf("execution state: %s, want %s", state, service.StateBreakpoint)
	}
}

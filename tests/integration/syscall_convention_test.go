package integration_test

import (
	"strings"
	"testing"
)

// The software-interrupt convention: the SWI immediate selects the
// operation, arguments travel in R0-R2, and SWI #0x00 exits with the code
// in R0. No other register participates in dispatch.

func TestSyscall_ExitCodeComesFromR0(t *testing.T) {
	code := `.org 0x8000
_start:
        MOV     R0, #42
        SWI     #0x00
`
	_, stderr, exitCode, err := runAssembly(t, code)
	if err != nil && !strings.Contains(err.Error(), "program exited with code 42") {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
	}
	if exitCode != 42 {
		t.Errorf("exit code: got %d, want 42", exitCode)
	}
}

func TestSyscall_ExitIgnoresOtherRegisters(t *testing.T) {
	// Only the immediate selects the syscall; a scratch value in R7 must
	// not change what SWI #0 means.
	code := `.org 0x8000
_start:
        LDR     R7, =0xDEADBEEF
        MOV     R0, #0
        SWI     #0x00
`
	stdout, stderr, exitCode, err := runAssembly(t, code)
	if err != nil && !strings.Contains(err.Error(), "program exited with code 0") {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
	}
	if exitCode != 0 {
		t.Errorf("exit code: got %d, want 0\nstdout: %s", exitCode, stdout)
	}
}

func TestSyscall_ConsoleOutputs(t *testing.T) {
	code := `.org 0x8000
_start:
        MOV     R0, #88         ; 'X'
        SWI     #0x01           ; WRITE_CHAR
        LDR     R0, =msg
        SWI     #0x02           ; WRITE_STRING
        MOV     R0, #42
        MOV     R1, #10
        SWI     #0x03           ; WRITE_INT, decimal
        SWI     #0x07           ; WRITE_NEWLINE
        MOV     R0, #0
        SWI     #0x00

msg:
        .asciz  "Y"
`
	stdout, stderr, exitCode, err := runAssembly(t, code)
	if err != nil && !strings.Contains(err.Error(), "program exited with code 0") {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr)
	}
	if exitCode != 0 {
		t.Errorf("exit code: got %d, want 0", exitCode)
	}
	for _, want := range []string{"X", "Y", "42"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q: %q", want, stdout)
		}
	}
}

func TestSyscall_WriteIntBases(t *testing.T) {
	code := `.org 0x8000
_start:
        MOV     R0, #255
        MOV     R1, #16
        SWI     #0x03           ; hex
        SWI     #0x07
        MOV     R0, #5
        MOV     R1, #2
        SWI     #0x03           ; binary
        SWI     #0x07
        MOV     R0, #0
        SWI     #0x00
`
	stdout, _, exitCode, err := runAssembly(t, code)
	if err != nil && !strings.Contains(err.Error(), "program exited with code 0") {
		t.Fatalf("unexpected error: %v", err)
	}
	if exitCode != 0 {
		t.Errorf("exit code: got %d, want 0", exitCode)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || lines[0] != "ff" || lines[1] != "101" {
		t.Errorf("base output: got %q, want [ff 101]", lines)
	}
}

func TestSyscall_ScratchRegistersSurviveCalculations(t *testing.T) {
	// A program free to use every low register for arithmetic must still
	// exit cleanly afterwards.
	code := `.org 0x8000
_start:
        MOV     R7, #100
        MOV     R6, #200
        ADD     R7, R7, R6      ; R7 = 300
        MOV     R5, #250
        MUL     R7, R5          ; R7 = 75000

        LDR     R0, =msg
        SWI     #0x02

        MOV     R0, #0
        SWI     #0x00

msg:
        .asciz  "Test passed"
`
	stdout, stderr, exitCode, err := runAssembly(t, code)
	if err != nil && !strings.Contains(err.Error(), "program exited with code 0") {
		t.Errorf("unexpected error: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Test passed") {
		t.Errorf("output: %q", stdout)
	}
	if exitCode != 0 {
		t.Errorf("exit code: got %d, want 0", exitCode)
	}
}

func TestSyscall_UnknownNumberTerminates(t *testing.T) {
	// An unassigned SWI number halts the machine rather than being
	// silently ignored; output printed before it must survive.
	code := `.org 0x8000
_start:
        MOV     R0, #65         ; 'A'
        SWI     #0x01
        SWI     #0x9C           ; unassigned
        MOV     R0, #66         ; 'B' - never reached
        SWI     #0x01
        MOV     R0, #0
        SWI     #0x00
`
	stdout, _, _, _ := runAssembly(t, code)
	if !strings.Contains(stdout, "A") {
		t.Errorf("output before the bad SWI should survive: %q", stdout)
	}
	if strings.Contains(stdout, "B") {
		t.Errorf("execution continued past an unassigned SWI: %q", stdout)
	}
}

package integration_test

import (
	"strings"
	"testing"
)

// Regression tests for automatic literal pool placement: programs whose
// string labels are reached through LDR Rd,=label must print correctly
// regardless of how many distinct literals the pool holds or how often
// the same label is loaded.

func TestLiteralPool_ProgramScenarios(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "two literals",
			code: `.org 0x8000
_start:
        LDR     R0, =msg1
        SWI     #0x02
        LDR     R0, =msg2
        SWI     #0x02
        MOV     R0, #0
        SWI     #0x00
msg1:
        .asciz  "Hello "
msg2:
        .asciz  "World"
`,
			want: "Hello World",
		},
		{
			name: "five literals",
			code: `.org 0x8000
_start:
        LDR     R0, =m1
        SWI     #0x02
        LDR     R0, =m2
        SWI     #0x02
        LDR     R0, =m3
        SWI     #0x02
        LDR     R0, =m4
        SWI     #0x02
        LDR     R0, =m5
        SWI     #0x02
        MOV     R0, #0
        SWI     #0x00
m1:
        .asciz  "A"
m2:
        .asciz  "B"
m3:
        .asciz  "C"
m4:
        .asciz  "D"
m5:
        .asciz  "E"
`,
			want: "ABCDE",
		},
		{
			name: "literal loads inside a loop",
			code: `.org 0x8000
_start:
        MOV     R5, #0
loop:
        CMP     R5, #3
        BGE     done
        LDR     R0, =msg1
        SWI     #0x02
        LDR     R0, =msg2
        SWI     #0x02
        ADD     R5, R5, #1
        B       loop
done:
        LDR     R0, =msg3
        SWI     #0x02
        MOV     R0, #0
        SWI     #0x00
msg1:
        .asciz  "X"
msg2:
        .asciz  "Y"
msg3:
        .asciz  "Z"
`,
			want: "XYXYXYZ",
		},
		{
			name: "branch around the pool",
			code: `.org 0x8000
_start:
        MOV     R5, #0
        LDR     R0, =msg1
        SWI     #0x02
        CMP     R5, #0
        BEQ     path1
        B       path2
path1:
        LDR     R0, =msg2
        SWI     #0x02
        B       end
path2:
        LDR     R0, =msg3
        SWI     #0x02
end:
        MOV     R0, #0
        SWI     #0x00
msg1:
        .asciz  "1"
msg2:
        .asciz  "2"
msg3:
        .asciz  "3"
`,
			want: "12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, exitCode, err := runAssembly(t, tt.code)
			if err != nil {
				t.Fatalf("execution error: %v\nstderr: %s", err, stderr)
			}
			if exitCode != 0 {
				t.Errorf("exit code %d, want 0\nstderr: %s", exitCode, stderr)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, stdout)
			}
		})
	}
}

func TestLiteralPool_RepeatedLabelDeduplicates(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(".org 0x8000\n_start:\n")
	for i := 0; i < 8; i++ {
		sb.WriteString("        LDR     R0, =msg\n        SWI     #0x02\n")
	}
	sb.WriteString("        MOV     R0, #0\n        SWI     #0x00\nmsg:\n        .asciz  \"OK\"\n")

	stdout, stderr, exitCode, err := runAssembly(t, sb.String())
	if err != nil {
		t.Fatalf("execution error: %v\nstderr: %s", err, stderr)
	}
	if exitCode != 0 {
		t.Errorf("exit code %d, want 0\nstderr: %s", exitCode, stderr)
	}
	if got := strings.Count(stdout, "OK"); got != 8 {
		t.Errorf("expected 8 OKs, got %d: %q", got, stdout)
	}
}

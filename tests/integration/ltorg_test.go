package integration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tinylab/thumb16vm/encoder"
	"github.com/tinylab/thumb16vm/parser"
	"github.com/tinylab/thumb16vm/vm"
)

func parseLtorg(t *testing.T, source string) *parser.Program {
	t.Helper()
	p := parser.NewParser(source, "ltorg_test.s")
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return program
}

// TestLtorg_PoolPlacement covers how .ltorg records pools and how the
// parser attributes LDR= literals to them.
func TestLtorg_PoolPlacement(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantPools  int
		wantCounts []int
	}{
		{
			name: "single pool",
			source: `.org 0x8000
main:
    LDR R0, =0x12345678
    LDR R1, =0xDEADBEEF
    ADD R2, R0, R1
    MOV R0, #0
    SWI #0x00
    .ltorg
`,
			wantPools:  1,
			wantCounts: []int{2},
		},
		{
			name: "no ltorg means no pools",
			source: `.org 0x8000
main:
    LDR R0, =0x12345678
    SWI #0x00
`,
			wantPools: 0,
		},
		{
			name: "two pools split the literals",
			source: `.org 0x8000
main:
    LDR R0, =0x11111111
    LDR R1, =0x22222222
    LDR R2, =0x33333333
    ADD R0, R1, R2
    .ltorg
    LDR R3, =0x44444444
    LDR R4, =0x55555555
    ADD R3, R4, R0
    .ltorg
`,
			wantPools:  2,
			wantCounts: []int{3, 2},
		},
		{
			name: "duplicates counted per LDR at parse time",
			source: `.org 0x8000
main:
    LDR R0, =0x12345678
    LDR R1, =0x12345678
    LDR R2, =0xABCDEF00
    LDR R3, =0x12345678
    ADD R0, R0, R1
    .ltorg
`,
			wantPools:  1,
			wantCounts: []int{4},
		},
		{
			name: "literals after the last ltorg fall back to it",
			source: `.org 0x8000
section1:
    LDR R0, =0x11111111
    LDR R1, =0x22222222
    ADD R2, R0, R1
    .ltorg
section2:
    LDR R3, =0x33333333
    LDR R4, =0x44444444
    LDR R5, =0x55555555
    LDR R6, =0x66666666
    ADD R0, R3, R4
    .ltorg
section3:
    LDR R7, =0x77777777
    ADD R0, R7, R0
    MOV R0, #0
    SWI #0x00
`,
			wantPools:  2,
			wantCounts: []int{2, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := parseLtorg(t, tt.source)

			if len(program.LiteralPoolLocs) != tt.wantPools {
				t.Fatalf("pools: got %d, want %d", len(program.LiteralPoolLocs), tt.wantPools)
			}
			for _, loc := range program.LiteralPoolLocs {
				if loc%4 != 0 {
					t.Errorf("pool at 0x%08X is not word-aligned", loc)
				}
			}
			if tt.wantCounts != nil {
				if len(program.LiteralPoolCounts) != len(tt.wantCounts) {
					t.Fatalf("counts: got %v, want %v", program.LiteralPoolCounts, tt.wantCounts)
				}
				for i, want := range tt.wantCounts {
					if program.LiteralPoolCounts[i] != want {
						t.Errorf("pool %d count: got %d, want %d", i, program.LiteralPoolCounts[i], want)
					}
				}
			}
		})
	}
}

func TestLtorg_PoolIndicesMatchLocations(t *testing.T) {
	program := parseLtorg(t, `.org 0x8000
main:
    LDR R0, =0x11111111
    .ltorg
    LDR R1, =0x22222222
    .ltorg
    LDR R2, =0x33333333
    .ltorg
`)

	if len(program.LiteralPoolLocs) != 3 {
		t.Fatalf("pools: got %d, want 3", len(program.LiteralPoolLocs))
	}
	for i, poolLoc := range program.LiteralPoolLocs {
		if idx, ok := program.LiteralPoolIndices[poolLoc]; ok && idx != i {
			t.Errorf("pool at 0x%08X indexed %d, want %d", poolLoc, idx, i)
		}
	}
}

// TestLtorg_ManyLiterals builds a pool from a generated run of 20 LDR=
// pseudo-instructions.
func TestLtorg_ManyLiterals(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(".org 0x0000\n\nmain:")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "\n    LDR R0, =0x%08X", 0x10000000+uint32(i)*0x01000000)
	}
	sb.WriteString("\n    ADD R0, R0, R0\n    .ltorg\n")

	program := parseLtorg(t, sb.String())
	if len(program.LiteralPoolCounts) != 1 || program.LiteralPoolCounts[0] != 20 {
		t.Errorf("counts: got %v, want [20]", program.LiteralPoolCounts)
	}
}

// TestLtorg_EncodesAtLowOrigin drives the encoder over a program at
// origin 0 whose pool sits in an explicitly mapped low-memory segment.
func TestLtorg_EncodesAtLowOrigin(t *testing.T) {
	program := parseLtorg(t, `.org 0x0000
main:
    LDR R0, =0x10000000
    LDR R1, =0x20000000
    LDR R2, =0x30000000
    LDR R3, =0x40000000
    .ltorg
    ADD R0, R0, R1
    MOV R0, #0
    SWI #0x00
`)

	machine := vm.NewVM()
	machine.Memory.AddSegment("low-memory", 0, uint32(vm.CodeSegmentStart),
		vm.PermRead|vm.PermWrite|vm.PermExecute)

	enc := encoder.NewEncoder(program.SymbolTable)
	enc.LiteralPoolLocs = program.LiteralPoolLocs
	enc.LiteralPoolCounts = program.LiteralPoolCounts

	for _, inst := range program.Instructions {
		if _, err := enc.EncodeInstruction(inst, inst.Address); err != nil {
			t.Fatalf("encoding %s at 0x%04X: %v", inst.Mnemonic, inst.Address, err)
		}
	}

	if len(enc.LiteralPool) != 4 {
		t.Errorf("pool entries: got %d, want 4", len(enc.LiteralPool))
	}
	for addr := range enc.LiteralPool {
		if addr < program.LiteralPoolLocs[0] {
			t.Errorf("literal at 0x%08X placed before the .ltorg location 0x%08X",
				addr, program.LiteralPoolLocs[0])
		}
	}

	enc.ValidatePoolCapacity()
	if enc.HasPoolWarnings() {
		t.Logf("pool warnings: %v", enc.GetPoolWarnings())
	}
}

// TestLtorg_FallbackWithoutDirective encodes LDR= pseudo-loads with no
// .ltorg present; the end-of-image fallback must stay in range.
func TestLtorg_FallbackWithoutDirective(t *testing.T) {
	program := parseLtorg(t, `.org 0x8000
main:
    LDR R0, =0x12345678
    LDR R1, =0xDEADBEEF
    ADD R2, R0, R1
    MOV R0, #0
    SWI #0x00
`)

	enc := encoder.NewEncoder(program.SymbolTable)
	enc.LiteralPoolStart = 0x8100

	for _, inst := range program.Instructions {
		if _, err := enc.EncodeInstruction(inst, inst.Address); err != nil {
			t.Fatalf("encoding %s: %v", inst.Mnemonic, err)
		}
	}
	if len(enc.LiteralPool) != 2 {
		t.Errorf("pool entries: got %d, want 2", len(enc.LiteralPool))
	}
}

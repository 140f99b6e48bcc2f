package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tinylab/thumb16vm/parser"
)

func process(t *testing.T, pp *parser.Preprocessor, content string) string {
	t.Helper()
	out, err := pp.ProcessContent(content, "test.s")
	if err != nil {
		t.Fatalf("ProcessContent failed: %v", err)
	}
	return out
}

func TestPreprocessor_PassThrough(t *testing.T) {
	pp := parser.NewPreprocessor("")
	src := "MOV R0, #1\nADD R0, #2\n"
	out := process(t, pp, src)
	if !strings.Contains(out, "MOV R0, #1") || !strings.Contains(out, "ADD R0, #2") {
		t.Errorf("plain lines should pass through: %q", out)
	}
}

func TestPreprocessor_IfdefTakenAndSkipped(t *testing.T) {
	src := `.ifdef DEBUG
MOV R7, #1
.endif
NOP`

	pp := parser.NewPreprocessor("")
	out := process(t, pp, src)
	if strings.Contains(out, "MOV R7") {
		t.Error("undefined symbol: .ifdef body should be skipped")
	}
	if !strings.Contains(out, "NOP") {
		t.Error("code after .endif should remain")
	}

	pp = parser.NewPreprocessor("")
	pp.Define("DEBUG")
	out = process(t, pp, src)
	if !strings.Contains(out, "MOV R7") {
		t.Error("defined symbol: .ifdef body should be kept")
	}
}

func TestPreprocessor_IfndefAndElse(t *testing.T) {
	src := `.ifndef RELEASE
MOV R0, #1
.else
MOV R0, #2
.endif`

	pp := parser.NewPreprocessor("")
	out := process(t, pp, src)
	if !strings.Contains(out, "#1") || strings.Contains(out, "#2") {
		t.Errorf("ifndef branch: got %q", out)
	}

	pp = parser.NewPreprocessor("")
	pp.Define("RELEASE")
	out = process(t, pp, src)
	if strings.Contains(out, "#1") || !strings.Contains(out, "#2") {
		t.Errorf("else branch: got %q", out)
	}
}

func TestPreprocessor_NestedConditionals(t *testing.T) {
	src := `.ifdef OUTER
.ifdef INNER
A
.endif
B
.endif
C`

	pp := parser.NewPreprocessor("")
	pp.Define("OUTER")
	out := process(t, pp, src)
	if strings.Contains(out, "A") {
		t.Error("inner body should be skipped when INNER undefined")
	}
	if !strings.Contains(out, "B") || !strings.Contains(out, "C") {
		t.Errorf("outer body and trailing code should remain: %q", out)
	}
}

func TestPreprocessor_UnclosedConditionalReported(t *testing.T) {
	pp := parser.NewPreprocessor("")
	_, _ = pp.ProcessContent(".ifdef X\nNOP\n", "test.s")
	if !pp.Errors().HasErrors() {
		t.Error("unclosed .ifdef should be reported")
	}
}

func TestPreprocessor_DefineUndefine(t *testing.T) {
	pp := parser.NewPreprocessor("")
	pp.Define("FLAG")
	if !pp.IsDefined("FLAG") {
		t.Error("Define should register the symbol")
	}
	pp.Undefine("FLAG")
	if pp.IsDefined("FLAG") {
		t.Error("Undefine should remove the symbol")
	}
}

func TestPreprocessor_Include(t *testing.T) {
	dir := t.TempDir()
	incPath := filepath.Join(dir, "common.s")
	if err := os.WriteFile(incPath, []byte("MOV R1, #7\n"), 0o644); err != nil {
		t.Fatalf("writing include file: %v", err)
	}

	pp := parser.NewPreprocessor(dir)
	out := process(t, pp, `.include "common.s"`+"\nNOP")
	if !strings.Contains(out, "MOV R1, #7") {
		t.Errorf("included content missing: %q", out)
	}
	if !strings.Contains(out, "NOP") {
		t.Errorf("line after include missing: %q", out)
	}
}

func TestPreprocessor_CircularIncludeRejected(t *testing.T) {
	dir := t.TempDir()
	selfPath := filepath.Join(dir, "self.s")
	if err := os.WriteFile(selfPath, []byte(`.include "self.s"`+"\n"), 0o644); err != nil {
		t.Fatalf("writing include file: %v", err)
	}

	pp := parser.NewPreprocessor(dir)
	_, _ = pp.ProcessContent(`.include "self.s"`, "test.s")
	if !pp.Errors().HasErrors() {
		t.Error("circular include should be reported")
	}
}

func TestPreprocessor_MissingIncludeReported(t *testing.T) {
	pp := parser.NewPreprocessor(t.TempDir())
	_, _ = pp.ProcessContent(`.include "nope.s"`, "test.s")
	if !pp.Errors().HasErrors() {
		t.Error("missing include file should be reported")
	}
}

func TestParseFileSimple(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.s")
	source := `.org 0x8000
_start:
    MOV R0, #1
    SWI #0x00
`
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	program, _, err := parser.ParseFileSimple(path)
	if err != nil {
		t.Fatalf("ParseFileSimple failed: %v", err)
	}
	if len(program.Instructions) != 2 {
		t.Errorf("instructions: got %d, want 2", len(program.Instructions))
	}
	if sym, ok := program.SymbolTable.Lookup("_start"); !ok || sym.Value != 0x8000 {
		t.Errorf("_start: got %v", sym)
	}
}

func TestParseFileSimple_WithInclude(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "defs.s"), []byte(".equ ANSWER, 42\n"), 0o644); err != nil {
		t.Fatalf("writing include: %v", err)
	}
	mainSrc := `.include "defs.s"
    MOV R0, #ANSWER
    SWI #0x00
`
	mainPath := filepath.Join(dir, "main.s")
	if err := os.WriteFile(mainPath, []byte(mainSrc), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	program, _, err := parser.ParseFileSimple(mainPath)
	if err != nil {
		t.Fatalf("ParseFileSimple failed: %v", err)
	}
	if sym, ok := program.SymbolTable.Lookup("ANSWER"); !ok || sym.Value != 42 {
		t.Errorf("ANSWER from included file: got %v", sym)
	}
}

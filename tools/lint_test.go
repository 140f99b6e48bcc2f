package tools

import (
	"strings"
	"testing"
)

func lintSource(t *testing.T, source string) []*LintIssue {
	t.Helper()
	return NewLinter(DefaultLintOptions()).Lint(source, "test.s")
}

func hasIssue(issues []*LintIssue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestLint_CleanProgram(t *testing.T) {
	issues := lintSource(t, `.org 0x8000
_start:
    MOV R0, #1
loop:
    SUB R0, R0, #1
    BNE loop
    SWI #0x00
`)
	for _, issue := range issues {
		if issue.Level == LintError {
			t.Errorf("clean program produced error: %s", issue)
		}
	}
}

func TestLint_UndefinedLabel(t *testing.T) {
	issues := lintSource(t, `_start:
    B nowhere
`)
	if !hasIssue(issues, "UNDEF_LABEL") {
		t.Errorf("expected UNDEF_LABEL, got %v", issues)
	}
}

func TestLint_UndefinedLabelSuggestsSimilar(t *testing.T) {
	issues := lintSource(t, `_start:
    B lop
loop:
    SWI #0x00
`)
	found := false
	for _, issue := range issues {
		if issue.Code == "UNDEF_LABEL" && strings.Contains(issue.Message, "loop") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a did-you-mean suggestion naming loop: %v", issues)
	}
}

func TestLint_UnusedLabel(t *testing.T) {
	issues := lintSource(t, `_start:
    SWI #0x00
orphan:
    NOP
`)
	if !hasIssue(issues, "UNUSED_LABEL") {
		t.Errorf("expected UNUSED_LABEL for orphan, got %v", issues)
	}

	// Entry-point names are exempt
	for _, issue := range issues {
		if issue.Code == "UNUSED_LABEL" && strings.Contains(issue.Message, "_start") {
			t.Error("_start should not be flagged as unused")
		}
	}
}

func TestLint_UnreachableCode(t *testing.T) {
	issues := lintSource(t, `_start:
    B away
    MOV R0, #1
away:
    SWI #0x00
`)
	if !hasIssue(issues, "UNREACHABLE_CODE") {
		t.Errorf("expected UNREACHABLE_CODE after B, got %v", issues)
	}
}

func TestLint_LabelledCodeAfterBranchIsReachable(t *testing.T) {
	issues := lintSource(t, `_start:
    B second
first:
    SWI #0x00
second:
    B first
`)
	if hasIssue(issues, "UNREACHABLE_CODE") {
		t.Errorf("labelled instruction after branch is a branch target: %v", issues)
	}
}

func TestLint_CodeAfterExitSyscall(t *testing.T) {
	issues := lintSource(t, `_start:
    SWI #0x00
    MOV R0, #1
`)
	if !hasIssue(issues, "UNREACHABLE_CODE") {
		t.Errorf("expected UNREACHABLE_CODE after exit SWI, got %v", issues)
	}
}

func TestLint_ParseErrorSurfaces(t *testing.T) {
	issues := lintSource(t, "FROB R0, R1\n")
	if !hasIssue(issues, "PARSE_ERROR") {
		t.Errorf("expected PARSE_ERROR, got %v", issues)
	}
}

func TestLint_OptionsDisableChecks(t *testing.T) {
	source := `_start:
    SWI #0x00
orphan:
    NOP
`
	opts := DefaultLintOptions()
	opts.CheckUnused = false
	issues := NewLinter(opts).Lint(source, "test.s")
	if hasIssue(issues, "UNUSED_LABEL") {
		t.Error("CheckUnused=false should suppress UNUSED_LABEL")
	}
}

func TestLint_IssueStringFormat(t *testing.T) {
	issue := &LintIssue{
		Level:   LintWarning,
		Line:    7,
		Column:  3,
		Message: "something odd",
		Code:    "TEST_CODE",
	}
	s := issue.String()
	for _, want := range []string{"line 7:3", "warning", "something odd", "TEST_CODE"} {
		if !strings.Contains(s, want) {
			t.Errorf("issue string %q missing %q", s, want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"loop", "loop", 0},
		{"loop", "lop", 1},
		{"start", "tart", 1},
		{"abc", "xyz", 3},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalizeRegister(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"r13", "SP"},
		{"SP", "SP"},
		{"R14", "LR"},
		{"pc", "PC"},
		{"R0", "R0"},
	}
	for _, tt := range tests {
		if got := normalizeRegister(tt.in); got != tt.want {
			t.Errorf("normalizeRegister(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

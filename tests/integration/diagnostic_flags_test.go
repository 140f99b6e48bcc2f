package integration_test

import (
	"os"
	"os/exec"
	"strings"
	"testing"
)

// Helper to create a temporary test program
func createTestProgram(t *testing.T, code string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_*.s")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := tmpFile.WriteString(code); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to write to temp file: %v", err)
	}

	tmpFile.Close()
	return tmpFile.Name()
}

// Helper to build the emulator and run it with flags
func runEmulatorWithFlags(t *testing.T, progPath string, flags ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	buildCmd := exec.Command("go", "build", "-o", "thumb-emu-test")
	buildCmd.Dir = "../.."
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build emulator: %v", err)
	}
	t.Cleanup(func() { os.Remove("../../thumb-emu-test") })

	args := append(flags, progPath)
	cmd := exec.Command("../../thumb-emu-test", args...)

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run emulator: %v", err)
		}
	}

	return outBuf.String(), errBuf.String(), exitCode
}

// diagProgram exercises arithmetic, memory traffic, and flag changes so
// every collector has something to record.
const diagProgram = `.org 0x8000
start:
    SUB SP, SP, #16
    MOV R1, #42
    STR R1, [SP]
    STR R1, [SP, #4]
    LDR R2, [SP]
    LDR R3, [SP, #4]
    CMP R2, R3
    ADD SP, SP, #16
    MOV R0, #0
    SWI #0x00
`

func tempOutputFile(t *testing.T, pattern string) string {
	t.Helper()
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

// TestExecutionTraceFlag tests the -trace and -trace-file flags
func TestExecutionTraceFlag(t *testing.T) {
	progPath := createTestProgram(t, diagProgram)
	defer os.Remove(progPath)

	tracePath := tempOutputFile(t, "trace_*.log")

	_, stderr, exitCode := runEmulatorWithFlags(t, progPath,
		"-trace",
		"-trace-file", tracePath)

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d\nStderr: %s", exitCode, stderr)
	}

	traceData, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("Failed to read trace file: %v", err)
	}
	traceOutput := string(traceData)

	if traceOutput == "" {
		t.Fatal("Trace file is empty")
	}

	// One line per instruction: sequence, address, half-word, category
	if !strings.Contains(traceOutput, "0x8000") && !strings.Contains(traceOutput, "0x8002") {
		t.Error("Trace should contain instruction addresses")
	}
	if !strings.Contains(traceOutput, "IMMEDIATE") {
		t.Error("Trace should name the IMMEDIATE category for MOV R1, #42")
	}
	if !strings.Contains(traceOutput, "SP_RELATIVE_LOAD_STORE") {
		t.Error("Trace should name the SP_RELATIVE_LOAD_STORE category for the STR/LDR [SP] pairs")
	}
	if !strings.Contains(traceOutput, "SOFTWARE_INTERRUPT") {
		t.Error("Trace should name the SOFTWARE_INTERRUPT category for the exit SWI")
	}

	lines := strings.Split(strings.TrimSpace(traceOutput), "\n")
	if len(lines) < 10 {
		t.Errorf("Expected at least 10 trace entries, got %d", len(lines))
	}
}

// TestStatsFlag tests the -stats and -stats-file flags
func TestStatsFlag(t *testing.T) {
	progPath := createTestProgram(t, diagProgram)
	defer os.Remove(progPath)

	statsPath := tempOutputFile(t, "stats_*.txt")

	_, stderr, exitCode := runEmulatorWithFlags(t, progPath,
		"-stats",
		"-stats-file", statsPath)

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d\nStderr: %s", exitCode, stderr)
	}

	statsData, err := os.ReadFile(statsPath)
	if err != nil {
		t.Fatalf("Failed to read stats file: %v", err)
	}
	statsOutput := string(statsData)

	if !strings.Contains(statsOutput, "Total instructions:") {
		t.Error("Stats should report the total instruction count")
	}
	if !strings.Contains(statsOutput, "IMMEDIATE") {
		t.Error("Stats should break down by category")
	}
	if !strings.Contains(statsOutput, "%") {
		t.Error("Stats should include per-category percentages")
	}
}

// TestCoverageFlag tests the -coverage and -coverage-file flags
func TestCoverageFlag(t *testing.T) {
	progPath := createTestProgram(t, diagProgram)
	defer os.Remove(progPath)

	coveragePath := tempOutputFile(t, "coverage_*.txt")

	_, stderr, exitCode := runEmulatorWithFlags(t, progPath,
		"-coverage",
		"-coverage-file", coveragePath)

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d\nStderr: %s", exitCode, stderr)
	}

	coverageData, err := os.ReadFile(coveragePath)
	if err != nil {
		t.Fatalf("Failed to read coverage file: %v", err)
	}
	coverageOutput := string(coverageData)

	if !strings.Contains(coverageOutput, "Executed") {
		t.Error("Coverage should report executed address count")
	}
	if !strings.Contains(coverageOutput, "0x00008000") {
		t.Error("Coverage should list the entry point address")
	}
	if !strings.Contains(coverageOutput, "executions") {
		t.Error("Coverage should report per-address execution counts")
	}
}

// TestFlagTraceFlag tests the -flag-trace and -flag-trace-file flags
func TestFlagTraceFlag(t *testing.T) {
	progPath := createTestProgram(t, diagProgram)
	defer os.Remove(progPath)

	flagTracePath := tempOutputFile(t, "flag_trace_*.txt")

	_, stderr, exitCode := runEmulatorWithFlags(t, progPath,
		"-flag-trace",
		"-flag-trace-file", flagTracePath)

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d\nStderr: %s", exitCode, stderr)
	}

	flagTraceData, err := os.ReadFile(flagTracePath)
	if err != nil {
		t.Fatalf("Failed to read flag trace file: %v", err)
	}
	flagTraceOutput := string(flagTraceData)

	if !strings.Contains(flagTraceOutput, "Flag changes:") {
		t.Error("Flag trace should start with a change summary")
	}
	// CMP R2, R3 with equal operands sets Z and C
	if !strings.Contains(flagTraceOutput, "Z") || !strings.Contains(flagTraceOutput, "C") {
		t.Error("Flag trace should record the Z and C changes from the CMP")
	}
}

// TestRegisterTraceFlag tests the -register-trace and -register-trace-file flags
func TestRegisterTraceFlag(t *testing.T) {
	progPath := createTestProgram(t, diagProgram)
	defer os.Remove(progPath)

	regTracePath := tempOutputFile(t, "register_trace_*.txt")

	_, stderr, exitCode := runEmulatorWithFlags(t, progPath,
		"-register-trace",
		"-register-trace-file", regTracePath)

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d\nStderr: %s", exitCode, stderr)
	}

	regTraceData, err := os.ReadFile(regTracePath)
	if err != nil {
		t.Fatalf("Failed to read register trace file: %v", err)
	}
	regTraceOutput := string(regTraceData)

	if !strings.Contains(regTraceOutput, "writes") {
		t.Error("Register trace should summarize writes per register")
	}
	if !strings.Contains(regTraceOutput, "R1") {
		t.Error("Register trace should mention R1 (written by MOV R1, #42)")
	}
}

// TestMultipleDiagnosticFlags tests running with every collector attached
func TestMultipleDiagnosticFlags(t *testing.T) {
	progPath := createTestProgram(t, diagProgram)
	defer os.Remove(progPath)

	tracePath := tempOutputFile(t, "trace_*.log")
	statsPath := tempOutputFile(t, "stats_*.txt")
	coveragePath := tempOutputFile(t, "coverage_*.txt")
	flagTracePath := tempOutputFile(t, "flag_trace_*.txt")
	regTracePath := tempOutputFile(t, "register_trace_*.txt")

	_, stderr, exitCode := runEmulatorWithFlags(t, progPath,
		"-trace", "-trace-file", tracePath,
		"-stats", "-stats-file", statsPath,
		"-coverage", "-coverage-file", coveragePath,
		"-flag-trace", "-flag-trace-file", flagTracePath,
		"-register-trace", "-register-trace-file", regTracePath)

	if exitCode != 0 {
		t.Errorf("Expected exit code 0, got %d\nStderr: %s", exitCode, stderr)
	}

	for name, path := range map[string]string{
		"trace":          tracePath,
		"stats":          statsPath,
		"coverage":       coveragePath,
		"flag trace":     flagTracePath,
		"register trace": regTracePath,
	} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read %s file: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s file is empty", name)
		}
	}
}

package debugger

import (
	"sync"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/tinylab/thumb16vm/core"
	"github.com/tinylab/thumb16vm/debugger"
	"github.com/tinylab/thumb16vm/vm"
)

// The TUI's capture/detect state is written by the execution goroutine
// while the UI thread reads it for view updates; these tests hammer both
// sides so the race detector can prove the locking.

func concurrencyTUI(t *testing.T) (*debugger.TUI, tcell.SimulationScreen) {
	t.Helper()
	dbg := debugger.NewDebugger(vm.NewVM())
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("simulation screen init: %v", err)
	}
	return debugger.NewTUIWithScreen(dbg, screen), screen
}

// hammer runs each worker fn iterations times on its own goroutine and
// waits for all of them.
func hammer(iterations int, workers ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(workers))
	for _, fn := range workers {
		go func(fn func()) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				fn()
			}
		}(fn)
	}
	wg.Wait()
}

func TestTUI_ConcurrentCaptureAndDetect(t *testing.T) {
	tui, screen := concurrencyTUI(t)
	defer screen.Fini()

	hammer(100,
		tui.CaptureRegisterState,
		func() { tui.DetectRegisterChanges() },
		tui.CaptureMemoryTraceState,
		func() { tui.DetectMemoryWrites() },
	)
}

func TestTUI_ConcurrentViewUpdatesAndCapture(t *testing.T) {
	tui, screen := concurrencyTUI(t)
	defer screen.Fini()

	hammer(100,
		func() {
			tui.CaptureRegisterState()
			tui.DetectRegisterChanges()
		},
		func() {
			tui.CaptureMemoryTraceState()
			tui.DetectMemoryWrites()
		},
		tui.UpdateRegisterView,
		tui.UpdateMemoryView,
	)
}

func TestTUI_ConcurrentStackView(t *testing.T) {
	tui, screen := concurrencyTUI(t)
	defer screen.Fini()

	hammer(50,
		tui.UpdateStackView,
		tui.UpdateStackView,
		tui.UpdateStackView,
	)
}

// TestTUI_ExecutionLoopPattern mirrors the real run loop: a background
// goroutine captures and detects after each simulated instruction while
// the UI thread refreshes its views.
func TestTUI_ExecutionLoopPattern(t *testing.T) {
	tui, screen := concurrencyTUI(t)
	defer screen.Fini()

	tui.Debugger.VM.Machine.R[0] = 0x12345678
	tui.Debugger.VM.Machine.R[core.PC] = 0x8000
	tui.Debugger.VM.Machine.CPSR.N = true
	tui.Debugger.VM.Machine.CPSR.C = true

	hammer(50,
		func() {
			tui.CaptureRegisterState()
			tui.DetectRegisterChanges()
			tui.CaptureMemoryTraceState()
			tui.DetectMemoryWrites()
		},
		func() {
			tui.UpdateRegisterView()
			tui.UpdateMemoryView()
			tui.UpdateStackView()
			tui.UpdateDisassemblyView()
			tui.UpdateSourceView()
			tui.UpdateBreakpointsView()
		},
	)
}

func TestTUI_DetectAfterCaptureReportsDelta(t *testing.T) {
	tui, screen := concurrencyTUI(t)
	defer screen.Fini()

	tui.CaptureRegisterState()
	if changed := tui.DetectRegisterChanges(); len(changed) != 0 {
		t.Errorf("no writes yet, got changes %v", changed)
	}

	tui.Debugger.VM.Machine.R[2] = 7
	tui.Debugger.VM.Machine.R[5] = 9
	changed := tui.DetectRegisterChanges()
	if len(changed) != 2 {
		t.Errorf("changed registers: %v, want [2 5]", changed)
	}
}

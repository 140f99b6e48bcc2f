package debugger

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tinylab/thumb16vm/vm"
)

// simulationTUI builds a TUI over a simulation screen for tests that need
// access to unexported methods.
func simulationTUI(t *testing.T) (*TUI, tcell.SimulationScreen) {
	t.Helper()
	dbg := NewDebugger(vm.NewVM())
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	return NewTUIWithScreen(dbg, screen), screen
}

// runWithin fails the test if fn does not return inside limit.
func runWithin(t *testing.T, limit time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatalf("%s blocked for more than %v", what, limit)
	}
}

func TestExecuteCommandDoesNotBlock(t *testing.T) {
	tui, screen := simulationTUI(t)
	defer screen.Fini()

	runWithin(t, 2*time.Second, "executeCommand", func() {
		tui.executeCommand("help")
	})
}

func TestHandleCommandDoesNotBlock(t *testing.T) {
	tui, screen := simulationTUI(t)
	defer screen.Fini()

	tui.CommandInput.SetText("help")
	runWithin(t, 100*time.Millisecond, "handleCommand", func() {
		tui.handleCommand(tcell.KeyEnter)
	})
}

package main

import "testing"

const testProgram = ".org 0x8000\n_start:\n    MOV R0, #42\n    SWI #0\n"

func loadedApp(t *testing.T) *App {
	t.Helper()
	app := NewApp()
	if err := app.LoadProgramFromSource(testProgram, "test.s", 0x8000); err != nil {
		t.Fatalf("LoadProgramFromSource failed: %v", err)
	}
	return app
}

func TestApp_LoadProgramParksPC(t *testing.T) {
	app := loadedApp(t)

	regs := app.GetRegisters()
	if regs.PC != 0x8000 {
		t.Errorf("PC after load: got 0x%08X, want 0x8000", regs.PC)
	}
	if regs.Registers[0] != 0 {
		t.Errorf("R0 before execution: got %d, want 0", regs.Registers[0])
	}
}

func TestApp_StepExecutesOneInstruction(t *testing.T) {
	app := loadedApp(t)

	if err := app.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	regs := app.GetRegisters()
	if regs.Registers[0] != 42 {
		t.Errorf("R0 after MOV: got %d, want 42", regs.Registers[0])
	}
	if regs.PC != 0x8002 {
		t.Errorf("PC after one step: got 0x%08X, want 0x8002", regs.PC)
	}
}

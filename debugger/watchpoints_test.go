package debugger

import (
	"testing"

	"github.com/tinylab/thumb16vm/vm"
)

func TestWatchpoints_AddAndQuery(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint(WatchWrite, "r0", 0, true, 0)
	if wp.ID != 1 || !wp.Enabled || !wp.IsRegister || wp.Register != 0 {
		t.Errorf("register watchpoint: %+v", wp)
	}

	mem := wm.AddWatchpoint(WatchWrite, "[0x20000]", 0x20000, false, 0)
	if mem.ID == wp.ID || mem.IsRegister {
		t.Errorf("memory watchpoint: %+v", mem)
	}

	if got := wm.GetWatchpoint(wp.ID); got != wp {
		t.Error("GetWatchpoint should find the register watchpoint")
	}
	if got := len(wm.GetAllWatchpoints()); got != 2 {
		t.Errorf("GetAllWatchpoints: got %d", got)
	}
}

func TestWatchpoints_DeleteEnableDisable(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint(WatchWrite, "r1", 0, true, 1)

	if err := wm.DisableWatchpoint(wp.ID); err != nil || wp.Enabled {
		t.Errorf("disable: err=%v enabled=%v", err, wp.Enabled)
	}
	if err := wm.EnableWatchpoint(wp.ID); err != nil || !wp.Enabled {
		t.Errorf("enable: err=%v enabled=%v", err, wp.Enabled)
	}

	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if wm.GetWatchpoint(wp.ID) != nil {
		t.Error("deleted watchpoint still present")
	}
	if err := wm.DeleteWatchpoint(99); err == nil {
		t.Error("deleting unknown ID should error")
	}
}

func TestWatchpoints_RegisterValueChangeTriggers(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewVM()

	wp := wm.AddWatchpoint(WatchWrite, "r0", 0, true, 0)
	machine.Machine.R[0] = 100
	if err := wm.InitializeWatchpoint(wp.ID, machine); err != nil {
		t.Fatalf("InitializeWatchpoint: %v", err)
	}
	if wp.LastValue != 100 {
		t.Errorf("LastValue after init: %d", wp.LastValue)
	}

	if triggered, changed := wm.CheckWatchpoints(machine); triggered != nil || changed {
		t.Error("unchanged value must not trigger")
	}

	machine.Machine.R[0] = 200
	triggered, changed := wm.CheckWatchpoints(machine)
	if triggered == nil || !changed || triggered.ID != wp.ID {
		t.Fatalf("trigger: (%+v, %v)", triggered, changed)
	}
	if wp.HitCount != 1 || wp.LastValue != 200 {
		t.Errorf("after trigger: hits=%d last=%d", wp.HitCount, wp.LastValue)
	}
}

func TestWatchpoints_MemoryValueChangeTriggers(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewVM()

	const addr = uint32(0x20000)
	machine.Memory.WriteWord(addr, 0x1111)

	wp := wm.AddWatchpoint(WatchWrite, "[0x20000]", addr, false, 0)
	if err := wm.InitializeWatchpoint(wp.ID, machine); err != nil {
		t.Fatalf("InitializeWatchpoint: %v", err)
	}

	if triggered, _ := wm.CheckWatchpoints(machine); triggered != nil {
		t.Error("unchanged memory must not trigger")
	}

	machine.Memory.WriteWord(addr, 0x2222)
	if triggered, changed := wm.CheckWatchpoints(machine); triggered == nil || !changed {
		t.Error("memory change should trigger")
	}
}

func TestWatchpoints_DisabledDoesNotTrigger(t *testing.T) {
	wm := NewWatchpointManager()
	machine := vm.NewVM()

	wp := wm.AddWatchpoint(WatchWrite, "r0", 0, true, 0)
	_ = wm.InitializeWatchpoint(wp.ID, machine)
	_ = wm.DisableWatchpoint(wp.ID)

	machine.Machine.R[0] = 77
	if triggered, _ := wm.CheckWatchpoints(machine); triggered != nil {
		t.Error("disabled watchpoint fired")
	}
}

func TestWatchpoints_Clear(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddWatchpoint(WatchWrite, "r0", 0, true, 0)
	wm.AddWatchpoint(WatchWrite, "r1", 0, true, 1)

	wm.Clear()
	if len(wm.GetAllWatchpoints()) != 0 {
		t.Error("Clear should empty the set")
	}
}

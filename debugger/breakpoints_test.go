package debugger

import "testing"

func TestBreakpoints_AddAndQuery(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x8000, false, "")
	if bp.ID != 1 || bp.Address != 0x8000 || !bp.Enabled {
		t.Errorf("first breakpoint: %+v", bp)
	}

	if !bm.HasBreakpoint(0x8000) {
		t.Error("HasBreakpoint should see the new breakpoint")
	}
	if bm.HasBreakpoint(0x8004) {
		t.Error("HasBreakpoint should miss other addresses")
	}
	if got := bm.GetBreakpoint(0x8000); got != bp {
		t.Error("GetBreakpoint should return the stored breakpoint")
	}
	if got := bm.GetBreakpointByID(1); got != bp {
		t.Error("GetBreakpointByID should find ID 1")
	}
	if bm.Count() != 1 {
		t.Errorf("Count: got %d", bm.Count())
	}
}

func TestBreakpoints_ReAddKeepsID(t *testing.T) {
	bm := NewBreakpointManager()
	first := bm.AddBreakpoint(0x8000, false, "")
	again := bm.AddBreakpoint(0x8000, true, "r0 == 5")

	if again.ID != first.ID {
		t.Errorf("re-add allocated a new ID: %d vs %d", again.ID, first.ID)
	}
	if !again.Temporary || again.Condition != "r0 == 5" {
		t.Errorf("re-add should update fields: %+v", again)
	}
	if bm.Count() != 1 {
		t.Errorf("Count after re-add: got %d", bm.Count())
	}
}

func TestBreakpoints_DeleteByIDAndAddress(t *testing.T) {
	bm := NewBreakpointManager()
	a := bm.AddBreakpoint(0x8000, false, "")
	bm.AddBreakpoint(0x8004, false, "")

	if err := bm.DeleteBreakpoint(a.ID); err != nil {
		t.Fatalf("DeleteBreakpoint: %v", err)
	}
	if bm.HasBreakpoint(0x8000) {
		t.Error("deleted breakpoint still present")
	}
	if err := bm.DeleteBreakpoint(99); err == nil {
		t.Error("deleting unknown ID should error")
	}

	if err := bm.DeleteBreakpointAt(0x8004); err != nil {
		t.Fatalf("DeleteBreakpointAt: %v", err)
	}
	if err := bm.DeleteBreakpointAt(0x8004); err == nil {
		t.Error("deleting empty address should error")
	}
	if bm.Count() != 0 {
		t.Errorf("Count after deletes: got %d", bm.Count())
	}
}

func TestBreakpoints_EnableDisable(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(0x8000, false, "")

	if err := bm.DisableBreakpoint(bp.ID); err != nil {
		t.Fatalf("DisableBreakpoint: %v", err)
	}
	if bm.GetBreakpoint(0x8000).Enabled {
		t.Error("breakpoint should be disabled")
	}

	if err := bm.EnableBreakpoint(bp.ID); err != nil {
		t.Fatalf("EnableBreakpoint: %v", err)
	}
	if !bm.GetBreakpoint(0x8000).Enabled {
		t.Error("breakpoint should be re-enabled")
	}

	if err := bm.EnableBreakpoint(42); err == nil {
		t.Error("enabling unknown ID should error")
	}
}

func TestBreakpoints_ProcessHitCountsAndTemporaries(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x8000, false, "")

	hit := bm.ProcessHit(0x8000)
	if hit == nil || hit.HitCount != 1 {
		t.Fatalf("first hit: %+v", hit)
	}
	hit = bm.ProcessHit(0x8000)
	if hit.HitCount != 2 {
		t.Errorf("second hit count: got %d", hit.HitCount)
	}
	if !bm.HasBreakpoint(0x8000) {
		t.Error("persistent breakpoint should survive hits")
	}

	bm.AddBreakpoint(0x8010, true, "")
	if hit = bm.ProcessHit(0x8010); hit == nil {
		t.Fatal("temporary breakpoint hit should report")
	}
	if bm.HasBreakpoint(0x8010) {
		t.Error("temporary breakpoint should auto-delete on hit")
	}

	if bm.ProcessHit(0xDEAD) != nil {
		t.Error("hit at empty address should report nil")
	}
}

func TestBreakpoints_ClearAndList(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x8000, false, "")
	bm.AddBreakpoint(0x8004, false, "")

	if got := len(bm.GetAllBreakpoints()); got != 2 {
		t.Errorf("GetAllBreakpoints: got %d", got)
	}

	bm.Clear()
	if bm.Count() != 0 {
		t.Error("Clear should empty the set")
	}
}

func TestBreakpoints_IDsRemainUniqueAfterDeletion(t *testing.T) {
	bm := NewBreakpointManager()
	first := bm.AddBreakpoint(0x8000, false, "")
	_ = bm.DeleteBreakpoint(first.ID)
	second := bm.AddBreakpoint(0x8004, false, "")

	if second.ID == first.ID {
		t.Error("IDs should not be recycled")
	}
}

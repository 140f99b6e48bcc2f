package core

import (
	"fmt"
	"io"
	"sort"
)

// RegisterAccessEntry records one observed register write.
type RegisterAccessEntry struct {
	Sequence uint64
	Address  uint32
	Register int
	Old      uint32
	New      uint32
}

// registerStats accumulates per-register write counts.
type registerStats struct {
	writes       uint64
	firstWrite   uint64
	lastWrite    uint64
	lastValue    uint32
	uniqueValues map[uint32]bool
}

// RegisterTrace records every register write Step observes, when Enabled.
// Unlike ExecutionTrace and FlagTrace it defaults to disabled, since
// register-level tracing is the highest-volume and least often wanted of
// the diagnostic hooks.
type RegisterTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries []RegisterAccessEntry
	stats   [RegisterCount]*registerStats
}

// NewRegisterTrace creates a disabled register trace with a generous
// default cap; callers set Enabled true to start collecting.
func NewRegisterTrace(w io.Writer) *RegisterTrace {
	return &RegisterTrace{
		Writer:     w,
		MaxEntries: 100000,
		entries:    make([]RegisterAccessEntry, 0, 1000),
	}
}

func (r *RegisterTrace) record(seq uint64, pc uint32, reg int, old, new uint32) {
	stats := r.stats[reg]
	if stats == nil {
		stats = &registerStats{uniqueValues: make(map[uint32]bool)}
		r.stats[reg] = stats
	}
	stats.writes++
	if stats.firstWrite == 0 {
		stats.firstWrite = seq
	}
	stats.lastWrite = seq
	stats.lastValue = new
	stats.uniqueValues[new] = true

	if r.MaxEntries > 0 && len(r.entries) >= r.MaxEntries {
		return
	}
	r.entries = append(r.entries, RegisterAccessEntry{
		Sequence: seq,
		Address:  pc,
		Register: reg,
		Old:      old,
		New:      new,
	})
}

// Entries returns all recorded register write entries.
func (r *RegisterTrace) Entries() []RegisterAccessEntry {
	return r.entries
}

// HotRegisters returns register indices sorted by write count, descending.
func (r *RegisterTrace) HotRegisters() []int {
	regs := make([]int, 0, RegisterCount)
	for i, s := range r.stats {
		if s != nil {
			regs = append(regs, i)
		}
	}
	sort.Slice(regs, func(i, j int) bool {
		return r.stats[regs[i]].writes > r.stats[regs[j]].writes
	})
	return regs
}

// Flush writes a per-register write summary to Writer.
func (r *RegisterTrace) Flush() error {
	if r.Writer == nil {
		return nil
	}
	for _, reg := range r.HotRegisters() {
		s := r.stats[reg]
		line := fmt.Sprintf("R%-2d: %6d writes, %d unique values, last=0x%08X\n",
			reg, s.writes, len(s.uniqueValues), s.lastValue)
		if _, err := r.Writer.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

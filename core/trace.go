package core

import (
	"fmt"
	"io"
)

// TraceEntry is a single recorded instruction fetch/dispatch.
type TraceEntry struct {
	Sequence  uint64
	Address   uint32
	Halfword  uint16
	Category  Category
	Registers [RegisterCount]uint32
	Flags     CPSR
}

// ExecutionTrace records every instruction Step dispatches, up to
// MaxEntries, and can replay them to a writer.
type ExecutionTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries []TraceEntry
}

// NewExecutionTrace creates an enabled trace with a generous default cap.
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Enabled:    true,
		Writer:     w,
		MaxEntries: 100000,
		entries:    make([]TraceEntry, 0, 1000),
	}
}

func (t *ExecutionTrace) record(seq uint64, pc uint32, hw uint16, cat Category) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}
	t.entries = append(t.entries, TraceEntry{
		Sequence: seq,
		Address:  pc,
		Halfword: hw,
		Category: cat,
	})
}

// Entries returns all recorded trace entries.
func (t *ExecutionTrace) Entries() []TraceEntry {
	return t.entries
}

// Clear discards all recorded entries.
func (t *ExecutionTrace) Clear() {
	t.entries = t.entries[:0]
}

// Flush writes every recorded entry to Writer, one line each.
func (t *ExecutionTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, e := range t.entries {
		line := fmt.Sprintf("[%06d] 0x%04X: %04X %-28s\n", e.Sequence, e.Address, e.Halfword, e.Category)
		if _, err := t.Writer.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

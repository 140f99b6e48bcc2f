package core

import (
	"fmt"
	"io"
	"strings"
)

// FlagChangeEntry records one CPSR transition, and which of N/Z/C/V moved.
type FlagChangeEntry struct {
	Sequence uint64
	Address  uint32
	Old      CPSR
	New      CPSR
	Changed  string
}

// FlagTrace records every CPSR change Step observes.
type FlagTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries  []FlagChangeEntry
	nChanges uint64
	zChanges uint64
	cChanges uint64
	vChanges uint64
}

// NewFlagTrace creates an enabled flag trace with a generous default cap.
func NewFlagTrace(w io.Writer) *FlagTrace {
	return &FlagTrace{
		Enabled:    true,
		Writer:     w,
		MaxEntries: 100000,
		entries:    make([]FlagChangeEntry, 0, 1000),
	}
}

func (f *FlagTrace) record(seq uint64, pc uint32, old, new CPSR) {
	if !f.Enabled {
		return
	}

	changed := flagDiff(old, new)
	if changed == "" {
		return
	}
	if old.N != new.N {
		f.nChanges++
	}
	if old.Z != new.Z {
		f.zChanges++
	}
	if old.C != new.C {
		f.cChanges++
	}
	if old.V != new.V {
		f.vChanges++
	}

	if f.MaxEntries > 0 && len(f.entries) >= f.MaxEntries {
		return
	}
	f.entries = append(f.entries, FlagChangeEntry{
		Sequence: seq,
		Address:  pc,
		Old:      old,
		New:      new,
		Changed:  changed,
	})
}

func flagDiff(old, new CPSR) string {
	var sb strings.Builder
	if old.N != new.N {
		sb.WriteByte('N')
	}
	if old.Z != new.Z {
		sb.WriteByte('Z')
	}
	if old.C != new.C {
		sb.WriteByte('C')
	}
	if old.V != new.V {
		sb.WriteByte('V')
	}
	return sb.String()
}

func formatFlags(c CPSR) string {
	b := [4]byte{'-', '-', '-', '-'}
	if c.N {
		b[0] = 'N'
	}
	if c.Z {
		b[1] = 'Z'
	}
	if c.C {
		b[2] = 'C'
	}
	if c.V {
		b[3] = 'V'
	}
	return string(b[:])
}

// Entries returns all recorded flag change entries.
func (f *FlagTrace) Entries() []FlagChangeEntry {
	return f.entries
}

// Flush writes a summary and every recorded flag change to Writer.
func (f *FlagTrace) Flush() error {
	if f.Writer == nil {
		return nil
	}
	header := fmt.Sprintf("Flag changes: %d (N:%d Z:%d C:%d V:%d)\n",
		len(f.entries), f.nChanges, f.zChanges, f.cChanges, f.vChanges)
	if _, err := f.Writer.Write([]byte(header)); err != nil {
		return err
	}
	for _, e := range f.entries {
		line := fmt.Sprintf("[%06d] 0x%04X: %s -> %s (%s)\n",
			e.Sequence, e.Address, formatFlags(e.Old), formatFlags(e.New), e.Changed)
		if _, err := f.Writer.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

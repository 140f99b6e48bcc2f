package core

import (
	"fmt"
	"io"
	"sort"
)

// Statistics tracks instruction-category frequency for a run, the way a
// profiler would, without the overhead of a full execution trace.
type Statistics struct {
	Enabled bool

	TotalInstructions uint64
	CategoryCounts    [CatLongBranchWithLink + 1]uint64
	BranchCount       uint64
	BranchTakenCount  uint64
}

// NewStatistics creates an enabled statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{Enabled: true}
}

func (s *Statistics) record(cat Category) {
	if !s.Enabled {
		return
	}
	s.TotalInstructions++
	s.CategoryCounts[cat]++
	switch cat {
	case CatConditionalBranch, CatUnconditionalBranch, CatLongBranchWithLink:
		s.BranchCount++
	}
}

// CategoryBreakdown returns categories sorted by execution count,
// descending, omitting categories that never executed.
func (s *Statistics) CategoryBreakdown() []Category {
	cats := make([]Category, 0, len(s.CategoryCounts))
	for i, n := range s.CategoryCounts {
		if n > 0 {
			cats = append(cats, Category(i))
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		return s.CategoryCounts[cats[i]] > s.CategoryCounts[cats[j]]
	})
	return cats
}

// Flush writes an instruction-category breakdown to Writer.
func (s *Statistics) Flush(w io.Writer) error {
	header := fmt.Sprintf("Total instructions: %d\n", s.TotalInstructions)
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}
	for _, cat := range s.CategoryBreakdown() {
		n := s.CategoryCounts[cat]
		pct := float64(n) / float64(s.TotalInstructions) * 100
		line := fmt.Sprintf("  %-28s %8d (%.1f%%)\n", cat, n, pct)
		if _, err := w.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}

package vm

import "github.com/tinylab/thumb16vm/core"

// TraceEntry, ExecutionTrace and PerformanceStatistics alias the
// instruction-level diagnostic hooks core.Machine carries directly
// (Machine.Trace, Machine.Stats), so front ends can keep speaking vm.*
// without importing core themselves.
type TraceEntry = core.TraceEntry
type ExecutionTrace = core.ExecutionTrace
type PerformanceStatistics = core.Statistics

// NewExecutionTrace and NewPerformanceStatistics forward to the core
// constructors.
var NewExecutionTrace = core.NewExecutionTrace
var NewPerformanceStatistics = core.NewStatistics

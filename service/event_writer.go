package service

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventEmittingWriter adapts guest console output to the Wails front end:
// each write lands in the shared buffer and is also pushed to the UI as a
// "vm:output" event. The HTTP API's own fan-out path uses api.EventWriter
// instead; this type exists only for the Wails binding.
type EventEmittingWriter struct {
	buffer *bytes.Buffer
	ctx    context.Context
	mu     sync.Mutex
}

// NewEventEmittingWriter wraps buffer, emitting events on ctx. A nil ctx
// disables event emission (writes still buffer).
func NewEventEmittingWriter(buffer *bytes.Buffer, ctx context.Context) *EventEmittingWriter {
	return &EventEmittingWriter{buffer: buffer, ctx: ctx}
}

// Write buffers p and emits it to the front end.
func (w *EventEmittingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.ctx != nil {
		runtime.EventsEmit(w.ctx, "vm:output", string(p))
	}
	return n, err
}

// GetBufferAndClear returns the accumulated output and resets the buffer.
func (w *EventEmittingWriter) GetBufferAndClear() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

var _ io.Writer = (*EventEmittingWriter)(nil)

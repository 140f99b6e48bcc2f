package api

import (
	"bytes"
	"io"
	"sync"
)

// EventWriter is an io.Writer that both buffers guest console output and
// broadcasts each chunk to the session's WebSocket subscribers, so a
// client can stream live output or poll the accumulated buffer.
type EventWriter struct {
	broadcaster *Broadcaster
	sessionID   string
	stream      string // "stdout" or "stderr"

	mu     sync.Mutex
	buffer bytes.Buffer
}

// NewEventWriter creates a writer for one session's named output stream.
func NewEventWriter(broadcaster *Broadcaster, sessionID, stream string) *EventWriter {
	return &EventWriter{
		broadcaster: broadcaster,
		sessionID:   sessionID,
		stream:      stream,
	}
}

// Write buffers p and broadcasts it as an output event.
func (w *EventWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.broadcaster != nil {
		w.broadcaster.BroadcastOutput(w.sessionID, w.stream, string(p))
	}
	return n, err
}

// GetBufferAndClear returns the accumulated output and resets the buffer.
func (w *EventWriter) GetBufferAndClear() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

// GetBuffer returns the accumulated output without clearing it.
func (w *EventWriter) GetBuffer() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.String()
}

var _ io.Writer = (*EventWriter)(nil)

package api

import "sync"

// EventType classifies broadcast events so clients can subscribe to a
// subset.
type EventType string

const (
	// EventTypeState is a VM state change (PC, registers, flags).
	EventTypeState EventType = "state"
	// EventTypeOutput is console output (stdout, stderr).
	EventTypeOutput EventType = "output"
	// EventTypeExecution is an execution event (breakpoint, halt, error).
	EventTypeExecution EventType = "event"
)

// BroadcastEvent is one event as delivered to WebSocket clients.
type BroadcastEvent struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"sessionId"`
	Data      map[string]interface{} `json:"data"`
}

// Subscription is one client's filtered view of the event stream. An
// empty SessionID matches every session; an empty EventTypes set matches
// every type.
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

// Broadcaster fans events out to any number of WebSocket clients. All
// channel sends are non-blocking: a slow client loses events rather than
// stalling the execution path that produced them.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan BroadcastEvent
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates a broadcaster and starts its fan-out goroutine.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan BroadcastEvent, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if sub.SessionID != "" && sub.SessionID != event.SessionID {
					continue
				}
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// Client too slow; drop the event for them.
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new client with the given session and event-type
// filters and returns its subscription.
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	typeSet := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		typeSet[et] = true
	}

	sub := &Subscription{
		SessionID:  sessionID,
		EventTypes: typeSet,
		Channel:    make(chan BroadcastEvent, 64),
	}
	b.register <- sub
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast queues event for delivery, dropping it if the queue is full.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// BroadcastState sends a state-change event for sessionID.
func (b *Broadcaster) BroadcastState(sessionID string, data map[string]interface{}) {
	b.Broadcast(BroadcastEvent{Type: EventTypeState, SessionID: sessionID, Data: data})
}

// BroadcastOutput sends one chunk of console output.
func (b *Broadcaster) BroadcastOutput(sessionID, stream, content string) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeOutput,
		SessionID: sessionID,
		Data:      map[string]interface{}{"stream": stream, "content": content},
	})
}

// BroadcastExecutionEvent sends a named execution event (breakpoint, halt,
// error) with optional details.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID, eventName string, details map[string]interface{}) {
	data := map[string]interface{}{"event": eventName}
	for k, v := range details {
		data[k] = v
	}
	b.Broadcast(BroadcastEvent{Type: EventTypeExecution, SessionID: sessionID, Data: data})
}

// Close stops the fan-out goroutine and closes every subscription.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriptionCount returns how many clients are subscribed.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

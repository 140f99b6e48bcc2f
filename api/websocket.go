package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// All origins accepted; the server binds for local front ends, not
	// the open internet.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketClient is one connected event-stream client: a websocket
// connection, its broadcaster subscription, and the buffered channel
// feeding the write pump.
type WebSocketClient struct {
	conn         *websocket.Conn
	send         chan BroadcastEvent
	subscription *Subscription
	broadcaster  *Broadcaster
	mu           sync.Mutex
}

// SubscriptionRequest is the JSON message a client sends to pick which
// session and event types it wants. Empty fields mean "all".
type SubscriptionRequest struct {
	Type       string   `json:"type"` // "subscribe"
	SessionID  string   `json:"sessionId"`
	EventTypes []string `json:"events"`
}

// handleWebSocket upgrades the connection and starts the client's read
// and write pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &WebSocketClient{
		conn:        conn,
		send:        make(chan BroadcastEvent, 256),
		broadcaster: s.broadcaster,
	}
	go client.writePump()
	go client.readPump()
}

// readPump consumes client messages (subscription requests and pongs)
// until the connection drops, then tears the client down.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.cleanup()
		if err := c.conn.Close(); err != nil {
			log.Printf("WebSocket close error: %v", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("SetReadDeadline error: %v", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var req SubscriptionRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Printf("Failed to parse subscription request: %v", err)
			continue
		}
		if req.Type == "subscribe" {
			c.handleSubscription(req)
		}
	}
}

// writePump drains the send channel to the socket and keeps the
// connection alive with periodic pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			log.Printf("WebSocket close error: %v", err)
		}
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("SetWriteDeadline error: %v", err)
				return
			}
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Printf("WriteMessage error: %v", err)
				}
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				log.Printf("WriteJSON error: %v", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("SetWriteDeadline error: %v", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleSubscription swaps the client onto a new broadcaster subscription,
// dropping any previous one.
func (c *WebSocketClient) handleSubscription(req SubscriptionRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscription != nil {
		c.broadcaster.Unsubscribe(c.subscription)
	}

	eventTypes := make([]EventType, 0, len(req.EventTypes))
	for _, et := range req.EventTypes {
		eventTypes = append(eventTypes, EventType(et))
	}
	c.subscription = c.broadcaster.Subscribe(req.SessionID, eventTypes)

	go c.forwardEvents()
}

// forwardEvents copies events from the subscription into the send channel,
// dropping events the write pump cannot keep up with.
func (c *WebSocketClient) forwardEvents() {
	if c.subscription == nil {
		return
	}
	for event := range c.subscription.Channel {
		select {
		case c.send <- event:
		default:
		}
	}
}

// cleanup unsubscribes the client from the broadcaster.
func (c *WebSocketClient) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscription != nil {
		c.broadcaster.Unsubscribe(c.subscription)
		c.subscription = nil
	}
}

// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tripdash/internal/domain/chart"
	"tripdash/internal/domain/trip"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message types exchanged on the callback channel
const (
	MessageWelcome = "welcome"
	MessageFilters = "filters"
	MessageFigures = "figures"
	MessageError   = "error"
)

type welcomeMessage struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Time      time.Time `json:"time"`
}

type figuresMessage struct {
	Type    string                     `json:"type"`
	Figures map[chart.ID]*chart.Figure `json:"figures"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Filters json.RawMessage `json:"filters"`
}

// WebSocketClient is one dashboard page connected to the callback channel
type WebSocketClient struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	sessionID string
	charts    chart.Service
	config    WebSocketConfig

	// last holds the filters of the previous update, nil before the first
	last *trip.Filters

	closeOnce sync.Once
}

// FiguresWebSocketHandler handles WebSocket connections that push figure
// updates when the dashboard controls change
func FiguresWebSocketHandler(charts chart.Service, config WebSocketConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		client := &WebSocketClient{
			conn:      conn,
			send:      make(chan []byte, 16),
			done:      make(chan struct{}),
			sessionID: uuid.New().String(),
			charts:    charts,
			config:    config,
		}

		// Queue the welcome before the read pump can produce replies
		client.enqueue(welcomeMessage{
			Type:      MessageWelcome,
			SessionID: client.sessionID,
			Time:      time.Now(),
		})

		go client.writePump()
		go client.readPump()

		log.Printf("New WebSocket session %s from %s", client.sessionID, r.RemoteAddr)
	}
}

// readPump handles filter messages until the peer goes away
func (c *WebSocketClient) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		close(c.send)
		c.closeConnection()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		if !c.processIncomingMessage(ctx, message) {
			return
		}
	}
}

// writePump writes queued messages and keeps the connection alive with pings
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processIncomingMessage answers one client message. It returns false once
// the writer has gone away.
func (c *WebSocketClient) processIncomingMessage(ctx context.Context, message []byte) bool {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return c.enqueue(errorMessage{Type: MessageError, Error: "Malformed message"})
	}

	switch msg.Type {
	case MessageFilters:
		return c.handleFilters(ctx, msg.Filters)
	default:
		log.Printf("Unknown message type %q from session %s", msg.Type, c.sessionID)
		return c.enqueue(errorMessage{Type: MessageError, Error: "Unknown message type"})
	}
}

// handleFilters rebuilds the figures whose inputs changed since the previous
// update. Omitted fields keep their previous values.
func (c *WebSocketClient) handleFilters(ctx context.Context, raw json.RawMessage) bool {
	next := trip.DefaultFilters()
	if c.last != nil {
		next = *c.last
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &next); err != nil {
			return c.enqueue(errorMessage{Type: MessageError, Error: "Invalid filters"})
		}
	}
	next.Weekday, _ = trip.ParseWeekday(string(next.Weekday))
	next.Base, _ = trip.ParseBase(string(next.Base))

	figures := map[chart.ID]*chart.Figure{}
	if ids := chart.Affected(c.last, next); len(ids) > 0 {
		var err error
		figures, err = c.charts.Figures(ctx, next, ids...)
		if err != nil {
			log.Printf("Failed to build figures for session %s: %v", c.sessionID, err)
			return c.enqueue(errorMessage{Type: MessageError, Error: "Failed to build figures"})
		}
	}

	c.last = &next
	return c.enqueue(figuresMessage{Type: MessageFigures, Figures: figures})
}

// enqueue hands a message to the write pump
func (c *WebSocketClient) enqueue(v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal WebSocket message: %v", err)
		return true
	}

	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	}
}

// closeConnection closes the WebSocket connection once
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		log.Printf("WebSocket session %s closed", c.sessionID)
	})
}

package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cristianortiz/liveAuction/internal/shared/logger"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Hub keeps the registry of connected sessions and fans accepted-bid updates
// out to all of them. Every accepted bid goes to every observer; there is no
// per-item subscription. The single Run goroutine serializes registration,
// unregistration and broadcast, and the revision gate guarantees per-item
// delivery order matches store commit order.
type Hub struct {
	// All connected sessions.
	clients map[*Client]bool
	// Outbound updates to fan out.
	broadcast chan *Message
	// Register requests from new connections.
	register chan *Client
	// Unregister requests from closing connections.
	unregister chan *Client
	// Per-item delivery order gate.
	gate *revisionGate
	// InboundMessages carries raw client frames to the gateway handler.
	InboundMessages chan *ClientMessage
}

// Client is one websocket session. The Send queue may be written from any
// goroutine through TrySend; only the hub loop closes it, and the closed flag
// keeps late writers (a rejection racing a disconnect) from hitting a closed
// channel.
type Client struct {
	Hub *Hub
	// The websocket connection.
	Conn *websocket.Conn
	// Buffered channel of outbound messages. Write through TrySend.
	Send chan []byte
	// Unique identifier for the session.
	ID string

	mu     sync.Mutex
	closed bool
}

// NewClient wraps a connection in a session with a buffered outbound queue.
func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 32),
		ID:   id,
	}
}

// TrySend queues a frame for the session. Returns false without blocking when
// the session is gone or its queue is full; safe to call from any goroutine at
// any point of the session lifecycle.
func (c *Client) TrySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend marks the session gone and closes its queue. Hub loop only.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Client) remoteAddr() string {
	if c.Conn == nil {
		return "unknown"
	}
	return c.Conn.RemoteAddr().String()
}

// Message is one outbound broadcast frame. ItemID/Revision drive the ordering
// gate; Revision zero skips it.
type Message struct {
	ItemID   string
	Revision uint64
	Data     []byte
}

// ClientMessage wraps an inbound frame with the session it came from, so the
// gateway can answer rejections to that session alone.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:       make(chan *Message, 64),
		register:        make(chan *Client),
		unregister:      make(chan *Client, 16),
		clients:         make(map[*Client]bool),
		gate:            newRevisionGate(),
		InboundMessages: make(chan *ClientMessage, 64),
	}
}

// SetBaseline records an item's seeded revision so the ordering gate can
// sequence the very first racing updates. Call before Run starts.
func (h *Hub) SetBaseline(itemID string, revision uint64) {
	h.gate.setBaseline(itemID, revision)
}

// Run starts the hub loop. Must run in its own goroutine for the process
// lifetime; everything the hub owns is touched only from here.
func (h *Hub) Run(ctx context.Context) {
	log.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("WebSocket hub shutting down")
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("remote_addr", client.remoteAddr()),
				zap.Int("total_clients", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				log.Info("Client unregistered",
					zap.String("clientID", client.ID),
					zap.Int("total_clients", len(h.clients)),
				)
			}

		case message := <-h.broadcast:
			frames := h.gate.sequence(message.ItemID, message.Revision, message.Data)
			if len(frames) == 0 {
				log.Debug("Update held or dropped by ordering gate",
					zap.String("itemID", message.ItemID),
					zap.Uint64("revision", message.Revision),
				)
				continue
			}
			for _, data := range frames {
				for client := range h.clients {
					if !client.TrySend(data) {
						// Client not draining its queue, treat as gone. No
						// retry or queuing for disconnected observers.
						client.closeSend()
						delete(h.clients, client)
						log.Warn("Client send buffer full, unregistering",
							zap.String("clientID", client.ID),
						)
					}
				}
			}
		}
	}
}

// RegisterClient hands a new session to the hub, blocking until the loop
// takes it; once this returns, the session is part of every later fan-out.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient queues a session for removal.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		// Hub already stopping; the session is torn down either way.
	}
}

// Broadcast hands one committed update to the hub for delivery to every
// connected session. Blocks until the hub loop takes it, so a burst of
// accepted bids is never dropped before fan-out.
func (h *Hub) Broadcast(itemID string, revision uint64, data []byte) {
	h.broadcast <- &Message{ItemID: itemID, Revision: revision, Data: data}
}

// ReadPump reads frames from the peer and hands them to the gateway through
// InboundMessages. One goroutine per connection; returns on disconnect.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Info("ReadPump stopped", zap.String("clientID", c.ID))
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Inbound channel full, dropping message",
				zap.String("clientID", c.ID),
			)
		}
	}
}

// WritePump writes queued frames to the peer and keeps the connection alive
// with pings. One goroutine per connection; the single writer to Conn.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Info("WritePump stopped", zap.String("clientID", c.ID))
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("WebSocket write error",
					zap.String("clientID", c.ID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

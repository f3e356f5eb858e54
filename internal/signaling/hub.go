package signaling

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event names understood by the relay. Anything else is bounced back to
// the sender as an error envelope.
const (
	EventRegister     = "register"
	EventRegistered   = "registered"
	EventCallUser     = "call-user"
	EventAnswerCall   = "answer-call"
	EventICECandidate = "ice-candidate"
	EventEndCall      = "end-call"
	EventBroadcast    = "broadcast"
	EventPeerLeft     = "user-disconnected"
	EventError        = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // file broadcasts ride the same channel
)

// Envelope is the wire frame relayed between peers. Payload is opaque to
// the hub: SDP offers, ICE candidates, chat messages and file chunks all
// pass through untouched.
type Envelope struct {
	Event   string          `json:"event"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub is the in-memory registry of connected clients. No persistence, no
// retry, no delivery guarantee: a frame to an unknown peer produces an
// error envelope for the sender and nothing else.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client under its id, displacing any stale connection
// that still holds the same id.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	old, displaced := h.clients[c.id]
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	if displaced && old != c {
		// The displaced client's pumps may still be running and other
		// goroutines may hold a reference to it, so its send channel is
		// retired through the closed flag rather than closed under it.
		old.closeSend()
	}

	h.logger.Info("signaling client registered", "client_id", c.id, "connected", total)
}

// Unregister drops a client and notifies the remaining peers.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.clients[c.id]
	if ok && current == c {
		delete(h.clients, c.id)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok || current != c {
		return
	}

	h.logger.Info("signaling client disconnected", "client_id", c.id, "connected", total)
	h.broadcastFrom(c.id, Envelope{Event: EventPeerLeft, From: c.id})
}

// Dispatch routes one inbound envelope.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	env.From = c.id

	switch env.Event {
	case EventCallUser, EventAnswerCall, EventICECandidate, EventEndCall:
		if env.To == "" {
			c.sendEnvelope(Envelope{Event: EventError, Payload: errPayload("missing target")})
			return
		}
		if !h.relayTo(env.To, env) {
			c.sendEnvelope(Envelope{Event: EventError, Payload: errPayload("unknown peer: " + env.To)})
		}
	case EventBroadcast:
		h.broadcastFrom(c.id, env)
	default:
		c.sendEnvelope(Envelope{Event: EventError, Payload: errPayload("unknown event: " + env.Event)})
	}
}

// ConnectedIDs lists the registered client ids, for the peers listing.
func (h *Hub) ConnectedIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) relayTo(id string, env Envelope) bool {
	h.mu.RLock()
	target, ok := h.clients[id]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	target.sendEnvelope(env)
	return true
}

func (h *Hub) broadcastFrom(senderID string, env Envelope) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		if id != senderID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.sendEnvelope(env)
	}
}

func errPayload(msg string) json.RawMessage {
	raw, _ := json.Marshal(map[string]string{"message": msg})
	return raw
}

// Client is one websocket connection known to the hub.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan Envelope
}

func NewClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan Envelope, 32),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) sendEnvelope(env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		// Displaced connection; frames for this id go to its successor.
		return
	}

	select {
	case c.send <- env:
	default:
		// Slow consumer; the relay gives no delivery guarantee.
		c.hub.logger.Warn("dropping frame for slow client", "client_id", c.id, "event", env.Event)
	}
}

// closeSend retires the send channel so WritePump exits. The flag keeps
// late sendEnvelope calls from hitting a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump reads envelopes from the connection until it closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("signaling read error", "client_id", c.id, "error", err)
			}
			return
		}
		c.hub.Dispatch(c, env)
	}
}

// WritePump flushes outbound envelopes and keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

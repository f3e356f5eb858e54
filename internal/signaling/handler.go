package signaling

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kdiomande/courrier-registry/internal/transport"
)

// Handler upgrades HTTP requests into hub connections.
type Handler struct {
	*transport.BaseHandler
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients come from a different origin; the HTTP API
			// layer already decides who reaches this endpoint.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect registers the caller under the client_id query param, or a
// generated id when none is given, then starts the pumps.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(clientID, h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	client.sendEnvelope(Envelope{Event: EventRegistered, To: clientID})
	go client.ReadPump()
}

// ListPeers reports the currently connected client ids.
func (h *Handler) ListPeers(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"peers": h.hub.ConnectedIDs(),
	})
}

package wardfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vetward/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Snapshotter supplies the occupancy snapshot sent to a client on connect.
type Snapshotter interface {
	Snapshot(ctx context.Context) (any, error)
}

type SnapshotFunc func(ctx context.Context) (any, error)

func (f SnapshotFunc) Snapshot(ctx context.Context) (any, error) { return f(ctx) }

type WSHandler struct {
	hub      *Hub
	snapshot Snapshotter
	upgrader websocket.Upgrader
}

// NewWSHandler accepts connections from the given origins; "*" allows any.
func NewWSHandler(hub *Hub, snapshot Snapshotter, origins []string) *WSHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:      hub,
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/ward", h.HandleWebSocket)
}

// HandleWebSocket handles GET /ws/ward. The server only pushes; client
// messages other than {"type":"ping"} are ignored.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := h.hub.register(uuid.NewString())
	h.hub.log.Info().Str("client", cl.id).Msg("ward feed client connected")

	if h.snapshot != nil {
		if data, err := h.snapshot.Snapshot(c.Request.Context()); err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(domain.WardEvent{Type: domain.EventOccupancy, At: time.Now().UTC(), Data: data})
		}
	}

	go h.writeLoop(conn, cl)
	h.readLoop(conn, cl)
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case evt, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, cl *client) {
	defer func() {
		h.hub.unregister(cl)
		h.hub.log.Info().Str("client", cl.id).Msg("ward feed client disconnected")
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.hub.log.Debug().Err(err).Str("client", cl.id).Msg("ward feed read error")
			}
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(raw, &msg) == nil && msg.Type == "ping" {
			h.hub.sendTo(cl, domain.WardEvent{Type: "pong", At: time.Now().UTC()})
		}
	}
}

package wardfeed

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetward/internal/domain"
)

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap := SnapshotFunc(func(context.Context) (any, error) {
		return map[string]int{"occupied": 2}, nil
	})
	router := gin.New()
	NewWSHandler(hub, snap, []string{"*"}).RegisterRoutes(router.Group(""))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/ward"
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.WardEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt domain.WardEvent
	require.NoError(t, conn.ReadJSON(&evt))
	return evt
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.GetOnlineCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestWardFeed_SnapshotThenEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	url := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readEvent(t, conn)
	assert.Equal(t, domain.EventOccupancy, first.Type)

	waitForClients(t, hub, 1)
	hub.Publish(domain.WardEvent{Type: domain.EventAdmissionOpened, AdmissionID: "a-1", RoomNumber: "ICU-01", At: time.Now()})

	evt := readEvent(t, conn)
	assert.Equal(t, domain.EventAdmissionOpened, evt.Type)
	assert.Equal(t, "a-1", evt.AdmissionID)
	assert.Equal(t, "ICU-01", evt.RoomNumber)
}

func TestWardFeed_PingIsAnsweredToSenderOnly(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	url := startServer(t, hub)

	a, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer b.Close()
	readEvent(t, a)
	readEvent(t, b)
	waitForClients(t, hub, 2)

	require.NoError(t, a.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", readEvent(t, a).Type)

	hub.Publish(domain.WardEvent{Type: domain.EventTreatmentAdded})
	assert.Equal(t, domain.EventTreatmentAdded, readEvent(t, b).Type)
}

func TestHub_DisconnectOnClose(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	url := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn)
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.GetOnlineCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	// publishing after close is a no-op
	hub.Publish(domain.WardEvent{Type: domain.EventOccupancy})
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := hub.register("slow")

	for i := 0; i < sendBuffer+1; i++ {
		hub.Publish(domain.WardEvent{Type: domain.EventOccupancy})
	}

	assert.Equal(t, 0, hub.GetOnlineCount())
	n := 0
	for range c.send {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

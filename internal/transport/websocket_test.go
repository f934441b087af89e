package transport

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebSocketZombieDetection(t *testing.T) {
	mgr := eventbus.NewManager(slog.Default())
	h := &WebSocketHandler{
		Manager:           mgr,
		HeartbeatInterval: 20 * time.Millisecond,
		PongTimeout:       20 * time.Millisecond,
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialWS(t, srv, "/?client_id=zombie")
	defer conn.Close()

	require.Eventually(t, func() bool {
		return mgr.Stats().ActiveWS == 1
	}, time.Second, 5*time.Millisecond)

	// Never reply to ping: after heartbeat+pong-timeout, server evicts us.
	require.Eventually(t, func() bool {
		return mgr.Stats().ActiveWS == 0
	}, time.Second, 5*time.Millisecond)
}

func TestWebSocketRespondingToPingStaysConnected(t *testing.T) {
	mgr := eventbus.NewManager(slog.Default())
	h := &WebSocketHandler{
		Manager:           mgr,
		HeartbeatInterval: 20 * time.Millisecond,
		PongTimeout:       200 * time.Millisecond,
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialWS(t, srv, "/?client_id=alive")
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame controlFrame
			if json.Unmarshal(data, &frame) == nil && frame.Type == "ping" {
				_ = conn.WriteJSON(controlFrame{Type: "pong"})
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ping/pong exchange")
	}

	assert.Equal(t, 1, mgr.Stats().ActiveWS)
}

func TestWebSocketPushEventDeliversWithProtocolStamp(t *testing.T) {
	mgr := eventbus.NewManager(slog.Default())
	h := &WebSocketHandler{
		Manager:           mgr,
		HeartbeatInterval: time.Second,
		PongTimeout:       time.Second,
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialWS(t, srv, "/?client_id=c1")
	defer conn.Close()

	require.Eventually(t, func() bool {
		return mgr.Stats().ActiveWS == 1
	}, time.Second, 5*time.Millisecond)

	mgr.PushEvent(eventbus.Event{EventID: "e1", EventType: eventbus.EventMetric})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var got eventbus.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "e1", got.EventID)
	assert.Equal(t, eventbus.ProtocolWebSocket, got.Protocol)
}

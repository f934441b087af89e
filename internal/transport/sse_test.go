package transport

import (
	"bufio"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

func TestSSEStreamEmitsHeartbeatThenRealEvent(t *testing.T) {
	mgr := eventbus.NewManager(slog.Default())
	h := &SSEHandler{Manager: mgr, HeartbeatInterval: 20 * time.Millisecond}

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/?client_id=c1")
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	var block strings.Builder
	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		block.WriteString(line)
	}
	assert.Contains(t, block.String(), "event: heartbeat")

	require.Eventually(t, func() bool {
		return mgr.Stats().ActiveSSE == 1
	}, time.Second, 5*time.Millisecond)

	mgr.PushEvent(eventbus.Event{EventID: "e1", EventType: eventbus.EventMetric})

	var next strings.Builder
	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		next.WriteString(line)
	}
	assert.Contains(t, next.String(), "id: e1")
}

func TestSSESlowConsumerDropsExcessEvents(t *testing.T) {
	mgr := eventbus.NewManager(slog.Default())
	queue := mgr.SubscribeSSE("slow")
	defer mgr.UnsubscribeSSE("slow")

	for i := 0; i < 200; i++ {
		mgr.PushEvent(eventbus.Event{EventID: "e", EventType: eventbus.EventMetric})
	}

	assert.LessOrEqual(t, len(queue), 100)
}

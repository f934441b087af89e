// Package dispatch implements the Shared Dispatch Loop used by both the
// SSE and WebSocket writer goroutines: read from a source channel with a
// heartbeat timeout, send what arrives, and invoke a transport-specific
// heartbeat callback whenever the source stays idle too long.
package dispatch

import (
	"context"
	"time"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// Send writes a single event to the transport-specific sink.
type Send func(eventbus.Event) error

// Heartbeat is invoked whenever the source stays idle for a full interval.
// SSE and WebSocket represent a heartbeat differently on the wire (a
// heartbeat Event vs. a bare {"type":"ping"} control frame), so the loop
// delegates the framing to the caller instead of hardcoding one shape.
type Heartbeat func() error

// Run repeatedly waits for the next event on source with a timeout equal to
// heartbeatInterval. On event: send it. On timeout: invoke heartbeat. On
// source closing: return nil (clean exit). On ctx cancellation: return nil
// without surfacing an error, mirroring the "exit without error"
// cancellation contract. A non-nil error from send or heartbeat ends the
// loop and is returned to the caller, which is expected to tear down the
// connection.
func Run(ctx context.Context, source <-chan eventbus.Event, send Send, heartbeatInterval time.Duration, heartbeat Heartbeat) error {
	timer := time.NewTimer(heartbeatInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-source:
			if !ok {
				return nil
			}
			if err := send(e); err != nil {
				return err
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(heartbeatInterval)

		case <-timer.C:
			if err := heartbeat(); err != nil {
				return err
			}
			timer.Reset(heartbeatInterval)
		}
	}
}

// EventHeartbeat returns a Heartbeat that synthesizes a literal heartbeat
// Event stamped with protocol and sends it via send — the SSE shape.
func EventHeartbeat(send Send, protocol eventbus.Protocol) Heartbeat {
	return func() error {
		hb := eventbus.Event{
			EventID:     "hb-" + time.Now().UTC().Format(time.RFC3339Nano),
			EventType:   eventbus.EventHeartbeat,
			Payload:     map[string]any{"ping": "pong"},
			GeneratedAt: time.Now().UTC(),
			Source:      "system",
			Protocol:    protocol,
		}
		return send(hb)
	}
}

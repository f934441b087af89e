// Package producer defines the interface background event generators
// implement, plus one small illustrative implementation used to exercise
// it end to end. Producer content itself is illustrative — any component
// that yields events into the core on a schedule qualifies.
package producer

import (
	"context"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
)

// Producer yields events on events until ctx is cancelled, then returns.
// Run does not close the channel; Start closes it after Run returns.
type Producer interface {
	Run(ctx context.Context, events chan<- eventbus.Event)
}

// Start launches p in its own goroutine and returns a channel producing its
// events; the channel closes once ctx is cancelled and p.Run returns.
func Start(ctx context.Context, p Producer) <-chan eventbus.Event {
	out := make(chan eventbus.Event)
	go func() {
		defer close(out)
		p.Run(ctx, out)
	}()
	return out
}

// Package reconnect implements the client-side reconnect helper: repeated
// connection attempts with exponential backoff and jitter, resetting on
// success. The CLI driver that picks a transport and wires this up is out
// of scope; this package only specifies the retry contract.
package reconnect

import (
	"context"
	"math/rand"
	"time"
)

// Config tunes the backoff schedule.
type Config struct {
	Base time.Duration // default 1s
	Max  time.Duration // default 32s
}

func (c Config) withDefaults() Config {
	if c.Base <= 0 {
		c.Base = time.Second
	}
	if c.Max <= 0 {
		c.Max = 32 * time.Second
	}
	return c
}

// Connect attempts a single connection and blocks until it ends (cleanly
// or with an error); a nil error does not imply indefinite connection —
// Run treats any return as "disconnected, try again".
type Connect func(ctx context.Context) error

// Run repeatedly invokes connect until ctx is done, backing off between
// attempts: delay = min(base * 2^attempt, max) with +/-10% jitter. A
// successful connect (no error) resets the attempt counter.
func Run(ctx context.Context, connect Connect, cfg Config) {
	cfg = cfg.withDefaults()
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		err := connect(ctx)
		if err == nil {
			attempt = 0
			continue
		}
		if ctx.Err() != nil {
			return
		}

		delay := backoff(cfg.Base, cfg.Max, attempt)
		attempt++

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	if attempt > 30 { // avoid overflow; base*2^31 already dwarfs any sane max
		attempt = 30
	}
	d := base * time.Duration(1<<uint(attempt))
	if d > max || d <= 0 {
		d = max
	}
	jittered := float64(d) * (0.9 + 0.2*rand.Float64())
	return time.Duration(jittered)
}

package reconnect

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunRetriesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempts atomic.Int32

	connect := func(ctx context.Context) error {
		n := attempts.Add(1)
		if n >= 3 {
			cancel()
		}
		return errors.New("refused")
	}

	done := make(chan struct{})
	go func() {
		Run(ctx, connect, Config{Base: time.Millisecond, Max: 5 * time.Millisecond})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.GreaterOrEqual(t, attempts.Load(), int32(3))
}

func TestBackoffNeverExceedsMax(t *testing.T) {
	max := 32 * time.Second
	for attempt := 0; attempt < 20; attempt++ {
		d := backoff(time.Second, max, attempt)
		assert.LessOrEqual(t, d, time.Duration(float64(max)*1.1))
	}
}

func TestRunReturnsWhenCancelledAfterSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	connect := func(ctx context.Context) error {
		n := calls.Add(1)
		if n == 1 {
			return errors.New("refused")
		}
		if n == 2 {
			cancel()
			return nil
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		Run(ctx, connect, Config{Base: time.Millisecond, Max: time.Millisecond})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

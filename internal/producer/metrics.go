package producer

import (
	"context"
	"math/rand"
	"time"

	"github.com/alfredjeanlab/realtime-event-server/internal/eventbus"
	"github.com/alfredjeanlab/realtime-event-server/internal/idgen"
)

// MetricsProducer emits a system_metrics-style event roughly once a
// second, the same cadence and payload shape as the illustrative CPU/memory
// generator this system is modeled on. It exists to give the Lifecycle
// Driver something concrete to start and stop; its content is not itself
// specified.
type MetricsProducer struct {
	Source string // defaults to "metrics"
}

func (p *MetricsProducer) Run(ctx context.Context, events chan<- eventbus.Event) {
	source := p.Source
	if source == "" {
		source = "metrics"
	}

	cpu, mem := 40.0, 60.0
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cpu = clamp(cpu+jitter(5.0), 0, 100)
			mem = clamp(mem+jitter(2.0), 0, 100)

			id, err := idgen.Generate()
			if err != nil {
				continue
			}

			e := eventbus.Event{
				EventID:   id,
				EventType: eventbus.EventMetric,
				Payload: map[string]any{
					"cpu_percent":    round1(cpu),
					"memory_percent": round1(mem),
					"disk_io":        rand.Intn(1000),
				},
				GeneratedAt: time.Now().UTC(),
				Source:      source,
			}

			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}
}

func jitter(span float64) float64 {
	return (rand.Float64()*2 - 1) * span
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

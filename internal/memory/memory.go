package memory

import (
	"context"
	"runtime"
	"time"

	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
)

// Guard holds back new work while the Go heap is close to its limit.
type Guard struct {
	limit int64
	// Work waits once usage reaches critical and resumes below resume.
	critical float64
	resume   float64
	interval time.Duration
	heap     func() uint64
}

// NewGuard creates a guard for a heap limit in bytes. A zero limit yields a
// guard that never waits.
func NewGuard(limit int64) *Guard {
	return &Guard{
		limit:    limit,
		critical: 0.85,
		resume:   0.70,
		interval: 500 * time.Millisecond,
		heap:     heapAlloc,
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// Usage is the current heap as a fraction of the limit, or 0 without one.
func (g *Guard) Usage() float64 {
	if g == nil || g.limit <= 0 {
		return 0
	}
	return float64(g.heap()) / float64(g.limit)
}

// Wait returns immediately unless usage is critical. Otherwise it forces a
// collection and polls until usage drops below the resume mark or ctx ends.
func (g *Guard) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	usage := g.Usage()
	metrics.IngestMemoryUsageRatio.Set(usage)
	if usage < g.critical {
		return nil
	}

	logging.Warn("Memory critical (%.1f%% of limit), pausing ingestion", usage*100)
	metrics.IngestMemoryPaused.Set(1)
	defer metrics.IngestMemoryPaused.Set(0)
	runtime.GC()

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			usage = g.Usage()
			metrics.IngestMemoryUsageRatio.Set(usage)
			if usage < g.resume {
				logging.Info("Memory recovered (%.1f%% of limit), resuming ingestion", usage*100)
				return nil
			}
		}
	}
}

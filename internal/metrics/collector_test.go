package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeStats struct {
	stats Stats
	err   error
	calls int
}

func (f *fakeStats) GetStats(context.Context) (Stats, error) {
	f.calls++
	return f.stats, f.err
}

func TestCollectorCollect(t *testing.T) {
	provider := &fakeStats{stats: Stats{
		ItemsByType: map[string]int{"main": 12, "students": 3},
		Tags:        4,
	}}

	c := NewCollector(provider, time.Minute)
	c.collect()

	if provider.calls != 1 {
		t.Fatalf("GetStats called %d times, want 1", provider.calls)
	}
	if got := testutil.ToFloat64(GalleryItemsTotal.WithLabelValues("main")); got != 12 {
		t.Errorf("gallery_items_total{type=main} = %v, want 12", got)
	}
	if got := testutil.ToFloat64(GalleryItemsTotal.WithLabelValues("students")); got != 3 {
		t.Errorf("gallery_items_total{type=students} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(GalleryTagsTotal); got != 4 {
		t.Errorf("gallery_tags_total = %v, want 4", got)
	}
}

func TestCollectorCollectError(t *testing.T) {
	provider := &fakeStats{err: errors.New("db closed")}
	c := NewCollector(provider, time.Minute)

	// Must not panic on provider errors.
	c.collect()

	if provider.calls != 1 {
		t.Errorf("GetStats called %d times, want 1", provider.calls)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Minute)
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &fakeStats{stats: Stats{ItemsByType: map[string]int{}}}
	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()
	time.Sleep(50 * time.Millisecond)
	c.Stop()
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics()

	if got := testutil.ToFloat64(IngestFilesTotal.WithLabelValues("image", "created")); got < 0 {
		t.Errorf("unexpected counter value %v", got)
	}
}

package otel

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordAndSnapshot(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Record(Event{Kind: KindBatchRender, Count: i})
	}

	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Count != i {
			t.Errorf("snap[%d].Count=%d, want %d", i, e.Count, i)
		}
		if e.Time.IsZero() || e.Level != LevelInfo {
			t.Errorf("snap[%d] not stamped: %+v", i, e)
		}
	}
}

func TestWrapAround(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 8; i++ {
		r.Record(Event{Kind: KindFetchStart, Count: i})
	}

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	// Events 0-3 were evicted.
	for i, e := range snap {
		if want := i + 4; e.Count != want {
			t.Errorf("snap[%d].Count=%d, want %d", i, e.Count, want)
		}
	}
}

func TestLast(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		r.Record(Event{Kind: KindFetchStart, Count: i})
	}

	last2 := r.Last(2)
	if len(last2) != 2 || last2[0].Count != 4 || last2[1].Count != 5 {
		t.Errorf("Last(2) = %+v, want counts [4 5]", last2)
	}
	if got := r.Last(100); len(got) != 4 {
		t.Errorf("Last(100) returned %d events, want 4", len(got))
	}
	if got := r.Last(0); got != nil {
		t.Errorf("Last(0) = %v, want nil", got)
	}
}

func TestStats(t *testing.T) {
	r := NewRingBuffer(16)
	r.Record(Event{Kind: KindFetchStart})
	r.Record(Event{Kind: KindFetchComplete})
	r.Record(Event{Kind: KindBatchRender})
	r.Record(Event{Kind: KindBatchRender})
	r.Record(Event{Kind: KindBatchStale})

	stats := r.Stats()
	if stats[KindBatchRender] != 2 || stats[KindBatchStale] != 1 || stats[KindFetchComplete] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestNilRingBuffer(t *testing.T) {
	var r *RingBuffer
	r.Record(Event{Kind: KindRoute}) // must not panic
	if r.Len() != 0 || r.Cap() != 0 || r.Snapshot() != nil || len(r.Stats()) != 0 {
		t.Error("nil ring buffer should be empty")
	}
}

func TestDefaultRingSize(t *testing.T) {
	if got := NewRingBuffer(0).Cap(); got != DefaultRingSize {
		t.Errorf("Cap() = %d, want %d", got, DefaultRingSize)
	}
}

func TestWriteJSONL(t *testing.T) {
	r := NewRingBuffer(4)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.Record(Event{Time: at, Kind: KindFetchComplete, Generation: 2, Count: 40, Dur: 1500 * time.Millisecond})
	r.Record(Event{Time: at, Kind: KindFetchError, Level: LevelWarn, Err: "network error: HTTP 503"})

	var buf bytes.Buffer
	if err := r.WriteJSONL(&buf); err != nil {
		t.Fatalf("WriteJSONL failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if first["kind"] != "fetch.complete" || first["dur_ms"] != 1500.0 || first["gen"] != 2.0 {
		t.Errorf("unexpected first line: %v", first)
	}
	if !strings.Contains(lines[1], `"err":"network error: HTTP 503"`) {
		t.Errorf("unexpected second line: %s", lines[1])
	}
}

func TestConcurrentRecordSnapshot(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Record(Event{Kind: KindBatchRender})
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Snapshot()
				_ = r.Last(10)
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()

	if r.Len() != 64 {
		t.Errorf("Len() = %d, want 64", r.Len())
	}
}

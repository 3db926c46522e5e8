package render

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/abelbrown/ramah/internal/feed"
)

var fetchTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// makeStore returns a store holding n stories, one minute apart, newest first.
func makeStore(n int) *feed.Store {
	stories := make([]feed.Story, n)
	for i := range stories {
		stories[i] = feed.Story{
			Headline:  fmt.Sprintf("story %d", i),
			Source:    "src",
			Link:      fmt.Sprintf("https://example.com/%d", i),
			Published: fetchTime.Add(-time.Duration(i) * time.Minute),
		}
	}
	s := feed.NewStore()
	s.Replace(stories, nil, fetchTime)
	return s
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0.75, TierHigh},
		{0.7, TierHigh},
		{0.5, TierMedium},
		{0.4, TierMedium},
		{0.25, TierLow},
		{0.2, TierLow},
		{0.1, TierNone},
		{0, TierNone},
		{-1, TierNone},
		{math.NaN(), TierNone},
	}

	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := fetchTime

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"45 seconds", now.Add(-45 * time.Second), "Just now"},
		{"90 seconds", now.Add(-90 * time.Second), "1 minute ago"},
		{"5 minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"3700 seconds", now.Add(-3700 * time.Second), "1 hour ago"},
		{"23 hours", now.Add(-23 * time.Hour), "23 hours ago"},
		{"1 day", now.Add(-25 * time.Hour), "1 day ago"},
		{"6 days", now.Add(-6 * 24 * time.Hour), "6 days ago"},
		{"8 days", now.Add(-8 * 24 * time.Hour), "1 week ago"},
		{"27 days", now.Add(-27 * 24 * time.Hour), "3 weeks ago"},
		{"28 days", now.Add(-28 * 24 * time.Hour), "0 months ago"},
		{"45 days", now.Add(-45 * 24 * time.Hour), "1 month ago"},
		{"100 days", now.Add(-100 * 24 * time.Hour), "3 months ago"},
		{"future", now.Add(100 * time.Second), "Just now"},
		{"zero", time.Time{}, "Unknown date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.at, now); got != tt.want {
				t.Errorf("RelativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeTimeUnparsableTimestamp(t *testing.T) {
	parsed, err := feed.ParseTimestamp("not a date")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got := RelativeTime(parsed, fetchTime); got != LabelUnknownDate {
		t.Errorf("RelativeTime(unparsable) = %q, want %q", got, LabelUnknownDate)
	}
}

func TestRenderNextOrderAndExhaustion(t *testing.T) {
	store := makeStore(7)
	p := NewPaginator(store, nil)

	var seen []Directive
	r := p.RenderNext(3)
	if r.Rendered != 3 || r.Exhausted {
		t.Fatalf("first batch = %d exhausted=%v, want 3 false", r.Rendered, r.Exhausted)
	}
	seen = append(seen, r.Items...)

	r = p.RenderNext(3)
	if r.Rendered != 3 || r.Exhausted {
		t.Fatalf("second batch = %d exhausted=%v, want 3 false", r.Rendered, r.Exhausted)
	}
	seen = append(seen, r.Items...)

	r = p.RenderNext(3)
	if r.Rendered != 1 || !r.Exhausted {
		t.Fatalf("third batch = %d exhausted=%v, want 1 true", r.Rendered, r.Exhausted)
	}
	seen = append(seen, r.Items...)

	snap := store.Snapshot()
	for i, d := range seen {
		if d.Index != i {
			t.Errorf("directive %d has index %d", i, d.Index)
		}
		if i > 0 && snap.Stories[i].Published.After(snap.Stories[i-1].Published) {
			t.Errorf("timestamps increase at %d", i)
		}
		if d.Headline != snap.Stories[i].Headline {
			t.Errorf("directive %d headline %q, want %q", i, d.Headline, snap.Stories[i].Headline)
		}
	}

	for i := 0; i < 3; i++ {
		r = p.RenderNext(3)
		if r.Rendered != 0 || !r.Exhausted {
			t.Errorf("after exhaustion: rendered=%d exhausted=%v", r.Rendered, r.Exhausted)
		}
	}
	if p.Cursor() != 7 {
		t.Errorf("cursor = %d, want 7", p.Cursor())
	}
}

func TestRenderNextDefaultBatch(t *testing.T) {
	p := NewPaginator(makeStore(30), nil)
	r := p.RenderNext(0)
	if r.Rendered != DefaultBatchSize {
		t.Errorf("RenderNext(0) rendered %d, want %d", r.Rendered, DefaultBatchSize)
	}
}

func TestRenderNextResetsOnReplace(t *testing.T) {
	store := makeStore(2)
	p := NewPaginator(store, nil)

	p.RenderNext(10)
	if !p.Exhausted() {
		t.Fatal("expected exhaustion")
	}

	store.Replace([]feed.Story{{Headline: "fresh"}}, nil, fetchTime)
	if !p.Sync() {
		t.Error("Sync should report a reset after Replace")
	}
	if p.Cursor() != 0 || p.Exhausted() {
		t.Errorf("after Sync: cursor=%d exhausted=%v", p.Cursor(), p.Exhausted())
	}
	if p.Sync() {
		t.Error("second Sync should be a no-op")
	}

	r := p.RenderNext(10)
	if r.Rendered != 1 || r.Items[0].Headline != "fresh" {
		t.Errorf("unexpected batch after replace: %+v", r)
	}

	// Reset (failed fetch) also starts a new generation.
	store.Reset()
	r = p.RenderNext(10)
	if r.Rendered != 0 || !r.Exhausted || r.Generation != store.Generation() {
		t.Errorf("unexpected batch after reset: %+v", r)
	}
}

func TestRenderNextWithoutSyncStillResets(t *testing.T) {
	store := makeStore(3)
	p := NewPaginator(store, nil)
	p.RenderNext(10)

	store.Replace([]feed.Story{{Headline: "a"}, {Headline: "b"}}, nil, fetchTime)
	r := p.RenderNext(10)
	if r.Rendered != 2 || r.Items[0].Index != 0 {
		t.Errorf("RenderNext should restart at 0 on a new generation: %+v", r)
	}
}

func TestResetRewindsAdoptedGeneration(t *testing.T) {
	store := makeStore(3)
	p := NewPaginator(store, nil)

	// A batch rendered after Replace adopts the new generation, so Sync
	// has nothing left to do.
	store.Replace([]feed.Story{{Headline: "a"}, {Headline: "b"}}, nil, fetchTime)
	p.RenderNext(1)
	if p.Sync() {
		t.Fatal("Sync should see the generation as current")
	}
	if p.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", p.Cursor())
	}

	p.Reset()
	if p.Cursor() != 0 || p.Exhausted() || p.Generation() != store.Generation() {
		t.Errorf("after Reset: cursor=%d exhausted=%v gen=%d", p.Cursor(), p.Exhausted(), p.Generation())
	}
	r := p.RenderNext(10)
	if r.Rendered != 2 || r.Items[0].Headline != "a" {
		t.Errorf("RenderNext after Reset should start at 0: %+v", r)
	}
}

func TestDirectiveContent(t *testing.T) {
	store := feed.NewStore()
	store.Replace([]feed.Story{{
		Headline:      "Good\x1b[31m news\n",
		FirstSentence: "  It   happened. ",
		Source:        "Wire",
		MeanScore:     0.55,
		Link:          "https://example.com/a",
		Published:     fetchTime.Add(-2 * time.Hour),
	}}, nil, fetchTime)

	var opened []string
	p := NewPaginator(store, OpenerFunc(func(link string) error {
		opened = append(opened, link)
		return nil
	}))

	d := p.RenderNext(1).Items[0]
	if d.Headline != "Good [31m news" {
		t.Errorf("headline not sanitized: %q", d.Headline)
	}
	if d.Preview != "It happened." {
		t.Errorf("preview = %q", d.Preview)
	}
	if d.SourceLabel != "Wire" || d.Tier != TierMedium || d.RelativeTime != "2 hours ago" {
		t.Errorf("unexpected directive %+v", d)
	}

	if err := d.OnActivate(); err != nil {
		t.Fatalf("OnActivate: %v", err)
	}
	if len(opened) != 1 || opened[0] != "https://example.com/a" {
		t.Errorf("opened = %v", opened)
	}
}

func TestDirectiveActivateError(t *testing.T) {
	store := makeStore(1)
	boom := errors.New("boom")
	p := NewPaginator(store, OpenerFunc(func(string) error { return boom }))
	d := p.RenderNext(1).Items[0]
	if err := d.OnActivate(); !errors.Is(err, boom) {
		t.Errorf("OnActivate error = %v, want %v", err, boom)
	}
}

func TestDirectiveUsesClockWithoutFetchTime(t *testing.T) {
	store := feed.NewStore()
	store.Replace([]feed.Story{{Published: fetchTime.Add(-3 * time.Minute)}}, nil, time.Time{})
	p := NewPaginator(store, nil)
	p.SetClock(func() time.Time { return fetchTime })
	if got := p.RenderNext(1).Items[0].RelativeTime; got != "3 minutes ago" {
		t.Errorf("RelativeTime = %q", got)
	}
}

func TestOutputDiscardsStaleGeneration(t *testing.T) {
	store := makeStore(5)
	p := NewPaginator(store, nil)

	var out Output
	out.Reset(p.Generation())

	stale := p.RenderNext(2)
	if !out.Apply(stale) || out.Len() != 2 {
		t.Fatalf("current generation batch should apply")
	}

	// A batch produced for an old generation arrives after a retry.
	store.Replace([]feed.Story{{Headline: "new"}}, nil, fetchTime)
	p.Sync()
	out.Reset(p.Generation())

	if out.Apply(stale) {
		t.Error("stale batch must be discarded")
	}
	if out.Len() != 0 {
		t.Errorf("output should be empty after reset, got %d", out.Len())
	}

	fresh := p.RenderNext(2)
	if !out.Apply(fresh) || out.Len() != 1 || !out.Exhausted() {
		t.Errorf("fresh batch not applied correctly: len=%d exhausted=%v", out.Len(), out.Exhausted())
	}
}

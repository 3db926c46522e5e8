package router

import (
	"fmt"
	"testing"
)

// recorder is an Overlays that logs every call.
type recorder struct {
	calls []string
	open  ViewState
}

func (r *recorder) Open(v ViewState) {
	r.calls = append(r.calls, "open:"+v.String())
	r.open = v
}

func (r *recorder) Close(v ViewState) {
	r.calls = append(r.calls, "close:"+v.String())
	if r.open == v {
		r.open = Home
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		fragment string
		want     ViewState
	}{
		{"", Home},
		{"#", Home},
		{"stats", Stats},
		{"#stats", Stats},
		{"embed", Embed},
		{"data", DataAccess},
		{"#data", DataAccess},
		{"Stats", Home},
		{"stats/", Home},
		{"bogus", Home},
		{"##stats", Home},
	}
	for _, tt := range tests {
		if got := Lookup(tt.fragment); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.fragment, got, tt.want)
		}
	}
}

func TestFragmentRoundTrip(t *testing.T) {
	for _, v := range []ViewState{Home, Stats, Embed, DataAccess} {
		if got := Lookup(v.Fragment()); got != v {
			t.Errorf("Lookup(%v.Fragment()) = %v", v, got)
		}
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name string
		from ViewState
		to   ViewState
		env  Env
		want Effects
	}{
		{"home with feed", Stats, Home, Env{}, 0},
		{"home empty feed", Stats, Home, Env{FeedEmpty: true}, EffectFetch | EffectRenderFirstBatch},
		{"stats cached", Home, Stats, Env{StatsCached: true}, 0},
		{"stats uncached", Home, Stats, Env{}, EffectComputeStats},
		{"stats empty feed", Home, Stats, Env{FeedEmpty: true}, EffectFetch | EffectComputeStats},
		{"embed", Home, Embed, Env{FeedEmpty: true}, 0},
		{"data", Home, DataAccess, Env{FeedEmpty: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transition(tt.from, tt.to, tt.env); got != tt.want {
				t.Errorf("Transition = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestUnrecognizedFragmentYieldsHome(t *testing.T) {
	rec := &recorder{}
	r := New(NewHistory(""), rec)
	r.Start(Env{})

	r.Open(Stats, Env{})
	r.Dispatch(Event{Kind: NavigateRequested, Fragment: "#nope"}, Env{})

	if r.State() != Home {
		t.Errorf("state = %v, want Home", r.State())
	}
	if rec.open != Home {
		t.Errorf("overlay %v still open", rec.open)
	}
}

func TestSameStateTwiceIsNoOp(t *testing.T) {
	rec := &recorder{}
	h := NewHistory("")
	r := New(h, rec)
	r.Start(Env{})

	first := r.Open(Stats, Env{})
	second := r.Open(Stats, Env{})
	r.Dispatch(Event{Kind: FragmentChanged, Fragment: "stats"}, Env{})

	if len(rec.calls) != 1 || rec.calls[0] != "open:stats" {
		t.Errorf("calls = %v, want exactly one open", rec.calls)
	}
	if first != EffectComputeStats {
		t.Errorf("first entry effects = %b", first)
	}
	if second != 0 {
		t.Errorf("second entry effects = %b, want none", second)
	}
	if h.Len() != 2 {
		t.Errorf("history length = %d, want 2", h.Len())
	}
}

func TestOpeningOneOverlayClosesTheOther(t *testing.T) {
	rec := &recorder{}
	r := New(NewHistory(""), rec)
	r.Start(Env{})

	r.Open(Embed, Env{})
	r.Open(DataAccess, Env{})

	want := []string{"open:embed", "close:embed", "open:data"}
	if fmt.Sprint(rec.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if rec.open != DataAccess {
		t.Errorf("open overlay = %v", rec.open)
	}
}

func TestCloseReplacesHistoryEntry(t *testing.T) {
	rec := &recorder{}
	h := NewHistory("")
	r := New(h, rec)
	r.Start(Env{})

	r.Open(Stats, Env{StatsCached: true})
	before := h.Len()

	r.Dispatch(Event{Kind: CloseRequested}, Env{})

	if h.Len() != before {
		t.Errorf("history grew from %d to %d on close", before, h.Len())
	}
	if h.Current() != "" {
		t.Errorf("fragment after close = %q, want empty", h.Current())
	}
	if r.State() != Home {
		t.Errorf("state = %v, want Home", r.State())
	}

	// Closing again does nothing.
	calls := len(rec.calls)
	r.Close(Env{})
	if len(rec.calls) != calls {
		t.Error("second close produced overlay calls")
	}
}

func TestCloseFromEmptyFeedRefetches(t *testing.T) {
	r := New(NewHistory("embed"), &recorder{})
	r.Start(Env{FeedEmpty: true})

	eff := r.Close(Env{FeedEmpty: true})
	if !eff.Has(EffectFetch | EffectRenderFirstBatch) {
		t.Errorf("closing to Home with an empty feed should fetch, got %b", eff)
	}
}

func TestBackAndForward(t *testing.T) {
	rec := &recorder{}
	h := NewHistory("")
	r := New(h, rec)
	r.Start(Env{})

	r.Open(Stats, Env{StatsCached: true})
	r.Open(Embed, Env{})

	r.Dispatch(Event{Kind: BackRequested}, Env{StatsCached: true})
	if r.State() != Stats {
		t.Errorf("after back: %v, want Stats", r.State())
	}
	r.Back(Env{})
	if r.State() != Home {
		t.Errorf("after second back: %v, want Home", r.State())
	}
	if eff := r.Back(Env{}); eff != 0 || r.State() != Home {
		t.Error("back at first entry should do nothing")
	}

	r.Dispatch(Event{Kind: ForwardRequested}, Env{StatsCached: true})
	if r.State() != Stats {
		t.Errorf("after forward: %v, want Stats", r.State())
	}
	r.Forward(Env{})
	if r.State() != Embed {
		t.Errorf("after second forward: %v, want Embed", r.State())
	}
	if eff := r.Forward(Env{}); eff != 0 || r.State() != Embed {
		t.Error("forward at last entry should do nothing")
	}
}

func TestCloseAfterBackDoesNotTrap(t *testing.T) {
	h := NewHistory("")
	r := New(h, &recorder{})
	r.Start(Env{})

	r.Open(Stats, Env{StatsCached: true})
	r.Open(Embed, Env{})
	r.Back(Env{StatsCached: true}) // arrive at Stats via history
	r.Close(Env{})                 // replaces the stats entry with home

	if h.Len() != 3 {
		t.Fatalf("history length = %d, want 3", h.Len())
	}
	r.Back(Env{})
	if r.State() != Home {
		t.Errorf("back after close: %v, want Home", r.State())
	}
	r.Forward(Env{})
	r.Forward(Env{})
	if r.State() != Embed {
		t.Errorf("forward twice: %v, want Embed", r.State())
	}
}

func TestStartDeepLink(t *testing.T) {
	rec := &recorder{}
	r := New(NewHistory("stats"), rec)

	eff := r.Start(Env{FeedEmpty: true})
	if r.State() != Stats || rec.open != Stats {
		t.Errorf("deep link did not open stats: state=%v open=%v", r.State(), rec.open)
	}
	if !eff.Has(EffectFetch | EffectComputeStats) {
		t.Errorf("deep link effects = %b", eff)
	}

	home := New(NewHistory(""), &recorder{})
	if eff := home.Start(Env{FeedEmpty: true}); !eff.Has(EffectFetch | EffectRenderFirstBatch) {
		t.Errorf("initial home effects = %b", eff)
	}
}

func TestHistoryPushDropsForward(t *testing.T) {
	h := NewHistory("")
	h.Push("stats")
	h.Push("embed")
	h.Back()
	h.Push("data")

	if h.Len() != 3 {
		t.Errorf("Len = %d, want 3", h.Len())
	}
	if _, ok := h.Forward(); ok {
		t.Error("forward entries should be dropped by Push")
	}
	if h.Current() != "data" {
		t.Errorf("Current = %q", h.Current())
	}
}

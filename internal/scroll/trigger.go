// Package scroll decides when the next batch of stories should be loaded.
//
// The Trigger watches how close the viewport is to the end of the rendered
// output. When the end comes within the lead margin it asks for exactly one
// batch and refuses further requests until that batch is reported done.
package scroll

import (
	"golang.org/x/time/rate"
)

// DefaultLeadMargin is how many rendered items may remain below the viewport
// before the next batch is requested.
const DefaultLeadMargin = 5

// Source reports whether there is anything left to load.
type Source interface {
	Exhausted() bool
}

// Position describes the viewport relative to the rendered output.
type Position struct {
	LastVisible int // index of the last item on screen, -1 when nothing is rendered
	Rendered    int // number of items rendered so far
}

// NearEnd reports whether the end of the output is within margin items of
// the viewport.
func (p Position) NearEnd(margin int) bool {
	remaining := p.Rendered - 1 - p.LastVisible
	return remaining <= margin
}

// Trigger guards batch loading with an in-flight flag.
// Not safe for concurrent use; it is driven from the UI event loop.
type Trigger struct {
	source  Source
	margin  int
	limiter *rate.Limiter

	gen      uint64
	armed    bool
	inFlight bool
}

// New creates a disarmed Trigger. Call Rearm once a snapshot is available.
// A nil limiter disables burst throttling.
func New(source Source, margin int, limiter *rate.Limiter) *Trigger {
	if margin < 0 {
		margin = DefaultLeadMargin
	}
	return &Trigger{
		source:  source,
		margin:  margin,
		limiter: limiter,
	}
}

// Rearm binds the trigger to a new snapshot generation. Any load still in
// flight for the old generation is forgotten.
func (t *Trigger) Rearm(gen uint64) {
	t.gen = gen
	t.armed = true
	t.inFlight = false
}

// Disarm stops all further loads until the next Rearm.
func (t *Trigger) Disarm() {
	t.armed = false
	t.inFlight = false
}

// Observe is called on every viewport change. It reports whether a load was
// started; the caller must then produce the batch and call Done.
func (t *Trigger) Observe(pos Position) bool {
	if !t.armed || t.inFlight {
		return false
	}
	if t.source != nil && t.source.Exhausted() {
		return false
	}
	if !pos.NearEnd(t.margin) {
		return false
	}
	if t.limiter != nil && !t.limiter.Allow() {
		return false
	}
	t.inFlight = true
	return true
}

// Done clears the in-flight flag for gen. Completions for an older
// generation are ignored.
func (t *Trigger) Done(gen uint64) {
	if gen != t.gen {
		return
	}
	t.inFlight = false
}

// InFlight reports whether a load is pending.
func (t *Trigger) InFlight() bool { return t.inFlight }

// Armed reports whether the trigger is observing.
func (t *Trigger) Armed() bool { return t.armed }

// Generation returns the generation the trigger is armed for.
func (t *Trigger) Generation() uint64 { return t.gen }

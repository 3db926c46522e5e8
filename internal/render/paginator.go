// Package render turns the feed snapshot into batches of display directives.
//
// A Paginator walks the snapshot with a single cursor and hands out fixed-size
// batches in snapshot order. The view layer owns markup; this package owns
// only the structured content of each item and its activation callback.
package render

import (
	"time"

	"github.com/abelbrown/ramah/internal/feed"
)

// DefaultBatchSize is the number of stories materialized per batch.
const DefaultBatchSize = 25

// Opener opens a story link outside this process.
type Opener interface {
	Open(link string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(link string) error

// Open calls f(link).
func (f OpenerFunc) Open(link string) error { return f(link) }

// Directive is the per-item content handed to the view layer.
type Directive struct {
	Index        int
	Headline     string
	Preview      string
	SourceLabel  string
	RelativeTime string
	Tier         Tier
	Link         string

	// OnActivate opens Link. The UI binds it to a left click and Enter/Space.
	OnActivate func() error
}

// Result describes one RenderNext call.
type Result struct {
	Items      []Directive
	Rendered   int
	Exhausted  bool
	Generation uint64
}

// Paginator is the sole owner of the render cursor.
// Not safe for concurrent use; it is driven from the UI event loop.
type Paginator struct {
	store  *feed.Store
	opener Opener
	now    func() time.Time

	gen       uint64
	cursor    int
	exhausted bool
}

// NewPaginator creates a Paginator reading from store. A nil opener makes
// OnActivate a no-op.
func NewPaginator(store *feed.Store, opener Opener) *Paginator {
	return &Paginator{
		store:  store,
		opener: opener,
		now:    time.Now,
		gen:    store.Generation(),
	}
}

// SetClock overrides the clock used when a snapshot carries no fetch time.
func (p *Paginator) SetClock(now func() time.Time) {
	p.now = now
}

// Sync resets the cursor if the store has moved to a new generation.
// It reports whether a reset happened.
func (p *Paginator) Sync() bool {
	if p.store.Generation() == p.gen {
		return false
	}
	p.Reset()
	return true
}

// Reset rewinds the cursor to the start of the current snapshot, even when
// a RenderNext has already adopted its generation.
func (p *Paginator) Reset() {
	p.gen = p.store.Generation()
	p.cursor = 0
	p.exhausted = false
}

// RenderNext materializes up to batchSize stories starting at the cursor.
// Once exhausted it keeps returning zero items until the snapshot changes.
func (p *Paginator) RenderNext(batchSize int) Result {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	snap := p.store.Snapshot()
	if snap.Generation != p.gen {
		p.gen = snap.Generation
		p.cursor = 0
		p.exhausted = false
	}

	if p.exhausted || p.cursor >= snap.Len() {
		p.exhausted = true
		return Result{Exhausted: true, Generation: p.gen}
	}

	ref := snap.FetchedAt
	if ref.IsZero() {
		ref = p.now()
	}

	end := min(p.cursor+batchSize, snap.Len())
	items := make([]Directive, 0, end-p.cursor)
	for i := p.cursor; i < end; i++ {
		items = append(items, p.directive(i, snap.Stories[i], ref))
	}

	p.cursor = end
	p.exhausted = p.cursor >= snap.Len()

	return Result{
		Items:      items,
		Rendered:   len(items),
		Exhausted:  p.exhausted,
		Generation: p.gen,
	}
}

func (p *Paginator) directive(index int, st feed.Story, ref time.Time) Directive {
	link := st.Link
	opener := p.opener
	return Directive{
		Index:        index,
		Headline:     sanitize(st.Headline),
		Preview:      sanitize(st.FirstSentence),
		SourceLabel:  sanitize(st.Source),
		RelativeTime: RelativeTime(st.Published, ref),
		Tier:         TierFor(st.MeanScore),
		Link:         link,
		OnActivate: func() error {
			if opener == nil || link == "" {
				return nil
			}
			return opener.Open(link)
		},
	}
}

// Cursor returns how many stories have been materialized for the current
// generation.
func (p *Paginator) Cursor() int { return p.cursor }

// Exhausted reports whether every story of the current generation has been
// rendered.
func (p *Paginator) Exhausted() bool { return p.exhausted }

// Generation returns the snapshot generation the cursor belongs to.
func (p *Paginator) Generation() uint64 { return p.gen }

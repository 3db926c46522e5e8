// Package stats derives aggregate figures from a feed snapshot.
package stats

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/ramah/internal/feed"
	"github.com/abelbrown/ramah/internal/render"
)

// Placeholder values reported when a figure cannot be derived.
const (
	NoArticles     = "No articles"
	UnknownUpdated = "Unknown"
)

// OldestDateLayout formats the oldest story date.
const OldestDateLayout = "Jan 2, 2006"

// LastRunKeys are the metadata keys consulted for the feed's last run, in
// order of preference.
var LastRunKeys = []string{"last_run", "lastRun", "last_updated", "updated_at", "generated_at"}

// SourceCount is the number of stories from one source.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Derived holds the aggregate figures shown in the stats overlay.
type Derived struct {
	Total       int           `json:"total"`
	Sources     []SourceCount `json:"sources"`
	OldestDate  string        `json:"oldest_date"`
	LastUpdated string        `json:"last_updated"`
}

// Compute derives stats from stories and metadata. now is the reference time
// for the relative "last updated" label. It never panics on bad input.
func Compute(stories []feed.Story, md feed.Metadata, now time.Time) Derived {
	return Derived{
		Total:       len(stories),
		Sources:     sourceCounts(stories),
		OldestDate:  oldestDate(stories),
		LastUpdated: lastUpdated(stories, md, now),
	}
}

func sourceCounts(stories []feed.Story) []SourceCount {
	index := make(map[string]int)
	var counts []SourceCount
	for _, st := range stories {
		src := strings.TrimSpace(st.Source)
		if src == "" {
			src = feed.UnknownSource
		}
		i, ok := index[src]
		if !ok {
			i = len(counts)
			index[src] = i
			counts = append(counts, SourceCount{Source: src})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

func oldestDate(stories []feed.Story) string {
	if len(stories) == 0 {
		return NoArticles
	}
	var oldest time.Time
	for _, st := range stories {
		if st.Published.IsZero() {
			continue
		}
		if oldest.IsZero() || st.Published.Before(oldest) {
			oldest = st.Published
		}
	}
	if oldest.IsZero() {
		return render.LabelUnknownDate
	}
	return oldest.Format(OldestDateLayout)
}

func lastUpdated(stories []feed.Story, md feed.Metadata, now time.Time) string {
	if t, ok := lastRun(md); ok {
		return render.RelativeTime(t, now)
	}

	var newest time.Time
	for _, st := range stories {
		if st.Published.After(newest) {
			newest = st.Published
		}
	}
	if !newest.IsZero() {
		return render.RelativeTime(newest, now)
	}
	return UnknownUpdated
}

// lastRun extracts a usable last-run time from metadata. Strings are parsed
// as timestamps and numbers as epoch values; anything else is skipped.
func lastRun(md feed.Metadata) (time.Time, bool) {
	for _, key := range LastRunKeys {
		v, ok := md[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if t, err := feed.ParseTimestamp(val); err == nil {
				return t, true
			}
		case float64:
			if t, err := feed.EpochTime(val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Cache memoizes Derived for one snapshot generation.
type Cache struct {
	mu    sync.Mutex
	gen   uint64
	valid bool
	d     Derived
}

// Get returns the cached stats if they belong to gen.
func (c *Cache) Get(gen uint64) (Derived, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.gen != gen {
		return Derived{}, false
	}
	return c.d, true
}

// Put stores d for gen, replacing whatever was cached.
func (c *Cache) Put(gen uint64, d Derived) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen = gen
	c.d = d
	c.valid = true
}

// Invalidate drops the cached value.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.d = Derived{}
}

// Resolve returns cached stats for snap, computing and caching them on the
// first call for its generation.
func (c *Cache) Resolve(snap feed.Snapshot, now time.Time) Derived {
	if d, ok := c.Get(snap.Generation); ok {
		return d
	}
	ref := snap.FetchedAt
	if ref.IsZero() {
		ref = now
	}
	d := Compute(snap.Stories, snap.Metadata, ref)
	c.Put(snap.Generation, d)
	return d
}

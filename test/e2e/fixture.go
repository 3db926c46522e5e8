package e2e

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

const fixtureHeadline = "Solar co-op lights up a valley village"

const fixtureFeed = `{
	"last_run": "2024-06-01T10:00:00Z",
	"stories": [
		{"headline": "Solar co-op lights up a valley village", "first_sentence": "Forty homes switched on this week.", "source": "Good Wire", "timestamp": "2024-06-01T08:00:00Z", "mean_score": 0.93, "link": "https://example.com/solar"},
		{"headline": "River otters return to the estuary", "first_sentence": "Volunteers counted nine.", "source": "Daily Bright", "timestamp": "2024-05-31T08:00:00Z", "mean_score": 0.71, "link": "https://example.com/otters"},
		{"headline": "Library keeps its doors open late", "first_sentence": "Night readers are welcome.", "source": "Good Wire", "timestamp": "2024-05-30T08:00:00Z", "mean_score": 0.4, "link": "https://example.com/library"}
	]
}`

// feedServer serves the fixture feed, or HTTP 503 while failing is set.
type feedServer struct {
	*httptest.Server
	failing  atomic.Bool
	requests atomic.Int32
}

func newFeedServer() *feedServer {
	s := &feedServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if s.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixtureFeed))
	}))
	return s
}

// Package otel records what the client did during a session.
//
// Events land in an in-memory RingBuffer that backs the debug panel. With
// --debug the buffer is dumped as JSON lines when the program exits.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Feed events
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Pagination events
	KindBatchRequest EventKind = "batch.request"
	KindBatchRender  EventKind = "batch.render"
	KindBatchStale   EventKind = "batch.stale"

	// Navigation events
	KindRoute EventKind = "route.change"

	// Collaborator events
	KindLinkOpen  EventKind = "link.open"
	KindLinkError EventKind = "link.error"
	KindEmbedCopy EventKind = "embed.copy"
	KindTheme     EventKind = "theme.change"
)

// Event is one diagnostic record. Every field except Kind and Time is
// optional.
type Event struct {
	Time       time.Time     `json:"t"`
	Level      Level         `json:"level,omitempty"`
	Kind       EventKind     `json:"kind"`
	Generation uint64        `json:"gen,omitempty"` // feed snapshot generation
	Count      int           `json:"count,omitempty"`
	Route      string        `json:"route,omitempty"`
	Dur        time.Duration `json:"-"`
	DurMs      float64       `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Err        string        `json:"err,omitempty"`
	Msg        string        `json:"msg,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}

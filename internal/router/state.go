// Package router maps location fragments to overlay view states.
//
// The home feed is always present underneath; at most one overlay is open on
// top of it. Navigation state lives entirely in the fragment, so back and
// forward through History restore the matching overlay.
package router

import "strings"

// ViewState is one of the mutually exclusive views.
type ViewState int

const (
	Home ViewState = iota
	Stats
	Embed
	DataAccess
)

// fragments holds the literal token for each state. Home has none.
var fragments = map[ViewState]string{
	Home:       "",
	Stats:      "stats",
	Embed:      "embed",
	DataAccess: "data",
}

var byFragment = map[string]ViewState{
	"stats": Stats,
	"embed": Embed,
	"data":  DataAccess,
}

func (v ViewState) String() string {
	switch v {
	case Home:
		return "home"
	case Stats:
		return "stats"
	case Embed:
		return "embed"
	case DataAccess:
		return "data"
	default:
		return "unknown"
	}
}

// Fragment returns the location token for v.
func (v ViewState) Fragment() string { return fragments[v] }

// IsOverlay reports whether v is drawn over the home view.
func (v ViewState) IsOverlay() bool { return v != Home }

// Lookup maps a fragment to its state by exact match. A single leading '#'
// is ignored; anything unrecognized is Home.
func Lookup(fragment string) ViewState {
	fragment = strings.TrimPrefix(fragment, "#")
	if v, ok := byFragment[fragment]; ok {
		return v
	}
	return Home
}

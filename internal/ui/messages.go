// Package ui provides the Bubble Tea TUI for Ramah.
package ui

import "github.com/abelbrown/ramah/internal/feed"

// FeedFetched is sent when a fetch attempt finishes.
type FeedFetched struct {
	Snapshot feed.Snapshot
	Err      error
}

// BatchReady is sent after the visual delay of a scroll-triggered load.
// Generation identifies the snapshot the load was started for.
type BatchReady struct {
	Generation uint64
}

// LinkOpened is sent after a story link was handed to the browser.
type LinkOpened struct {
	Link string
	Err  error
}

// EmbedCopied is sent when the embed snippet copy finishes.
type EmbedCopied struct {
	Err error
}

// ThemeSaved is sent when the theme preference has been persisted.
type ThemeSaved struct {
	Theme string
	Err   error
}

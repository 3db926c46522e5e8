package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/ramah/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by the debug
// panel's border (top + bottom = 2) and vertical padding (top + bottom = 2).
const debugPanelChrome = 4

// debugOverlay renders session counters and recent events.
// Returns an empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int, now time.Time, s Styles) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, s.OverlayTitle.Render("Session"))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d complete, %d errors",
		stats[otel.KindFetchComplete], stats[otel.KindFetchError]))
	lines = append(lines, fmt.Sprintf("  Batches:    %d requested, %d rendered, %d stale",
		stats[otel.KindBatchRequest], stats[otel.KindBatchRender], stats[otel.KindBatchStale]))
	lines = append(lines, fmt.Sprintf("  Routes:     %d changes", stats[otel.KindRoute]))
	lines = append(lines, fmt.Sprintf("  Links:      %d opened, %d failed",
		stats[otel.KindLinkOpen], stats[otel.KindLinkError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, s.OverlayTitle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-15s", formatAge(now.Sub(e.Time)), string(e.Kind))
		if e.Generation > 0 {
			line += fmt.Sprintf("  gen:%d", e.Generation)
		}
		if e.Route != "" {
			line += "  " + e.Route
		}
		if e.Msg != "" {
			line += "  " + truncate(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncate(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return s.Overlay.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/abelbrown/ramah/internal/render"
)

// itemHeight is the number of terminal lines one story card occupies:
// headline, preview, meta line and a blank separator.
const itemHeight = 4

// visibleItems returns how many cards fit in height lines.
func visibleItems(height int) int {
	n := height / itemHeight
	if n < 1 {
		return 1
	}
	return n
}

// scrollOffset keeps focus inside the window [offset, offset+visible).
func scrollOffset(offset, focus, visible int) int {
	if focus < offset {
		return focus
	}
	if focus >= offset+visible {
		return focus - visible + 1
	}
	return offset
}

// renderCards renders items[offset:offset+visible] as story cards.
func renderCards(items []render.Directive, focus, offset, visible, width int, s Styles) string {
	var b strings.Builder
	textWidth := width - 4
	if textWidth < 20 {
		textWidth = 20
	}

	for i := offset; i < len(items) && i < offset+visible; i++ {
		card := renderCard(items[i], textWidth, s)
		if i == focus {
			card = s.Focused.Render(card)
		} else {
			card = "  " + strings.ReplaceAll(card, "\n", "\n  ")
		}
		b.WriteString(card)
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderCard(d render.Directive, width int, s Styles) string {
	headline := s.Headline.Render(truncate(d.Headline, width))
	preview := s.Preview.Render(truncate(d.Preview, width))

	var meta []string
	if ind := indicator(d.Tier); ind != "" {
		meta = append(meta, s.Indicator.Render(ind))
	}
	meta = append(meta, s.Meta.Render(d.SourceLabel), s.Meta.Render(d.RelativeTime))
	metaLine := strings.Join(meta, s.Separator.Render(" • "))

	return headline + "\n" + preview + "\n" + metaLine
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

package ui

import (
	"fmt"
	"strings"

	"github.com/abelbrown/ramah/internal/router"
	"github.com/abelbrown/ramah/internal/share"
	"github.com/abelbrown/ramah/internal/stats"
	"github.com/charmbracelet/glamour"
)

// overlayState is the view-side half of routing: it records which overlay
// the router asked to show. Shared by pointer so the router and the model
// see the same value.
type overlayState struct {
	open router.ViewState
}

// Open implements router.Overlays.
func (o *overlayState) Open(v router.ViewState) { o.open = v }

// Close implements router.Overlays.
func (o *overlayState) Close(v router.ViewState) {
	if o.open == v {
		o.open = router.Home
	}
}

// Visible returns the open overlay, or Home when none is.
func (o *overlayState) Visible() router.ViewState { return o.open }

func overlayTitle(v router.ViewState) string {
	switch v {
	case router.Stats:
		return "Feed stats"
	case router.Embed:
		return "Embed Ramah"
	case router.DataAccess:
		return "Data access"
	}
	return ""
}

// statsBody renders derived stats as aligned label/value lines.
func statsBody(d stats.Derived, s Styles) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(s.StatLabel.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(s.StatValue.Render(value))
		b.WriteString("\n")
	}
	row("Stories", fmt.Sprintf("%d", d.Total))
	row("Oldest story", d.OldestDate)
	row("Last updated", d.LastUpdated)

	b.WriteString("\n")
	b.WriteString(s.OverlayTitle.Render("Sources"))
	b.WriteString("\n")
	if len(d.Sources) == 0 {
		b.WriteString(s.StatLabel.Render(stats.NoArticles))
		b.WriteString("\n")
	}
	for _, sc := range d.Sources {
		b.WriteString(fmt.Sprintf("%5d  %s\n", sc.Count, sc.Source))
	}
	return b.String()
}

// embedBody shows the iframe snippet and the copy hint.
func embedBody(siteURL, status string, s Styles) string {
	var b strings.Builder
	b.WriteString("Add the good news feed to your own page with this snippet:\n\n")
	b.WriteString(s.Code.Render(share.Snippet(siteURL)))
	b.WriteString("\n\n")
	b.WriteString(s.StatLabel.Render("Press c to copy it to the clipboard."))
	if status != "" {
		b.WriteString("\n")
		b.WriteString(s.StatValue.Render(status))
	}
	return b.String()
}

const dataAccessMarkdown = `The stories shown here are published as a single JSON document,
regenerated by the curation job and served statically.

**Endpoint**

    %s

**Shape**

Either a bare array of stories, or an object whose ` + "`stories`" + ` (or
` + "`articles`" + `) field holds the array. Other top-level fields, such as
` + "`last_run`" + `, describe the run that produced the file.

| Field | Meaning |
|---|---|
| ` + "`headline`" + ` | Story title |
| ` + "`first_sentence`" + ` | Opening sentence |
| ` + "`source`" + ` | Publisher name |
| ` + "`timestamp`" + ` | Publication time |
| ` + "`mean_score`" + ` | Positivity score, 0 to 1 |
| ` + "`link`" + ` | Original article |

**Example**

    curl -s %s | jq '.[0]'

The data is free to reuse. Please link back to the original sources.
`

// markdownCache keeps one glamour renderer for the current theme and width.
type markdownCache struct {
	theme    string
	width    int
	renderer *glamour.TermRenderer
}

// get returns a renderer for theme and width, building one only when
// either changed.
func (c *markdownCache) get(theme string, width int) (*glamour.TermRenderer, error) {
	if c.renderer != nil && c.theme == theme && c.width == width {
		return c.renderer, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	c.theme, c.width, c.renderer = theme, width, r
	return r, nil
}

// dataAccessBody renders the data access notes as terminal markdown.
// Falls back to the raw markdown if glamour cannot render.
func (c *markdownCache) dataAccessBody(endpoint, theme string, width int) string {
	md := fmt.Sprintf(dataAccessMarkdown, endpoint, endpoint)
	if width < 20 {
		width = 20
	}
	r, err := c.get(theme, width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

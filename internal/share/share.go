// Package share builds the embed snippet and copies it to the clipboard.
package share

import (
	"fmt"
	"html"
	"strings"

	"github.com/atotto/clipboard"
)

// Default iframe dimensions.
const (
	DefaultWidth  = 400
	DefaultHeight = 600
)

var clipboardWrite = clipboard.WriteAll

// Snippet returns the iframe markup that embeds siteURL in another page.
func Snippet(siteURL string) string {
	siteURL = strings.TrimSpace(siteURL)
	return fmt.Sprintf(
		`<iframe src="%s" width="%d" height="%d" style="border:0;border-radius:8px" title="Ramah: good news" loading="lazy"></iframe>`,
		html.EscapeString(siteURL), DefaultWidth, DefaultHeight,
	)
}

// Copy writes the snippet for siteURL to the system clipboard.
func Copy(siteURL string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard unavailable on this system")
	}
	if err := clipboardWrite(Snippet(siteURL)); err != nil {
		return fmt.Errorf("copy embed code: %w", err)
	}
	return nil
}

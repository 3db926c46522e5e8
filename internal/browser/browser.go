// Package browser opens story links in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/abelbrown/ramah/internal/logging"
)

// Opener launches URLs in a detached browser process. The launched process
// gets no handle back to the terminal: no inherited stdio and the child is
// released immediately.
type Opener struct {
	start func(name string, args ...string) error
}

// New returns an Opener using the platform's URL handler.
func New() *Opener {
	return &Opener{start: startDetached}
}

// Open validates rawURL and hands it to the browser.
// Only http and https are allowed.
func (o *Opener) Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	name, args := command(runtime.GOOS, rawURL)
	if err := o.start(name, args...); err != nil {
		logging.Warn("Browser launch failed", "url", rawURL, "err", err)
		return fmt.Errorf("open %s: %w", rawURL, err)
	}
	logging.Debug("Opened link", "url", rawURL)
	return nil
}

// Validate rejects anything that is not an absolute http(s) URL.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", rawURL)
	}
	return nil
}

func command(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// rundll32 avoids shell interpretation of the URL
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

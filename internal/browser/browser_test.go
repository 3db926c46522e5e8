package browser

import (
	"errors"
	"testing"
)

func TestOpenRejectsNonHTTP(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com/story?id=1", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		var launched bool
		o := &Opener{start: func(string, ...string) error {
			launched = true
			return nil
		}}

		err := o.Open(tt.url)
		if tt.wantErr && err == nil {
			t.Errorf("Open(%q): expected error, got nil", tt.url)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("Open(%q): unexpected error %v", tt.url, err)
		}
		if launched == tt.wantErr {
			t.Errorf("Open(%q): launched=%v", tt.url, launched)
		}
	}
}

func TestOpenPassesURLUnchanged(t *testing.T) {
	var gotName string
	var gotArgs []string
	o := &Opener{start: func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}}

	const link = "https://example.com/a?b=c&d=e"
	if err := o.Open(link); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if gotName == "" || len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != link {
		t.Errorf("start called with %q %v", gotName, gotArgs)
	}
}

func TestOpenReportsLaunchFailure(t *testing.T) {
	boom := errors.New("no browser")
	o := &Opener{start: func(string, ...string) error { return boom }}

	if err := o.Open("https://example.com"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped launch error", err)
	}
}

func TestCommandPerPlatform(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
		{"freebsd", "xdg-open"},
	}
	for _, tt := range tests {
		if name, _ := command(tt.goos, "https://x.test"); name != tt.want {
			t.Errorf("command(%s) = %s, want %s", tt.goos, name, tt.want)
		}
	}
}

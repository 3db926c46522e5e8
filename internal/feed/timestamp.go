package feed

import (
	"fmt"
	"strings"
	"time"
)

// ParseError describes a field value that could not be used. It is always
// recovered by the caller with a placeholder and never aborts a batch.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// timestampLayouts are tried in order. Values without a zone are read as UTC.
// Fractional seconds are accepted after any seconds field.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// ParseTimestamp parses the loosely ISO-formatted timestamps found in the feed.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ParseError{Field: "timestamp", Value: raw, Err: fmt.Errorf("empty")}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Field: "timestamp", Value: raw, Err: fmt.Errorf("unrecognized layout")}
}

// EpochTime converts a numeric epoch value to a time. Values above 1e12 are
// taken to be milliseconds.
func EpochTime(v float64) (time.Time, error) {
	if v <= 0 {
		return time.Time{}, &ParseError{Field: "epoch", Value: fmt.Sprint(v), Err: fmt.Errorf("not positive")}
	}
	if v > 1e12 {
		return time.UnixMilli(int64(v)).UTC(), nil
	}
	return time.Unix(int64(v), 0).UTC(), nil
}

// newer reports whether a should sort before b in newest-first order.
// Zero times compare as the oldest possible date.
func newer(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.After(b)
	}
}

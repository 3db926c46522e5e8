package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
)

// UnknownSource labels stories whose source is missing or blank.
const UnknownSource = "Unknown"

// ErrUnrecognizedShape is returned by DecodePayload when the body is neither a
// story array nor an envelope holding one under a known alias.
var ErrUnrecognizedShape = errors.New("unrecognized feed payload shape")

// PayloadKind tags which of the tolerated payload shapes was found.
type PayloadKind int

const (
	PayloadUnknown PayloadKind = iota
	PayloadArray
	PayloadEnvelope
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadArray:
		return "array"
	case PayloadEnvelope:
		return "envelope"
	default:
		return "unknown"
	}
}

// ArrayAliases lists the envelope field names that may hold the story array,
// in lookup order.
var ArrayAliases = []string{"stories", "articles"}

// Payload is the decoded but not yet normalized feed body.
type Payload struct {
	Kind     PayloadKind
	Alias    string // envelope field the items came from; empty for PayloadArray
	Items    []json.RawMessage
	Metadata Metadata
}

// DecodePayload sniffs the body shape and splits it into raw items and
// envelope metadata.
func DecodePayload(data []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Payload{}, ErrUnrecognizedShape
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Payload{}, errors.Join(ErrUnrecognizedShape, err)
		}
		return Payload{Kind: PayloadArray, Items: items, Metadata: Metadata{}}, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Payload{}, errors.Join(ErrUnrecognizedShape, err)
		}
		for _, alias := range ArrayAliases {
			raw, ok := fields[alias]
			if !ok {
				continue
			}
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil || items == nil {
				// Present but not an array; try the next alias.
				continue
			}
			md := make(Metadata, len(fields)-1)
			for k, v := range fields {
				if k == alias {
					continue
				}
				var val any
				if err := json.Unmarshal(v, &val); err == nil {
					md[k] = val
				}
			}
			return Payload{Kind: PayloadEnvelope, Alias: alias, Items: items, Metadata: md}, nil
		}
	}

	return Payload{}, ErrUnrecognizedShape
}

// Stories converts the raw items into Stories sorted newest first.
// Items that are not JSON objects are skipped. Field-level problems never fail
// the conversion; the returned ParseErrors describe what was substituted.
func (p Payload) Stories() ([]Story, []*ParseError) {
	stories := make([]Story, 0, len(p.Items))
	var problems []*ParseError

	for _, raw := range p.Items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			problems = append(problems, &ParseError{Field: "story", Value: truncateRaw(raw), Err: err})
			continue
		}
		st, perrs := storyFromFields(fields)
		stories = append(stories, st)
		problems = append(problems, perrs...)
	}

	SortNewestFirst(stories)
	return stories, problems
}

// SortNewestFirst orders stories by Published descending. Stories with an
// unparsable timestamp go last; ties keep their payload order.
func SortNewestFirst(stories []Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		return newer(stories[i].Published, stories[j].Published)
	})
}

func storyFromFields(fields map[string]json.RawMessage) (Story, []*ParseError) {
	var problems []*ParseError

	st := Story{
		Headline:      stringField(fields, "headline"),
		FirstSentence: stringField(fields, "first_sentence"),
		Source:        strings.TrimSpace(stringField(fields, "source")),
		Timestamp:     stringField(fields, "timestamp"),
		Link:          stringField(fields, "link"),
	}
	if st.Source == "" {
		st.Source = UnknownSource
	}

	if raw, ok := fields["mean_score"]; ok {
		score, err := scoreValue(raw)
		if err != nil {
			problems = append(problems, err)
		}
		st.MeanScore = score
	}

	if t, err := ParseTimestamp(st.Timestamp); err == nil {
		st.Published = t
	} else if st.Timestamp != "" {
		var perr *ParseError
		if errors.As(err, &perr) {
			problems = append(problems, perr)
		}
	}

	return st, problems
}

// stringField returns the string value of key, or "" when it is absent,
// null, or not a string.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func scoreValue(raw json.RawMessage) (float64, *ParseError) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	if string(raw) == "null" {
		return 0, nil
	}
	return 0, &ParseError{Field: "mean_score", Value: truncateRaw(raw)}
}

func truncateRaw(raw json.RawMessage) string {
	const max = 64
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}

package router

// History is a session history of fragments with a current position, in the
// style of a browser tab.
type History struct {
	entries []string
	index   int
}

// NewHistory starts a history at the given fragment.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// Current returns the fragment at the current position.
func (h *History) Current() string { return h.entries[h.index] }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Push adds a new entry after the current one, dropping any forward entries.
func (h *History) Push(fragment string) {
	h.entries = append(h.entries[:h.index+1], fragment)
	h.index++
}

// Replace overwrites the current entry without adding one.
func (h *History) Replace(fragment string) {
	h.entries[h.index] = fragment
}

// Back moves one entry back. It reports false at the first entry.
func (h *History) Back() (string, bool) {
	if h.index == 0 {
		return h.Current(), false
	}
	h.index--
	return h.Current(), true
}

// Forward moves one entry forward. It reports false at the last entry.
func (h *History) Forward() (string, bool) {
	if h.index >= len(h.entries)-1 {
		return h.Current(), false
	}
	h.index++
	return h.Current(), true
}

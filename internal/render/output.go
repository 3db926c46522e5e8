package render

// Output accumulates the directives that are currently visible for one
// snapshot generation.
type Output struct {
	gen       uint64
	items     []Directive
	exhausted bool
}

// Reset discards all rendered items and binds the output to gen.
func (o *Output) Reset(gen uint64) {
	o.gen = gen
	o.items = nil
	o.exhausted = false
}

// Apply appends a batch. Results from another generation are dropped and
// Apply reports false.
func (o *Output) Apply(r Result) bool {
	if r.Generation != o.gen {
		return false
	}
	o.items = append(o.items, r.Items...)
	o.exhausted = r.Exhausted
	return true
}

// Items returns the rendered directives in order.
func (o *Output) Items() []Directive { return o.items }

// Len returns the number of rendered directives.
func (o *Output) Len() int { return len(o.items) }

// Exhausted reports whether the last applied batch reached the end.
func (o *Output) Exhausted() bool { return o.exhausted }

// Generation returns the generation the output is bound to.
func (o *Output) Generation() uint64 { return o.gen }

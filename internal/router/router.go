package router

import "strings"

// Overlays is the view-side collaborator that shows and hides overlays.
type Overlays interface {
	Open(ViewState)
	Close(ViewState)
}

// Effects is the set of follow-up actions a transition asks the caller to run.
type Effects uint8

const (
	// EffectFetch asks for the feed to be fetched.
	EffectFetch Effects = 1 << iota
	// EffectRenderFirstBatch asks for the first batch once the feed is present.
	EffectRenderFirstBatch
	// EffectComputeStats asks for derived stats to be computed and cached.
	EffectComputeStats
)

// Has reports whether all of f are set in e.
func (e Effects) Has(f Effects) bool { return e&f == f }

// Env is the slice of application state a transition depends on.
type Env struct {
	FeedEmpty   bool
	StatsCached bool
}

// Transition returns the effects of entering to from from. It has no side
// effects and does not consider from == to; the Router filters that case.
func Transition(from, to ViewState, env Env) Effects {
	switch to {
	case Home:
		if env.FeedEmpty {
			return EffectFetch | EffectRenderFirstBatch
		}
	case Stats:
		if env.StatsCached {
			return 0
		}
		if env.FeedEmpty {
			return EffectFetch | EffectComputeStats
		}
		return EffectComputeStats
	}
	return 0
}

// EventKind enumerates the navigation events the Router understands.
type EventKind int

const (
	// FragmentChanged reports that the history already moved to Fragment.
	FragmentChanged EventKind = iota
	// NavigateRequested sets the fragment, adding a history entry.
	NavigateRequested
	// CloseRequested closes the open overlay.
	CloseRequested
	// BackRequested steps back in history.
	BackRequested
	// ForwardRequested steps forward in history.
	ForwardRequested
)

// Event is one navigation event.
type Event struct {
	Kind     EventKind
	Fragment string
}

type handler func(r *Router, ev Event, env Env) Effects

var dispatch = map[EventKind]handler{
	FragmentChanged: func(r *Router, ev Event, env Env) Effects {
		return r.apply(Lookup(ev.Fragment), env)
	},
	NavigateRequested: func(r *Router, ev Event, env Env) Effects {
		return r.Navigate(ev.Fragment, env)
	},
	CloseRequested: func(r *Router, _ Event, env Env) Effects {
		return r.Close(env)
	},
	BackRequested: func(r *Router, _ Event, env Env) Effects {
		return r.Back(env)
	},
	ForwardRequested: func(r *Router, _ Event, env Env) Effects {
		return r.Forward(env)
	},
}

// Router owns the current ViewState and keeps it in step with History.
// Not safe for concurrent use.
type Router struct {
	history  *History
	overlays Overlays
	state    ViewState
}

// New creates a Router in the Home state. Call Start to route the initial
// fragment.
func New(history *History, overlays Overlays) *Router {
	return &Router{history: history, overlays: overlays, state: Home}
}

// State returns the current view state.
func (r *Router) State() ViewState { return r.state }

// History returns the underlying history.
func (r *Router) History() *History { return r.history }

// Start runs the initial routing pass against the current fragment.
func (r *Router) Start(env Env) Effects {
	to := Lookup(r.history.Current())
	if to.IsOverlay() {
		r.overlays.Open(to)
	}
	r.state = to
	return Transition(Home, to, env)
}

// Dispatch routes ev through the handler table.
func (r *Router) Dispatch(ev Event, env Env) Effects {
	h, ok := dispatch[ev.Kind]
	if !ok {
		return 0
	}
	return h(r, ev, env)
}

// Navigate sets the fragment like assigning location.hash: a new history
// entry is added only when the fragment actually changes.
func (r *Router) Navigate(fragment string, env Env) Effects {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment != r.history.Current() {
		r.history.Push(fragment)
	}
	return r.apply(Lookup(fragment), env)
}

// Open navigates to the fragment of v.
func (r *Router) Open(v ViewState, env Env) Effects {
	return r.Navigate(v.Fragment(), env)
}

// Close returns to Home by replacing the current history entry, so back and
// forward never land on a closed overlay twice.
func (r *Router) Close(env Env) Effects {
	if r.history.Current() == "" && r.state == Home {
		return 0
	}
	r.history.Replace("")
	return r.apply(Home, env)
}

// Back steps back in history and applies the resulting state.
func (r *Router) Back(env Env) Effects {
	fragment, ok := r.history.Back()
	if !ok {
		return 0
	}
	return r.apply(Lookup(fragment), env)
}

// Forward steps forward in history and applies the resulting state.
func (r *Router) Forward(env Env) Effects {
	fragment, ok := r.history.Forward()
	if !ok {
		return 0
	}
	return r.apply(Lookup(fragment), env)
}

// apply opens exactly the overlay for to and closes the previous one.
// Re-entering the current state does nothing.
func (r *Router) apply(to ViewState, env Env) Effects {
	from := r.state
	if to == from {
		return 0
	}
	if from.IsOverlay() {
		r.overlays.Close(from)
	}
	if to.IsOverlay() {
		r.overlays.Open(to)
	}
	r.state = to
	return Transition(from, to, env)
}

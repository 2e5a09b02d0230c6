package bridge

// State is the per-surface protocol state. It is created once per content
// surface, mutated only by the reducer, and discarded on teardown.
//
// Each pending field follows a two-phase protocol: a producer sets it, a
// dedicated consumption action clears it. Consuming an already-clear field is
// a no-op, so the fields stay inspectable and replayable instead of behaving
// like a one-shot event stream.
type State struct {
	// LoadProgress is bounded to [0,1].
	LoadProgress float64

	// PendingError holds a user-facing failure message until acknowledged.
	PendingError *string

	// PendingNavigationTarget holds a destination URL until the host opens it.
	PendingNavigationTarget *string

	// PendingNotification holds short-lived user-facing text until displayed.
	PendingNotification *string
}

// NewState returns the initial state for a fresh surface instance.
func NewState() *State {
	return &State{}
}

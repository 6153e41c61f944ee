package session

import (
	"sentidash/internal/result"
)

// Observer is called after every change to the result model or error flags.
// Calls are serialized and made in change order; implementations must not
// block or call back into the Session.
type Observer interface {
	SessionChanged(change Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change)

func (f ObserverFunc) SessionChanged(c Change) { f(c) }

// Change describes one completed dispatch as seen by the session.
type Change struct {
	Target string
	State  result.AggregateState
	Errors map[string]Failure
	// Err is the dispatch or merge error; nil when State was updated.
	Err error
}

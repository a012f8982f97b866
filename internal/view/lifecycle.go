package view

import "context"

// State is the observable phase of a single fetch
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "success"
	case StateFailed:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is a snapshot of a fetch. Data is set only on success and
// Err only on failure.
type Result[T any] struct {
	State State
	Data  T
	Err   error
}

// Fetch runs load once. observe, when non-nil, receives the pending
// snapshot and then exactly one terminal snapshot.
func Fetch[T any](ctx context.Context, load func(context.Context) (T, error), observe func(Result[T])) Result[T] {
	notify := func(r Result[T]) {
		if observe != nil {
			observe(r)
		}
	}

	notify(Result[T]{State: StatePending})

	data, err := load(ctx)
	if err != nil {
		res := Result[T]{State: StateFailed, Err: err}
		notify(res)
		return res
	}

	res := Result[T]{State: StateSucceeded, Data: data}
	notify(res)
	return res
}

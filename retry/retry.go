// Package retry provides a composable strategy chain for re-attempting
// failed actions. A call site combines a hard attempt cap, error-kind
// filters and a delay policy into a single Retry call.
package retry

// Action is the operation under retry.
type Action func() error

// LoopAction is an operation repeated until it signals completion by
// calling stop.
type LoopAction func(stop func()) error

// Retry executes action until it succeeds or a strategy declines to
// continue. On each failure every strategy is evaluated in order; if any
// returns false the original error is returned to the caller. With no
// strategies the action runs exactly once.
func Retry(action Action, strategies ...Strategy) error {
	for attempt := uint(1); ; attempt++ {
		err := action()
		if err == nil {
			return nil
		}

		for _, s := range strategies {
			if !s(attempt, err) {
				return err
			}
		}
	}
}

// Loop executes action repeatedly until it calls stop, returning the
// result of the final iteration. Failed iterations consult the
// strategies exactly as Retry does; successful ones reset the attempt
// counter, so the strategies bound consecutive failures rather than
// total iterations.
func Loop(action LoopAction, strategies ...Strategy) error {
	stopped := false
	stop := func() { stopped = true }

	for attempt := uint(1); ; attempt++ {
		err := action(stop)
		if stopped {
			return err
		}
		if err == nil {
			attempt = 0
			continue
		}

		for _, s := range strategies {
			if !s(attempt, err) {
				return err
			}
		}
	}
}

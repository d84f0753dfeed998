// Package retry implements bounded exponential backoff as an explicit state machine.
//
// Policy.Next is a pure transition function; Do drives it against a real operation
// with an injectable Sleep so callers can observe or skip backoff waits in tests.
package retry

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 5 * time.Second
	DefaultMultiplier  = 2
)

// Policy bounds how many times an operation is attempted and how long to wait between attempts.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration
	// Multiplier scales the wait after every failed attempt.
	Multiplier int
}

// DefaultPolicy is three attempts with waits of 5s then 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Multiplier <= 0 {
		p.Multiplier = DefaultMultiplier
	}
	return p
}

// State is the position of one operation inside the retry loop.
type State struct {
	// Attempt is 1-based.
	Attempt int
	// Delay is the wait applied if this attempt fails and another is allowed.
	Delay time.Duration
}

// Outcome names the state reached after an attempt.
type Outcome int

const (
	// Retry means another attempt follows after Transition.Wait.
	Retry Outcome = iota
	// Done is terminal: the attempt succeeded.
	Done
	// Failed is terminal: the attempt failed and the budget is spent.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Retry:
		return "retry"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition is the result of feeding one attempt's error into the state machine.
type Transition struct {
	Outcome Outcome
	// Wait is set only for Retry.
	Wait time.Duration
	// Next is the state of the following attempt; only meaningful for Retry.
	Next State
}

// Start returns the state of the first attempt.
func (p Policy) Start() State {
	p = p.withDefaults()
	return State{Attempt: 1, Delay: p.BaseDelay}
}

// Next maps (state, attempt error) to the following transition. It has no side effects.
func (p Policy) Next(s State, err error) Transition {
	p = p.withDefaults()
	if err == nil {
		return Transition{Outcome: Done}
	}
	if s.Attempt >= p.MaxAttempts {
		return Transition{Outcome: Failed}
	}
	return Transition{
		Outcome: Retry,
		Wait:    s.Delay,
		Next: State{
			Attempt: s.Attempt + 1,
			Delay:   s.Delay * time.Duration(p.Multiplier),
		},
	}
}

// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
type Sleep func(ctx context.Context, d time.Duration) error

// TimerSleep is the production Sleep.
func TimerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}

// Hooks observe the loop. Any field may be nil.
type Hooks struct {
	// OnAttempt runs after every attempt with its transition.
	OnAttempt func(s State, err error, tr Transition)
}

// Do runs fn until it succeeds or the policy is exhausted.
//
// It returns fn's last output, the number of attempts made and the last error. A context
// cancelled during a backoff wait ends the loop with the context error.
func Do[T any](
	ctx context.Context,
	p Policy,
	sleep Sleep,
	hooks Hooks,
	fn func(ctx context.Context, attempt int) (T, error),
) (T, int, error) {
	p = p.withDefaults()
	if sleep == nil {
		sleep = TimerSleep
	}

	var out T
	s := p.Start()
	for {
		if err := ctx.Err(); err != nil {
			return out, s.Attempt - 1, err
		}

		res, err := fn(ctx, s.Attempt)
		out = res
		tr := p.Next(s, err)
		if hooks.OnAttempt != nil {
			hooks.OnAttempt(s, err, tr)
		}

		switch tr.Outcome {
		case Done:
			return out, s.Attempt, nil
		case Failed:
			return out, s.Attempt, err
		}

		if serr := sleep(ctx, tr.Wait); serr != nil {
			return out, s.Attempt, serr
		}
		s = tr.Next
	}
}

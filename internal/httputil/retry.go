// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages: the retry
// state machine that drives page fetches and a context-aware sleeper.
package httputil

import (
	"context"
	"fmt"
	"time"
)

// State is a position in the retry state machine.
type State int

const (
	Attempting State = iota
	BackingOff
	PermanentlyFailed
	Exhausted
	Succeeded
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case BackingOff:
		return "backing_off"
	case PermanentlyFailed:
		return "permanently_failed"
	case Exhausted:
		return "exhausted"
	case Succeeded:
		return "succeeded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further attempt will be made.
func (s State) Terminal() bool {
	return s == PermanentlyFailed || s == Exhausted || s == Succeeded
}

// Outcome is what happened after an action ran.
type Outcome int

const (
	// OutcomeSuccess: the attempt produced a usable page.
	OutcomeSuccess Outcome = iota
	// OutcomePermanent: the attempt failed and retrying cannot help.
	OutcomePermanent
	// OutcomeTransient: the transport failed (network, timeout, HTTP status).
	OutcomeTransient
	// OutcomeProcessing: the page arrived but could not be processed.
	OutcomeProcessing
	// OutcomeWoke: a backoff sleep finished.
	OutcomeWoke
)

// ActionKind is what the caller should do next.
type ActionKind int

const (
	ActionFetch ActionKind = iota
	ActionSleep
	ActionStop
)

// Action is the instruction returned by a transition.
type Action struct {
	Kind  ActionKind
	Delay time.Duration
}

// Retry is the immutable state of a bounded retry loop. Attempt counts
// attempts already started, from 1 to MaxAttempts.
type Retry struct {
	State             State
	Attempt           int
	MaxAttempts       int
	TransientBackoff  time.Duration
	ProcessingBackoff time.Duration
}

// NewRetry returns a machine positioned at the first attempt. A
// non-positive maxAttempts is treated as a single attempt.
func NewRetry(maxAttempts int, transientBackoff, processingBackoff time.Duration) Retry {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return Retry{
		State:             Attempting,
		Attempt:           1,
		MaxAttempts:       maxAttempts,
		TransientBackoff:  transientBackoff,
		ProcessingBackoff: processingBackoff,
	}
}

// Next is the pure transition function. It never mutates r.
//
//	Attempting + Success            -> Succeeded, Stop
//	Attempting + Permanent          -> PermanentlyFailed, Stop
//	Attempting + Transient (budget) -> BackingOff, Sleep(TransientBackoff)
//	Attempting + Processing(budget) -> BackingOff, Sleep(ProcessingBackoff)
//	Attempting + failure (last)     -> Exhausted, Stop
//	BackingOff + Woke               -> Attempting (next attempt), Fetch
//
// Terminal states absorb every outcome. Outcomes that do not apply to the
// current state leave it unchanged and repeat its natural action.
func (r Retry) Next(o Outcome) (Retry, Action) {
	if r.State.Terminal() {
		return r, Action{Kind: ActionStop}
	}

	switch r.State {
	case Attempting:
		switch o {
		case OutcomeSuccess:
			r.State = Succeeded
			return r, Action{Kind: ActionStop}
		case OutcomePermanent:
			r.State = PermanentlyFailed
			return r, Action{Kind: ActionStop}
		case OutcomeTransient, OutcomeProcessing:
			if r.Attempt >= r.MaxAttempts {
				r.State = Exhausted
				return r, Action{Kind: ActionStop}
			}
			delay := r.TransientBackoff
			if o == OutcomeProcessing {
				delay = r.ProcessingBackoff
			}
			r.State = BackingOff
			return r, Action{Kind: ActionSleep, Delay: delay}
		}
		return r, Action{Kind: ActionFetch}

	case BackingOff:
		if o == OutcomeWoke {
			r.State = Attempting
			r.Attempt++
			return r, Action{Kind: ActionFetch}
		}
		return r, Action{Kind: ActionSleep}
	}

	return r, Action{Kind: ActionStop}
}

// Sleeper pauses for d or until ctx is done, returning ctx.Err() in the
// latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the production Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package session

import (
	"fmt"
	"time"

	"github.com/eatprep/cbt-player/internal/model"
)

// Tick is the outcome of re-evaluating the clock against a state.
type Tick struct {
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining"`
	// TimedOut is true only on the tick that first observed zero
	// remaining time and forced submission.
	TimedOut bool `json:"timed_out"`
}

// RecordAnswer selects an option for a question. Re-selecting the same
// option leaves the state unchanged. No-op once submitted.
func (s State) RecordAnswer(q model.Question, optionIndex int) (State, error) {
	if s.Submitted {
		return s, nil
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return s, fmt.Errorf("%w: index %d, question %d has %d options", ErrInvalidOption, optionIndex, q.Qnum, len(q.Options))
	}
	next := s.cloneAnswers()
	next.Answers[q.Qnum] = optionIndex
	return next, nil
}

// Previous moves back one question, clamped at the first. No-op once
// submitted.
func (s State) Previous() State {
	if s.Submitted {
		return s
	}
	s.Current = max(0, s.Current-1)
	return s
}

// Next moves forward one question, clamped at the last. No-op once
// submitted.
func (s State) Next() State {
	if s.Submitted {
		return s
	}
	s.Current = min(len(s.Order)-1, s.Current+1)
	return s
}

// JumpTo moves directly to a navigation position. Unlike Previous/Next
// an out-of-range target is rejected, not clamped. No-op once submitted.
func (s State) JumpTo(index int) (State, error) {
	if s.Submitted {
		return s, nil
	}
	if index < 0 || index >= len(s.Order) {
		return s, fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, index, len(s.Order))
	}
	s.Current = index
	return s, nil
}

// Submit marks the session submitted. Idempotent.
func (s State) Submit() State {
	s.Submitted = true
	return s
}

// Evaluate recomputes elapsed and remaining time, and fires the one
// time-driven transition: the first tick that observes zero remaining
// time on an unsubmitted session records the current position as the
// timeout point and forces submission.
//
// There is no independent timer; the presentation layer is expected to
// call this on every poll or render. Any cadence is safe: remaining is
// clamped to zero and the timeout fires exactly once.
func (s State) Evaluate(now time.Time) (State, Tick) {
	t := Tick{Elapsed: s.Elapsed(now), Remaining: s.Remaining(now)}
	if t.Remaining <= 0 && s.TimedOutAt == nil && !s.Submitted {
		at := s.Current
		s.TimedOutAt = &at
		s.Submitted = true
		t.TimedOut = true
	}
	return s, t
}

// FormatClock renders a duration as an MM:SS countdown string.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

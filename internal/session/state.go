// Package session implements the exam session state machine: answers,
// navigation position, elapsed time and submission status, with resume
// from a persisted snapshot and auto-submission on timeout.
//
// State is a value. Every transition takes the current state and returns
// a new one; the answer map is cloned on write so older copies stay
// valid. Nothing in this package performs I/O or reads the clock on its
// own — callers pass time.Time explicitly.
package session

import (
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/eatprep/cbt-player/internal/model"
)

// State is the canonical mutable state of one exam attempt.
//
// Invariants held by every transition:
//   - Current is always a valid index into Order (navigation clamps,
//     never wraps).
//   - Submitted never reverts to false.
//   - TimedOutAt is set at most once and never overwritten.
//   - Answers keys are qnums of the loaded bank.
type State struct {
	SetID      string        `json:"set_id"`
	Section    string        `json:"section,omitempty"`
	Order      []int         `json:"order"`
	Current    int           `json:"current"`
	Answers    map[int]int   `json:"answers"`
	StartedAt  time.Time     `json:"started_at"`
	TimeLimit  time.Duration `json:"time_limit"`
	Submitted  bool          `json:"submitted"`
	TimedOutAt *int          `json:"timed_out_at,omitempty"`
}

// Start creates a fresh session positioned on the first question.
func Start(setID string, order []int, limit time.Duration, now time.Time) (State, error) {
	if len(order) == 0 {
		return State{}, fmt.Errorf("%w: empty question order", ErrInvalidConfiguration)
	}
	if limit <= 0 {
		return State{}, fmt.Errorf("%w: non-positive time limit %v", ErrInvalidConfiguration, limit)
	}
	return State{
		SetID:     setID,
		Order:     order,
		Current:   0,
		Answers:   map[int]int{},
		StartedAt: now,
		TimeLimit: limit,
	}, nil
}

// Resume reconstructs a session from a persisted snapshot. The start
// time is rewound to now minus the elapsed time at save, so remaining
// time continues where it left off instead of resetting.
//
// Returns ErrCorruptSnapshot when the snapshot does not fit the given
// set and order (set mismatch, index out of bounds, unknown qnum or
// out-of-range option in a stored answer). The caller falls back to
// Start in that case.
func Resume(setID string, bank []model.Question, order []int, limit time.Duration, snap model.Snapshot, now time.Time) (State, error) {
	if snap.QuestionSetID != setID {
		return State{}, fmt.Errorf("%w: snapshot is for set %q, want %q", ErrCorruptSnapshot, snap.QuestionSetID, setID)
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(order) {
		return State{}, fmt.Errorf("%w: index %d out of range for %d questions", ErrCorruptSnapshot, snap.CurrentIndex, len(order))
	}
	if snap.ElapsedAtSave < 0 {
		return State{}, fmt.Errorf("%w: negative elapsed time", ErrCorruptSnapshot)
	}

	optionCount := make(map[int]int, len(bank))
	for i := range bank {
		optionCount[bank[i].Qnum] = len(bank[i].Options)
	}

	answers := make(map[int]int, len(snap.Answers))
	for key, idx := range snap.Answers {
		qnum, err := strconv.Atoi(key)
		if err != nil {
			return State{}, fmt.Errorf("%w: bad answer key %q", ErrCorruptSnapshot, key)
		}
		n, ok := optionCount[qnum]
		if !ok {
			return State{}, fmt.Errorf("%w: answer for unknown question %d", ErrCorruptSnapshot, qnum)
		}
		if idx < 0 || idx >= n {
			return State{}, fmt.Errorf("%w: answer %d out of range for question %d", ErrCorruptSnapshot, idx, qnum)
		}
		answers[qnum] = idx
	}

	st, err := Start(setID, order, limit, now)
	if err != nil {
		return State{}, err
	}
	st.Current = snap.CurrentIndex
	st.Answers = answers
	st.StartedAt = now.Add(-time.Duration(snap.ElapsedAtSave * float64(time.Second)))
	return st, nil
}

// Elapsed returns the time spent in the session so far.
func (s State) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// Remaining returns the time left, clamped to zero. Safe to recompute
// at any cadence.
func (s State) Remaining(now time.Time) time.Duration {
	return max(0, s.TimeLimit-s.Elapsed(now))
}

// AnswerFor returns the recorded option index for a question.
func (s State) AnswerFor(qnum int) (int, bool) {
	idx, ok := s.Answers[qnum]
	return idx, ok
}

// CurrentQnum returns the qnum at the current navigation position.
func (s State) CurrentQnum() int {
	return s.Order[s.Current]
}

// CanGoPrevious reports whether Previous would move the position.
func (s State) CanGoPrevious() bool {
	return !s.Submitted && s.Current > 0
}

// CanGoNext reports whether Next would move the position.
func (s State) CanGoNext() bool {
	return !s.Submitted && s.Current < len(s.Order)-1
}

// Snapshot projects the state into its persisted form.
func (s State) Snapshot(now time.Time) model.Snapshot {
	answers := make(map[string]int, len(s.Answers))
	for qnum, idx := range s.Answers {
		answers[strconv.Itoa(qnum)] = idx
	}
	return model.Snapshot{
		CurrentIndex:  s.Current,
		Answers:       answers,
		ElapsedAtSave: s.Elapsed(now).Seconds(),
		QuestionSetID: s.SetID,
	}
}

// ExportAnswers returns the archival answers map: every qnum in the
// navigation order mapped to the selected option index, or null when
// unanswered.
func (s State) ExportAnswers() map[string]*int {
	out := make(map[string]*int, len(s.Order))
	for _, qnum := range s.Order {
		if idx, ok := s.Answers[qnum]; ok {
			v := idx
			out[strconv.Itoa(qnum)] = &v
		} else {
			out[strconv.Itoa(qnum)] = nil
		}
	}
	return out
}

// cloneAnswers returns s with a private copy of the answer map, so a
// write does not leak into previously returned states.
func (s State) cloneAnswers() State {
	s.Answers = maps.Clone(s.Answers)
	return s
}

// Package repository supplies ordered question sets to the session
// service. Two backends implement the same contract: a directory of
// JSON files and an embedded SQLite database. Both guarantee stable
// qnum and option ordering for the lifetime of a loaded set.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eatprep/cbt-player/internal/model"
)

// ErrSetNotFound means the requested question set does not exist in
// the configured source.
var ErrSetNotFound = errors.New("question set not found")

// QuestionRepository is the question source contract.
type QuestionRepository interface {
	// ListAvailableSets returns every set in the source with its
	// question and per-section counts, sorted by ID.
	ListAvailableSets(ctx context.Context) ([]model.SetInfo, error)
	// LoadQuestionSet returns the ordered questions of one set.
	// Returns ErrSetNotFound for an unknown ID.
	LoadQuestionSet(ctx context.Context, id string) ([]model.Question, error)
}

// ValidateSet rejects malformed question sets at load time. A bad set
// fails the whole load: setup errors are surfaced, never defaulted.
func ValidateSet(id string, questions []model.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("set %q: no questions", id)
	}
	seen := make(map[int]bool, len(questions))
	for i := range questions {
		q := &questions[i]
		if seen[q.Qnum] {
			return fmt.Errorf("set %q: duplicate qnum %d", id, q.Qnum)
		}
		seen[q.Qnum] = true
		if len(q.Options) < 2 {
			return fmt.Errorf("set %q: question %d has %d options, need at least 2", id, q.Qnum, len(q.Options))
		}
		if q.Correct != nil && (*q.Correct < 0 || *q.Correct >= len(q.Options)) {
			return fmt.Errorf("set %q: question %d answer key %d out of range", id, q.Qnum, *q.Correct)
		}
	}
	return nil
}

// Order returns the navigation order of a loaded set, optionally
// restricted to one section. An empty section means the full set.
// Answers stay keyed by qnum, so they survive filter changes.
func Order(questions []model.Question, section string) []int {
	order := make([]int, 0, len(questions))
	for i := range questions {
		if section != "" && questions[i].Section != section {
			continue
		}
		order = append(order, questions[i].Qnum)
	}
	return order
}

// setInfo summarizes a loaded set for listings.
func setInfo(id string, questions []model.Question) model.SetInfo {
	info := model.SetInfo{
		ID:            id,
		QuestionCount: len(questions),
		Sections:      map[string]int{},
	}
	for i := range questions {
		info.Sections[questions[i].Section]++
	}
	return info
}

package session

import "github.com/eatprep/cbt-player/internal/model"

// ReviewRow is one line of the post-submission answer key review.
// Answer texts are resolved from option indices at review time; a nil
// YourAnswer means unanswered, a nil CorrectAnswer means ungraded.
type ReviewRow struct {
	Qnum          int     `json:"qnum"`
	Section       string  `json:"section"`
	Prompt        string  `json:"prompt"`
	YourAnswer    *string `json:"your_answer"`
	CorrectAnswer *string `json:"correct_answer"`
	IsCorrect     *bool   `json:"is_correct,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
}

// Summary is the scored outcome of a session over the full question
// bank. Graded counts only questions that carry an answer key; the
// review rows cover every question.
type Summary struct {
	Graded          int         `json:"graded"`
	Correct         int         `json:"correct"`
	Wrong           int         `json:"wrong"`
	Unanswered      int         `json:"unanswered"`
	TimedOutAtIndex *int        `json:"timed_out_at_index,omitempty"`
	Rows            []ReviewRow `json:"rows"`
}

// Results scores the session against the full bank, not just the
// navigation order, so answers recorded under a section filter still
// count. Correctness is index equality only.
func (s State) Results(bank []model.Question) Summary {
	sum := Summary{
		TimedOutAtIndex: s.TimedOutAt,
		Rows:            make([]ReviewRow, 0, len(bank)),
	}

	for i := range bank {
		q := &bank[i]
		row := ReviewRow{
			Qnum:        q.Qnum,
			Section:     q.Section,
			Prompt:      q.Prompt,
			Explanation: q.Explanation,
		}

		selected, answered := s.Answers[q.Qnum]
		if answered {
			text := q.Options[selected]
			row.YourAnswer = &text
		}

		if q.Graded() {
			sum.Graded++
			text := q.Options[*q.Correct]
			row.CorrectAnswer = &text

			switch {
			case !answered:
				sum.Unanswered++
			case selected == *q.Correct:
				sum.Correct++
				ok := true
				row.IsCorrect = &ok
			default:
				sum.Wrong++
				ok := false
				row.IsCorrect = &ok
			}
		}

		sum.Rows = append(sum.Rows, row)
	}

	return sum
}

package model

// Question is a single multiple-choice question as supplied by the
// question repository. Options keep their load order for the whole
// session; answers always reference an option by index, never by text,
// so duplicate option text at different indices stays unambiguous.
type Question struct {
	Qnum        int      `json:"qnum"`
	Section     string   `json:"section"`
	Prompt      string   `json:"prompt"`
	Passage     string   `json:"passage,omitempty"`
	Options     []string `json:"options"`
	Correct     *int     `json:"correct,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Graded reports whether the question carries an answer key.
// Ungraded questions are excluded from scoring entirely.
func (q *Question) Graded() bool {
	return q.Correct != nil
}

// QuestionView is a question as sent to the test-taker during an
// in-progress session: no answer key, no explanation.
type QuestionView struct {
	Qnum    int      `json:"qnum"`
	Section string   `json:"section"`
	Prompt  string   `json:"prompt"`
	Passage string   `json:"passage,omitempty"`
	Options []string `json:"options"`
}

// ViewOf strips the answer key and explanation from a question.
func ViewOf(q Question) QuestionView {
	return QuestionView{
		Qnum:    q.Qnum,
		Section: q.Section,
		Prompt:  q.Prompt,
		Passage: q.Passage,
		Options: q.Options,
	}
}

// SetInfo describes one question set available in the repository.
type SetInfo struct {
	ID            string         `json:"id"`
	QuestionCount int            `json:"question_count"`
	Sections      map[string]int `json:"sections"`
}

package model

// StartSessionRequest is the payload for starting a fresh session.
// TimeLimitSeconds falls back to the configured default (60 minutes)
// when omitted. Section restricts the navigation order to one section
// of the set; answers stay keyed by qnum across filters.
type StartSessionRequest struct {
	SetID            string `json:"set_id" binding:"required,min=1,max=255"`
	TimeLimitSeconds int    `json:"time_limit_seconds" binding:"omitempty,min=1,max=86400"`
	Section          string `json:"section" binding:"omitempty,max=100"`
}

// ResumeSessionRequest is the payload for resuming from the persisted
// snapshot. The set (and section filter, if any) must match what the
// snapshot was taken against or the resume falls back to a fresh start.
type ResumeSessionRequest struct {
	SetID            string `json:"set_id" binding:"required,min=1,max=255"`
	TimeLimitSeconds int    `json:"time_limit_seconds" binding:"omitempty,min=1,max=86400"`
	Section          string `json:"section" binding:"omitempty,max=100"`
}

// RecordAnswerRequest is the payload for selecting an option.
type RecordAnswerRequest struct {
	Qnum        int `json:"qnum" binding:"min=0"`
	OptionIndex int `json:"option_index" binding:"min=0"`
}

// JumpRequest is the payload for jumping to a navigation position.
type JumpRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// ViewModel is the read-only snapshot the presentation layer renders
// from. It is recomputed on every poll; the embedded remaining time is
// already clamped to zero.
type ViewModel struct {
	SetID            string        `json:"set_id"`
	Section          string        `json:"section,omitempty"`
	Position         int           `json:"position"`
	Total            int           `json:"total"`
	Question         *QuestionView `json:"question"`
	SelectedOption   *int          `json:"selected_option"`
	AnsweredCount    int           `json:"answered_count"`
	RemainingSeconds int           `json:"remaining_seconds"`
	RemainingDisplay string        `json:"remaining_display"`
	CanGoPrevious    bool          `json:"can_go_previous"`
	CanGoNext        bool          `json:"can_go_next"`
	Submitted        bool          `json:"submitted"`
	TimedOutAtIndex  *int          `json:"timed_out_at_index,omitempty"`
}

// SessionStartedResponse reports how a session came to be: resumed from
// a snapshot or started fresh (because none existed or it was unusable).
type SessionStartedResponse struct {
	Resumed bool      `json:"resumed"`
	View    ViewModel `json:"view"`
}

// TickEvent is one timer frame pushed over the WebSocket stream.
type TickEvent struct {
	RemainingSeconds int    `json:"remaining_seconds"`
	RemainingDisplay string `json:"remaining_display"`
	Submitted        bool   `json:"submitted"`
	TimedOutAtIndex  *int   `json:"timed_out_at_index,omitempty"`
}

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/eatprep/cbt-player/internal/model"
)

func intPtr(v int) *int { return &v }

func testBank() []model.Question {
	return []model.Question{
		{Qnum: 1, Section: "Quant", Prompt: "1+1?", Options: []string{"1", "2"}, Correct: intPtr(1)},
		{Qnum: 2, Section: "Quant", Prompt: "2+2?", Options: []string{"4", "5", "6"}, Correct: intPtr(0)},
		{Qnum: 3, Section: "Verbal", Prompt: "Pick X", Options: []string{"X", "Y"}, Correct: intPtr(0)},
	}
}

func testOrder() []int { return []int{1, 2, 3} }

func mustStart(t *testing.T, limit time.Duration, now time.Time) State {
	t.Helper()
	st, err := Start("set-a", testOrder(), limit, now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return st
}

func TestStartValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		order []int
		limit time.Duration
		ok    bool
	}{
		{"valid", testOrder(), time.Hour, true},
		{"empty order", nil, time.Hour, false},
		{"zero limit", testOrder(), 0, false},
		{"negative limit", testOrder(), -time.Second, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, err := Start("set-a", tc.order, tc.limit, now)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if st.Current != 0 || len(st.Answers) != 0 || st.Submitted || st.TimedOutAt != nil {
					t.Errorf("fresh state not zeroed: %+v", st)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("want ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestNavigationClamps(t *testing.T) {
	now := time.Now()
	st := mustStart(t, time.Hour, now)

	// Previous at the first question stays put.
	if st = st.Previous(); st.Current != 0 {
		t.Fatalf("Previous at 0: got %d", st.Current)
	}

	// Walk far past the end; must clamp at the last index.
	for i := 0; i < 10; i++ {
		st = st.Next()
	}
	if st.Current != 2 {
		t.Fatalf("Next clamp: got %d, want 2", st.Current)
	}

	// And back far past the start.
	for i := 0; i < 10; i++ {
		st = st.Previous()
	}
	if st.Current != 0 {
		t.Fatalf("Previous clamp: got %d, want 0", st.Current)
	}
}

func TestJumpTo(t *testing.T) {
	now := time.Now()
	st := mustStart(t, time.Hour, now)

	st, err := st.JumpTo(2)
	if err != nil || st.Current != 2 {
		t.Fatalf("JumpTo(2): current=%d err=%v", st.Current, err)
	}

	if _, err := st.JumpTo(len(st.Order)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("JumpTo(len): want ErrIndexOutOfRange, got %v", err)
	}
	if _, err := st.JumpTo(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("JumpTo(-1): want ErrIndexOutOfRange, got %v", err)
	}

	// Single-question set: jump to 0 succeeds and is a no-op.
	single, err := Start("solo", []int{7}, time.Hour, now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	single, err = single.JumpTo(0)
	if err != nil || single.Current != 0 {
		t.Fatalf("JumpTo(0) on single set: current=%d err=%v", single.Current, err)
	}
}

func TestRecordAnswer(t *testing.T) {
	now := time.Now()
	bank := testBank()
	st := mustStart(t, time.Hour, now)

	st, err := st.RecordAnswer(bank[0], 0)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if got, ok := st.AnswerFor(1); !ok || got != 0 {
		t.Fatalf("AnswerFor(1) = %d,%v", got, ok)
	}

	// Re-recording keeps only the latest index.
	st, err = st.RecordAnswer(bank[0], 1)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if got, _ := st.AnswerFor(1); got != 1 {
		t.Fatalf("latest answer not kept: got %d", got)
	}

	// Out-of-range index rejected, state unchanged.
	before := st
	st, err = st.RecordAnswer(bank[0], 2)
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("want ErrInvalidOption, got %v", err)
	}
	if got, _ := st.AnswerFor(1); got != 1 {
		t.Errorf("state changed on rejected answer")
	}
	if _, err := before.RecordAnswer(bank[0], -1); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("negative index: want ErrInvalidOption, got %v", err)
	}
}

func TestRecordAnswerDoesNotLeakIntoOlderStates(t *testing.T) {
	now := time.Now()
	bank := testBank()
	st := mustStart(t, time.Hour, now)

	before := st
	after, err := st.RecordAnswer(bank[0], 1)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if _, ok := before.AnswerFor(1); ok {
		t.Errorf("write leaked into prior state value")
	}
	if _, ok := after.AnswerFor(1); !ok {
		t.Errorf("write missing from new state value")
	}
}

func TestSubmitIdempotentAndMonotonic(t *testing.T) {
	now := time.Now()
	bank := testBank()
	st := mustStart(t, time.Hour, now)
	st, _ = st.RecordAnswer(bank[0], 1)

	once := st.Submit()
	twice := once.Submit()
	if !once.Submitted || !twice.Submitted {
		t.Fatalf("Submit did not stick")
	}
	if twice.Current != once.Current || len(twice.Answers) != len(once.Answers) {
		t.Errorf("second Submit changed state")
	}

	// After submission every mutating operation is a no-op.
	if got := once.Next(); got.Current != once.Current {
		t.Errorf("Next after submit moved position")
	}
	if got := once.Previous(); got.Current != once.Current {
		t.Errorf("Previous after submit moved position")
	}
	if got, err := once.JumpTo(2); err != nil || got.Current != once.Current {
		t.Errorf("JumpTo after submit: current=%d err=%v", got.Current, err)
	}
	if got, err := once.RecordAnswer(bank[1], 1); err != nil || len(got.Answers) != len(once.Answers) {
		t.Errorf("RecordAnswer after submit mutated answers (err=%v)", err)
	}
}

func TestEvaluateTimeoutFiresExactlyOnce(t *testing.T) {
	start := time.Unix(1000, 0)
	st := mustStart(t, time.Minute, start)
	st = st.Next() // timed out while on the second question

	// Before the deadline nothing fires.
	st, tick := st.Evaluate(start.Add(30 * time.Second))
	if tick.TimedOut || st.Submitted {
		t.Fatalf("timeout fired early: %+v", tick)
	}
	if tick.Remaining != 30*time.Second {
		t.Fatalf("remaining = %v, want 30s", tick.Remaining)
	}

	// First tick at/after the deadline: forced submission, position recorded.
	st, tick = st.Evaluate(start.Add(2 * time.Minute))
	if !tick.TimedOut || !st.Submitted {
		t.Fatalf("timeout did not fire: %+v", tick)
	}
	if tick.Remaining != 0 {
		t.Errorf("remaining not clamped: %v", tick.Remaining)
	}
	if st.TimedOutAt == nil || *st.TimedOutAt != 1 {
		t.Fatalf("TimedOutAt = %v, want 1", st.TimedOutAt)
	}

	// Every later tick is a no-op and never re-fires.
	for i := 0; i < 3; i++ {
		var again Tick
		st, again = st.Evaluate(start.Add(time.Duration(3+i) * time.Minute))
		if again.TimedOut {
			t.Fatalf("timeout fired twice")
		}
		if *st.TimedOutAt != 1 {
			t.Fatalf("TimedOutAt overwritten: %d", *st.TimedOutAt)
		}
	}
}

func TestExplicitSubmitSkipsTimeout(t *testing.T) {
	start := time.Unix(1000, 0)
	st := mustStart(t, time.Minute, start)
	st = st.Submit()

	st, tick := st.Evaluate(start.Add(5 * time.Minute))
	if tick.TimedOut {
		t.Errorf("timeout fired on an already-submitted session")
	}
	if st.TimedOutAt != nil {
		t.Errorf("TimedOutAt set on explicit submit: %v", st.TimedOutAt)
	}
}

func TestResumeRoundTrip(t *testing.T) {
	start := time.Unix(5000, 0)
	bank := testBank()
	st := mustStart(t, time.Hour, start)
	st, _ = st.RecordAnswer(bank[0], 1)
	st, _ = st.RecordAnswer(bank[2], 0)
	st, _ = st.JumpTo(2)

	saveTime := start.Add(10 * time.Minute)
	snap := st.Snapshot(saveTime)

	restored, err := Resume("set-a", bank, testOrder(), time.Hour, snap, saveTime)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if restored.Current != st.Current {
		t.Errorf("current = %d, want %d", restored.Current, st.Current)
	}
	if len(restored.Answers) != 2 || restored.Answers[1] != 1 || restored.Answers[3] != 0 {
		t.Errorf("answers = %v", restored.Answers)
	}
	// Remaining time continues with no jump when resumed at save time.
	if got, want := restored.Remaining(saveTime), st.Remaining(saveTime); got != want {
		t.Errorf("remaining = %v, want %v", got, want)
	}
}

func TestResumeRejectsCorruptSnapshots(t *testing.T) {
	now := time.Unix(5000, 0)
	bank := testBank()

	base := model.Snapshot{
		CurrentIndex:  1,
		Answers:       map[string]int{"1": 1},
		ElapsedAtSave: 60,
		QuestionSetID: "set-a",
	}

	tests := []struct {
		name   string
		mutate func(s *model.Snapshot)
	}{
		{"set mismatch", func(s *model.Snapshot) { s.QuestionSetID = "set-b" }},
		{"index too large", func(s *model.Snapshot) { s.CurrentIndex = 3 }},
		{"index negative", func(s *model.Snapshot) { s.CurrentIndex = -1 }},
		{"negative elapsed", func(s *model.Snapshot) { s.ElapsedAtSave = -1 }},
		{"non-numeric answer key", func(s *model.Snapshot) { s.Answers = map[string]int{"one": 0} }},
		{"unknown qnum", func(s *model.Snapshot) { s.Answers = map[string]int{"99": 0} }},
		{"answer out of range", func(s *model.Snapshot) { s.Answers = map[string]int{"1": 5} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := base
			snap.Answers = map[string]int{"1": 1}
			tc.mutate(&snap)
			if _, err := Resume("set-a", bank, testOrder(), time.Hour, snap, now); !errors.Is(err, ErrCorruptSnapshot) {
				t.Fatalf("want ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestEndToEndTimeoutScenario(t *testing.T) {
	// Two questions, one-second limit. Answer the first at t=0.2, tick
	// at t=1.5: timed out on the first question, auto-submitted, and the
	// second question counts as unanswered.
	start := time.Unix(0, 0)
	bank := testBank()[:2]
	st, err := Start("set-a", []int{1, 2}, time.Second, start)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	st, err = st.RecordAnswer(bank[0], 1)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	st, tick := st.Evaluate(start.Add(1500 * time.Millisecond))
	if !tick.TimedOut || !st.Submitted {
		t.Fatalf("expected timeout, got %+v", tick)
	}
	if st.TimedOutAt == nil || *st.TimedOutAt != 0 {
		t.Fatalf("TimedOutAt = %v, want 0", st.TimedOutAt)
	}

	sum := st.Results(bank)
	if sum.Graded != 2 || sum.Correct != 1 || sum.Wrong != 0 || sum.Unanswered != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.TimedOutAtIndex == nil || *sum.TimedOutAtIndex != 0 {
		t.Errorf("summary timeout index = %v", sum.TimedOutAtIndex)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{time.Minute, "01:00"},
		{61 * time.Minute, "61:00"},
	}
	for _, tc := range tests {
		if got := FormatClock(tc.d); got != tc.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

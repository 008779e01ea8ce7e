package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eatprep/cbt-player/internal/model"
	"github.com/eatprep/cbt-player/internal/repository"
	"github.com/eatprep/cbt-player/internal/session"
	"github.com/eatprep/cbt-player/internal/snapshot"
	"github.com/eatprep/cbt-player/internal/worker"
)

var (
	// ErrNoActiveSession means an operation needs a session but none
	// has been started.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotSubmitted means results were requested before submission.
	ErrNotSubmitted = errors.New("session not submitted yet")

	// ErrQuestionNotFound means an answer referenced a qnum outside
	// the loaded bank.
	ErrQuestionNotFound = errors.New("question not in loaded set")
)

// Persister accepts snapshot persistence jobs off the request path.
type Persister interface {
	Enqueue(worker.Job)
}

// SessionService owns the single active exam session. All state
// transitions go through the pure session package; this layer adds the
// clock, the question bank, snapshot persistence and view models.
//
// The mutex serializes HTTP handlers over the logically single-writer
// session.
type SessionService struct {
	mu           sync.Mutex
	repo         repository.QuestionRepository
	store        snapshot.Store
	persist      Persister
	defaultLimit time.Duration
	log          zerolog.Logger
	clock        func() time.Time

	state  *session.State
	bank   []model.Question
	byQnum map[int]model.Question
}

// NewSessionService creates a SessionService.
func NewSessionService(
	repo repository.QuestionRepository,
	store snapshot.Store,
	persist Persister,
	defaultLimit time.Duration,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		repo:         repo,
		store:        store,
		persist:      persist,
		defaultLimit: defaultLimit,
		log:          log.With().Str("component", "session_service").Logger(),
		clock:        time.Now,
	}
}

// Sets lists the question sets available to start a session with.
func (s *SessionService) Sets(ctx context.Context) ([]model.SetInfo, error) {
	return s.repo.ListAvailableSets(ctx)
}

// Start begins a fresh session over the requested set, superseding any
// existing session.
func (s *SessionService) Start(ctx context.Context, req model.StartSessionRequest) (model.ViewModel, error) {
	bank, err := s.repo.LoadQuestionSet(ctx, req.SetID)
	if err != nil {
		return model.ViewModel{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(bank, req.SetID, req.Section, req.TimeLimitSeconds)
}

// Resume restores the session from the persisted snapshot. An absent
// or unusable snapshot is not an error: it logs a warning and falls
// back to a fresh start, reported via Resumed=false.
func (s *SessionService) Resume(ctx context.Context, req model.ResumeSessionRequest) (model.SessionStartedResponse, error) {
	bank, err := s.repo.LoadQuestionSet(ctx, req.SetID)
	if err != nil {
		return model.SessionStartedResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limit := s.limitFor(req.TimeLimitSeconds)
	order := repository.Order(bank, req.Section)
	now := s.clock()

	snap, err := s.store.Load(ctx)
	if err == nil {
		st, resumeErr := session.Resume(req.SetID, bank, order, limit, snap, now)
		if resumeErr == nil {
			s.install(st, bank, req.Section)
			s.persistLocked(now)
			s.log.Info().Str("set_id", req.SetID).Int("answers", len(st.Answers)).Msg("Session resumed")
			return model.SessionStartedResponse{Resumed: true, View: s.viewLocked(now)}, nil
		}
		// Snapshot exists but does not fit: discard and start over.
		s.log.Warn().Err(resumeErr).Str("set_id", req.SetID).Msg("Snapshot rejected, starting fresh")
	} else if !errors.Is(err, snapshot.ErrNoSnapshot) {
		s.log.Warn().Err(err).Msg("Snapshot load failed, starting fresh")
	}

	view, err := s.startLocked(bank, req.SetID, req.Section, req.TimeLimitSeconds)
	if err != nil {
		return model.SessionStartedResponse{}, err
	}
	return model.SessionStartedResponse{Resumed: false, View: view}, nil
}

// View returns the current render snapshot, re-evaluating the clock.
func (s *SessionService) View() (model.ViewModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return model.ViewModel{}, ErrNoActiveSession
	}
	now := s.clock()
	s.tickLocked(now)
	return s.viewLocked(now), nil
}

// RecordAnswer selects an option for a question. A no-op after
// submission, per the state machine contract.
func (s *SessionService) RecordAnswer(req model.RecordAnswerRequest) (model.ViewModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return model.ViewModel{}, ErrNoActiveSession
	}
	now := s.clock()
	s.tickLocked(now)

	q, ok := s.byQnum[req.Qnum]
	if !ok {
		return model.ViewModel{}, fmt.Errorf("%w: qnum %d", ErrQuestionNotFound, req.Qnum)
	}

	st, err := s.state.RecordAnswer(q, req.OptionIndex)
	if err != nil {
		return model.ViewModel{}, err
	}
	s.state = &st
	s.persistLocked(now)
	return s.viewLocked(now), nil
}

// Previous moves back one question.
func (s *SessionService) Previous() (model.ViewModel, error) {
	return s.navigate(func(st session.State) (session.State, error) {
		return st.Previous(), nil
	})
}

// Next moves forward one question.
func (s *SessionService) Next() (model.ViewModel, error) {
	return s.navigate(func(st session.State) (session.State, error) {
		return st.Next(), nil
	})
}

// Jump moves directly to a navigation position.
func (s *SessionService) Jump(index int) (model.ViewModel, error) {
	return s.navigate(func(st session.State) (session.State, error) {
		return st.JumpTo(index)
	})
}

// Submit marks the session submitted and clears the persisted
// snapshot: a submitted session is never resumed.
func (s *SessionService) Submit() (model.ViewModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return model.ViewModel{}, ErrNoActiveSession
	}
	now := s.clock()
	s.tickLocked(now)

	if !s.state.Submitted {
		st := s.state.Submit()
		s.state = &st
		s.persist.Enqueue(worker.Job{}) // clear
		s.log.Info().Str("set_id", st.SetID).Msg("Session submitted")
	}
	return s.viewLocked(now), nil
}

// Results scores the submitted session against the full bank.
func (s *SessionService) Results() (session.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return session.Summary{}, ErrNoActiveSession
	}
	s.tickLocked(s.clock())
	if !s.state.Submitted {
		return session.Summary{}, ErrNotSubmitted
	}
	return s.state.Results(s.bank), nil
}

// ExportAnswers returns the archival answers map (qnum → selected
// option index or null).
func (s *SessionService) ExportAnswers() (map[string]*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, ErrNoActiveSession
	}
	return s.state.ExportAnswers(), nil
}

// Discard drops the active session and its persisted snapshot.
func (s *SessionService) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ErrNoActiveSession
	}
	s.log.Info().Str("set_id", s.state.SetID).Msg("Session discarded")
	s.state = nil
	s.bank = nil
	s.byQnum = nil
	s.persist.Enqueue(worker.Job{}) // clear
	return nil
}

// TimerTick re-evaluates the clock and returns one timer frame. This is
// the polling entry point for the WebSocket stream.
func (s *SessionService) TimerTick() (model.TickEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return model.TickEvent{}, ErrNoActiveSession
	}
	now := s.clock()
	t := s.tickLocked(now)
	return model.TickEvent{
		RemainingSeconds: int(t.Remaining.Seconds()),
		RemainingDisplay: session.FormatClock(t.Remaining),
		Submitted:        s.state.Submitted,
		TimedOutAtIndex:  s.state.TimedOutAt,
	}, nil
}

// ─── Internals ──────────────────────────────────────────────────────

func (s *SessionService) limitFor(seconds int) time.Duration {
	if seconds <= 0 {
		return s.defaultLimit
	}
	return time.Duration(seconds) * time.Second
}

func (s *SessionService) startLocked(bank []model.Question, setID, section string, limitSeconds int) (model.ViewModel, error) {
	order := repository.Order(bank, section)
	now := s.clock()

	st, err := session.Start(setID, order, s.limitFor(limitSeconds), now)
	if err != nil {
		return model.ViewModel{}, err
	}
	s.install(st, bank, section)
	s.persistLocked(now)
	s.log.Info().
		Str("set_id", setID).
		Str("section", section).
		Int("questions", len(order)).
		Msg("Session started")
	return s.viewLocked(now), nil
}

func (s *SessionService) install(st session.State, bank []model.Question, section string) {
	st.Section = section
	s.state = &st
	s.bank = bank
	s.byQnum = make(map[int]model.Question, len(bank))
	for i := range bank {
		s.byQnum[bank[i].Qnum] = bank[i]
	}
}

// navigate applies a position transition and persists the result.
func (s *SessionService) navigate(op func(session.State) (session.State, error)) (model.ViewModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return model.ViewModel{}, ErrNoActiveSession
	}
	now := s.clock()
	s.tickLocked(now)

	st, err := op(*s.state)
	if err != nil {
		return model.ViewModel{}, err
	}
	s.state = &st
	s.persistLocked(now)
	return s.viewLocked(now), nil
}

// tickLocked runs the time-driven transition. Called at the top of
// every operation, so timeout detection needs no timer of its own.
func (s *SessionService) tickLocked(now time.Time) session.Tick {
	st, t := s.state.Evaluate(now)
	s.state = &st
	if t.TimedOut {
		s.persist.Enqueue(worker.Job{}) // clear, same as explicit submit
		s.log.Info().
			Str("set_id", st.SetID).
			Int("position", st.Current).
			Msg("Time limit reached, session auto-submitted")
	}
	return t
}

// persistLocked enqueues the current snapshot. Submitted sessions are
// never persisted; their snapshot has already been cleared.
func (s *SessionService) persistLocked(now time.Time) {
	if s.state.Submitted {
		return
	}
	snap := s.state.Snapshot(now)
	s.persist.Enqueue(worker.Job{Snap: &snap})
}

func (s *SessionService) viewLocked(now time.Time) model.ViewModel {
	st := s.state
	remaining := st.Remaining(now)

	view := model.ViewModel{
		SetID:            st.SetID,
		Section:          st.Section,
		Position:         st.Current,
		Total:            len(st.Order),
		AnsweredCount:    s.answeredInOrder(),
		RemainingSeconds: int(remaining.Seconds()),
		RemainingDisplay: session.FormatClock(remaining),
		CanGoPrevious:    st.CanGoPrevious(),
		CanGoNext:        st.CanGoNext(),
		Submitted:        st.Submitted,
		TimedOutAtIndex:  st.TimedOutAt,
	}

	if q, ok := s.byQnum[st.CurrentQnum()]; ok {
		qv := model.ViewOf(q)
		view.Question = &qv
		if idx, answered := st.AnswerFor(q.Qnum); answered {
			v := idx
			view.SelectedOption = &v
		}
	}
	return view
}

// answeredInOrder counts answers within the navigation order, so the
// "answered N of M" display is consistent under a section filter.
func (s *SessionService) answeredInOrder() int {
	count := 0
	for _, qnum := range s.state.Order {
		if _, ok := s.state.Answers[qnum]; ok {
			count++
		}
	}
	return count
}

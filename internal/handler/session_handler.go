package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eatprep/cbt-player/internal/model"
	"github.com/eatprep/cbt-player/internal/repository"
	"github.com/eatprep/cbt-player/internal/response"
	"github.com/eatprep/cbt-player/internal/service"
	"github.com/eatprep/cbt-player/internal/session"
	"github.com/eatprep/cbt-player/internal/validator"
)

// SessionHandler exposes the exam session over HTTP. Every read runs a
// timer tick, so timeout detection needs nothing beyond the polling
// the presentation layer already does.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// ListSets godoc
// GET /api/v1/sets
// Lists the question sets available to start a session with.
func (h *SessionHandler) ListSets(c *gin.Context) {
	infos, err := h.sessionService.Sets(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	if infos == nil {
		infos = []model.SetInfo{}
	}
	response.Success(c, http.StatusOK, gin.H{"sets": infos})
}

// Start godoc
// POST /api/v1/session
// Starts a fresh session, superseding any active one.
func (h *SessionHandler) Start(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.Start(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// Resume godoc
// POST /api/v1/session/resume
// Restores the persisted session, or starts fresh when the snapshot is
// absent or unusable. The response says which happened.
func (h *SessionHandler) Resume(c *gin.Context) {
	var req model.ResumeSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.sessionService.Resume(c.Request.Context(), req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// View godoc
// GET /api/v1/session
// Returns the current render snapshot.
func (h *SessionHandler) View(c *gin.Context) {
	view, err := h.sessionService.View()
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// RecordAnswer godoc
// PUT /api/v1/session/answer
// Selects an option for a question.
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.RecordAnswer(req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Previous godoc
// POST /api/v1/session/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	view, err := h.sessionService.Previous()
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Next godoc
// POST /api/v1/session/next
func (h *SessionHandler) Next(c *gin.Context) {
	view, err := h.sessionService.Next()
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Jump godoc
// POST /api/v1/session/jump
// Moves directly to a navigation position.
func (h *SessionHandler) Jump(c *gin.Context) {
	var req model.JumpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.Jump(req.Index)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Submit godoc
// POST /api/v1/session/submit
// Marks the session submitted. Idempotent.
func (h *SessionHandler) Submit(c *gin.Context) {
	view, err := h.sessionService.Submit()
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Results godoc
// GET /api/v1/session/results
// Returns the scored summary and answer-key review of a submitted
// session.
func (h *SessionHandler) Results(c *gin.Context) {
	sum, err := h.sessionService.Results()
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}

// Export godoc
// GET /api/v1/session/export
// Downloads the answers map for archival or external grading.
func (h *SessionHandler) Export(c *gin.Context) {
	answers, err := h.sessionService.ExportAnswers()
	if err != nil {
		failFromError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="responses.json"`)
	c.JSON(http.StatusOK, answers)
}

// Discard godoc
// DELETE /api/v1/session
// Drops the session and its snapshot.
func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.sessionService.Discard(); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"discarded": true})
}

// failFromError maps service and core errors onto HTTP error codes.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSetNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSetNotFound)
	case errors.Is(err, service.ErrNoActiveSession):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	case errors.Is(err, service.ErrNotSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotSubmitted)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionNotFound)
	case errors.Is(err, session.ErrInvalidConfiguration):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidConfiguration)
	case errors.Is(err, session.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"finlit-service/internal/models"
	"finlit-service/internal/progression"
	"finlit-service/internal/service"
)

type SessionHandler struct {
	Service        *service.SessionService
	CatalogService *service.CatalogService
}

func NewSessionHandler(s *service.SessionService, cs *service.CatalogService) *SessionHandler {
	return &SessionHandler{
		Service:        s,
		CatalogService: cs,
	}
}

// StartSession creates a new lesson or exam attempt.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		TopicID    int    `json:"topic_id" binding:"required"`
		SubLevelID string `json:"sub_level_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	userID := c.GetHeader("X-User-ID")
	session, err := h.Service.StartSession(context.Background(), userID, req.TopicID, req.SubLevelID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubLevelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSubLevelLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, progression.ErrEmptyQuestionSet):
			c.JSON(http.StatusConflict, gin.H{"error": "No questions available for this level"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": redactUnrevealed(session),
		"label":   h.CatalogService.DisplayLabel(session.TopicID, session.SubLevelID),
	})
}

// GetSession retrieves the session snapshot.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(context.Background(), c.Param("id"), c.GetHeader("X-User-ID"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, redactUnrevealed(session))
}

// SubmitAnswer records one answer against the current question.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		SelectedIndex  *int `json:"selected_index" binding:"required"`
		ElapsedSeconds int  `json:"elapsed_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid answer format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.SubmitAnswer(
		context.Background(),
		c.Param("id"),
		c.GetHeader("X-User-ID"),
		*req.SelectedIndex,
		req.ElapsedSeconds,
	)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Advance moves to the next question or completes the session.
func (h *SessionHandler) Advance(c *gin.Context) {
	completion, session, err := h.Service.Advance(context.Background(), c.Param("id"), c.GetHeader("X-User-ID"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	response := gin.H{
		"state":         session.State,
		"current_index": session.CurrentIndex,
		"correct_count": session.CorrectCount,
		"total":         len(session.Questions),
	}
	if completion != nil {
		response["completion"] = completion
	}
	c.JSON(http.StatusOK, response)
}

// GetSessionStatus reports where the attempt stands.
func (h *SessionHandler) GetSessionStatus(c *gin.Context) {
	session, err := h.Service.GetSession(context.Background(), c.Param("id"), c.GetHeader("X-User-ID"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":    session.ID,
		"label":         h.CatalogService.DisplayLabel(session.TopicID, session.SubLevelID),
		"state":         session.State,
		"status":        session.Status,
		"current_index": session.CurrentIndex,
		"correct_count": session.CorrectCount,
		"total":         len(session.Questions),
		"is_exam":       session.IsExam,
		"xp_earned":     session.XPEarned,
	})
}

// PauseSession suspends the attempt, keeping the snapshot for resume.
func (h *SessionHandler) PauseSession(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.Service.PauseSession(context.Background(), c.Param("id"), c.GetHeader("X-User-ID"), req.Reason); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session paused"})
}

// ResumeSession reactivates a paused attempt.
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	session, err := h.Service.ResumeSession(context.Background(), c.Param("id"), c.GetHeader("X-User-ID"))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, redactUnrevealed(session))
}

// AbandonSession ends the attempt without recording a result.
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	if err := h.Service.AbandonSession(context.Background(), c.Param("id"), c.GetHeader("X-User-ID")); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}

// redactUnrevealed copies the snapshot with the correct indexes the learner
// has not earned yet replaced by -1. A question's index becomes visible once
// its answer is revealed; a completed session shows everything.
func redactUnrevealed(s *models.LearningSession) *models.LearningSession {
	out := *s
	out.Questions = make([]models.Question, len(s.Questions))
	copy(out.Questions, s.Questions)

	revealed := s.CurrentIndex
	if s.State == models.StateAwaitingAnswer {
		revealed--
	}
	for i := revealed + 1; i < len(out.Questions); i++ {
		out.Questions[i].CorrectIndex = -1
	}
	return &out
}

func (h *SessionHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrNotSessionOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another user"})
	case errors.Is(err, service.ErrSessionNotResumable), errors.Is(err, progression.ErrSessionComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

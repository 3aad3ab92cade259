package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finlit-service/internal/service"
)

type ProgressHandler struct {
	Service *service.ProgressService
}

func NewProgressHandler(s *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{Service: s}
}

// GetProgress returns the ledger with the derived level.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	summary := h.Service.GetProgress(context.Background(), c.GetHeader("X-User-ID"))
	c.JSON(http.StatusOK, summary)
}

// GetUnlocks returns every sublevel with its gate evaluated for the caller.
func (h *ProgressHandler) GetUnlocks(c *gin.Context) {
	topics := h.Service.Unlocks(context.Background(), c.GetHeader("X-User-ID"))
	c.JSON(http.StatusOK, topics)
}

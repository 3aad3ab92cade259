package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finlit-service/internal/service"
)

type CatalogHandler struct {
	Service *service.CatalogService
}

func NewCatalogHandler(s *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

func (h *CatalogHandler) ListTopics(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Topics())
}

func (h *CatalogHandler) GetTopic(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("topicId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic id"})
		return
	}
	topic, ok := h.Service.Topic(topicID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *CatalogHandler) GetSubLevel(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("topicId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic id"})
		return
	}
	subLevelID := c.Param("subLevelId")

	sub, ok := h.Service.SubLevel(topicID, subLevelID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sublevel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sub_level": sub,
		"label":     h.Service.DisplayLabel(topicID, subLevelID),
	})
}

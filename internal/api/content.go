package api

import (
	"net/http"

	"mindmate/backend/internal/models"
	"mindmate/backend/internal/service"
	"mindmate/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ContentHandler handles pre-scripted content thread requests
type ContentHandler struct {
	service *service.ContentService
	logger  *logger.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(service *service.ContentService, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{service: service, logger: logger}
}

// ListContents returns all published content threads
func (h *ContentHandler) ListContents(c *gin.Context) {
	contents, err := h.service.ListContents()
	if err != nil {
		h.logger.Error("Error listing contents", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contents": contents})
}

// GetContentMessages returns a content thread's ordered lines
func (h *ContentHandler) GetContentMessages(c *gin.Context) {
	contentID, ok := parseIDParam(c, "contentId")
	if !ok {
		return
	}

	messages, err := h.service.GetContentMessages(contentID)
	if err != nil {
		switch err {
		case service.ErrContentNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		default:
			h.logger.Error("Error getting content messages", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve content messages"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// RecordParticipation stores one user's result for a content thread
func (h *ContentHandler) RecordParticipation(c *gin.Context) {
	var req models.RecordParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	participation, err := h.service.RecordParticipation(&req)
	if err != nil {
		switch err {
		case service.ErrContentNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		default:
			h.logger.Error("Error recording participation", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record participation"})
		}
		return
	}

	c.JSON(http.StatusCreated, participation)
}

// GetUserParticipations lists a user's content participation history
func (h *ContentHandler) GetUserParticipations(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	participations, err := h.service.GetUserParticipations(userID)
	if err != nil {
		h.logger.Error("Error listing participations", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list participations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participations": participations})
}

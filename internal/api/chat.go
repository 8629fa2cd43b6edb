package api

import (
	"net/http"

	"mindmate/backend/internal/service"
	"mindmate/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TurnRequestBody is the wire form of one chat turn. session_id zero or
// absent starts a new session, which requires user_id and character_id.
type TurnRequestBody struct {
	SessionID   uint   `json:"session_id"`
	UserInput   string `json:"user_input"`
	IsWorkflow  bool   `json:"is_workflow"`
	CharacterID uint   `json:"character_id"`
	UserID      uint   `json:"user_id"`
	Topic       string `json:"topic"`
}

// ChatHandler handles the chat turn and session query endpoints
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// PostTurn runs one chat turn and returns the model's reply
func (h *ChatHandler) PostTurn(c *gin.Context) {
	var body TurnRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn("Error binding JSON for chat turn", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.service.PostTurn(c.Request.Context(), &service.TurnRequest{
		SessionID:   body.SessionID,
		UserInput:   body.UserInput,
		IsWorkflow:  body.IsWorkflow,
		CharacterID: body.CharacterID,
		UserID:      body.UserID,
		Topic:       body.Topic,
	})
	if err != nil {
		switch {
		case err == service.ErrSessionFieldsRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and character_id are required to start a session"})
		case err == service.ErrUserInputRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_input is required"})
		case err == service.ErrInvalidTopic:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown topic"})
		case err == service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case err == service.ErrCharacterNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		case service.IsUpstream(err):
			h.logger.Error("Completion service failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "The completion service is unavailable"})
		default:
			h.logger.Error("Error running chat turn", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run chat turn"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":    result.Response,
		"session_id":  result.SessionID,
		"is_workflow": result.IsWorkflow,
	})
}

// ListUserSessions returns a user's sessions, most recently active first
func (h *ChatHandler) ListUserSessions(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	sessions, err := h.service.ListUserSessions(c.Request.Context(), userID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			h.logger.Error("Error listing sessions", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ListSessionMessages returns a session's full ordered transcript
func (h *ChatHandler) ListSessionMessages(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	messages, err := h.service.ListSessionMessages(c.Request.Context(), sessionID)
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		default:
			h.logger.Error("Error listing messages", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

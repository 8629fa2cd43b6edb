package api

import (
	"net/http"

	"mindmate/backend/internal/models"
	"mindmate/backend/internal/service"
	"mindmate/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CharacterHandler handles character persona requests
type CharacterHandler struct {
	service *service.CharacterService
	logger  *logger.Logger
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(service *service.CharacterService, logger *logger.Logger) *CharacterHandler {
	return &CharacterHandler{service: service, logger: logger}
}

// CreateCharacter registers a new character persona
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	character, err := h.service.CreateCharacter(&req)
	if err != nil {
		h.logger.Error("Error creating character", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, character)
}

// GetCharacter returns one character persona
func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	characterID, ok := parseIDParam(c, "characterId")
	if !ok {
		return
	}

	character, err := h.service.GetCharacter(characterID)
	if err != nil {
		switch err {
		case service.ErrCharacterNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Character not found"})
		default:
			h.logger.Error("Error getting character", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve character"})
		}
		return
	}

	c.JSON(http.StatusOK, character)
}

// ListCharacters returns all character personas
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	characters, err := h.service.ListCharacters()
	if err != nil {
		h.logger.Error("Error listing characters", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list characters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"characters": characters})
}

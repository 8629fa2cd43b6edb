package models

import (
	"time"
)

// Character is a named persona with the system-prompt text that shapes every
// completion issued on its behalf. Read-only from the orchestrator's side.
type Character struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;uniqueIndex" json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `gorm:"not null;type:text" json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCharacterRequest is the request structure for creating a character
type CreateCharacterRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
}

package models

import (
	"time"
)

// Content is a pre-scripted thread published for a character, independent of
// live chat sessions.
type Content struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CharacterID uint      `gorm:"index" json:"character_id"`
	Title       string    `gorm:"size:50;not null" json:"title"`
	CreatedAt   time.Time `json:"created_at"`

	Messages []ContentMessage `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ContentMessage is one ordered line of a content thread
type ContentMessage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ContentID uint   `gorm:"index;index:idx_content_messages_content_ord" json:"content_id"`
	Content   string `gorm:"type:text" json:"message"`
	Ord       int    `gorm:"index:idx_content_messages_content_ord" json:"order"`
}

// ContentParticipation records one user's run through a content thread
type ContentParticipation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	ContentID uint      `gorm:"index" json:"content_id"`
	Time      time.Time `json:"time"`
	Result    string    `gorm:"type:text" json:"result"`
}

// RecordParticipationRequest is the request structure for storing a
// participation result
type RecordParticipationRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	ContentID uint   `json:"content_id" binding:"required"`
	Result    string `json:"result" binding:"required"`
}

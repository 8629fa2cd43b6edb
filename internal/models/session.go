package models

import (
	"time"
)

// Conversation topics. The set is closed; TopicNone is the default for
// sessions started without an explicit topic.
const (
	TopicEmotionRegulation      = "EmotionRegulation"
	TopicDecisionMaking         = "DecisionMaking"
	TopicCommunication          = "Communication"
	TopicSelfAwareness          = "SelfAwareness"
	TopicMotivationProductivity = "MotivationProductivity"
	TopicLearningStrategy       = "LearningStrategy"
	TopicNone                   = "None"
)

var topics = map[string]bool{
	TopicEmotionRegulation:      true,
	TopicDecisionMaking:         true,
	TopicCommunication:          true,
	TopicSelfAwareness:          true,
	TopicMotivationProductivity: true,
	TopicLearningStrategy:       true,
	TopicNone:                   true,
}

// IsValidTopic reports whether topic belongs to the closed topic enumeration
func IsValidTopic(topic string) bool {
	return topics[topic]
}

// Message sender roles. The model side of an exchange is always "model",
// matching the role names the completion API replays history with.
const (
	SenderUser  = "user"
	SenderModel = "model"
)

// ChatSession identifies one conversation thread between a user and a
// character. The session owns its messages; deleting it cascades to them.
type ChatSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;index:idx_sessions_user_character" json:"user_id"`
	CharacterID uint      `gorm:"index;index:idx_sessions_user_character" json:"character_id"`
	Topic       string    `gorm:"size:30;default:None" json:"topic"`
	Summary     string    `gorm:"size:255" json:"summary"`
	IsWorkflow  bool      `gorm:"default:false" json:"is_workflow"`
	StartTime   time.Time `json:"start_time"`
	LastActive  time.Time `gorm:"index" json:"time"`

	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Message is one utterance belonging to exactly one session. Ord is the
// strictly increasing per-session order, starting at 0; it is the sole
// sequencing authority - timestamps are never used for replay order.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"index;index:idx_messages_session_ord" json:"session"`
	Sender    string    `gorm:"size:10" json:"sender"`
	Content   string    `gorm:"type:text" json:"message"`
	Ord       int       `gorm:"index:idx_messages_session_ord" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is the wire shape for one entry of a user's session list
type SessionResponse struct {
	ID          uint      `json:"id"`
	CharacterID uint      `json:"character"`
	UserID      uint      `json:"user"`
	Summary     string    `json:"summary"`
	Topic       string    `json:"topic"`
	IsWorkflow  bool      `json:"is_workflow"`
	Time        time.Time `json:"time"`
}

// ToResponse converts a ChatSession to its list representation
func (s *ChatSession) ToResponse() SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		CharacterID: s.CharacterID,
		UserID:      s.UserID,
		Summary:     s.Summary,
		Topic:       s.Topic,
		IsWorkflow:  s.IsWorkflow,
		Time:        s.LastActive,
	}
}

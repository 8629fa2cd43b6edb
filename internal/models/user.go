package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Activation-time buckets describing when a user is usually active.
const (
	ActivationMorning   = "morning"
	ActivationAfternoon = "afternoon"
	ActivationEvening   = "evening"
	ActivationDawn      = "dawn"
)

// UserProfile represents a registered user together with the preference
// attributes the characters use to tailor their responses.
type UserProfile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"uniqueIndex" json:"email"`
	Password      string    `json:"-"` // Never return password in JSON
	Country       string    `json:"country"`
	BirthDate     time.Time `json:"birth_date"`
	MainCharacter string    `json:"main_character"`

	ActivationTime string `json:"activation_time"`

	// Personality-axis scores, 0-100 each
	IE uint8 `gorm:"column:i_e" json:"i_e"`
	NS uint8 `gorm:"column:n_s" json:"n_s"`
	TF uint8 `gorm:"column:t_f" json:"t_f"`
	PJ uint8 `gorm:"column:p_j" json:"p_j"`

	// Per-character conversation counters
	AileeChatCount uint `gorm:"default:0" json:"ailee_chat_count"`
	JoonChatCount  uint `gorm:"default:0" json:"joon_chat_count"`
	NickChatCount  uint `gorm:"default:0" json:"nick_chat_count"`
	ChadChatCount  uint `gorm:"default:0" json:"chad_chat_count"`
	RinChatCount   uint `gorm:"default:0" json:"rin_chat_count"`

	// Per-topic conversation counters
	EmotionCount    uint `gorm:"default:0" json:"emotion_count"`
	DecisionCount   uint `gorm:"default:0" json:"decision_count"`
	SocialCount     uint `gorm:"default:0" json:"social_count"`
	IdentityCount   uint `gorm:"default:0" json:"identity_count"`
	MotivationCount uint `gorm:"default:0" json:"motivation_count"`
	LearningCount   uint `gorm:"default:0" json:"learning_count"`

	Following []*UserProfile `gorm:"many2many:user_followings" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the request structure for creating a new user profile
type CreateUserRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Country        string `json:"country"`
	BirthDate      string `json:"birth_date"`
	MainCharacter  string `json:"main_character"`
	ActivationTime string `json:"activation_time"`
	IE             uint8  `json:"i_e" binding:"max=100"`
	NS             uint8  `json:"n_s" binding:"max=100"`
	TF             uint8  `json:"t_f" binding:"max=100"`
	PJ             uint8  `json:"p_j" binding:"max=100"`
}

// UpdateUserRequest carries the mutable profile fields; nil pointers are
// left untouched
type UpdateUserRequest struct {
	Name           *string `json:"name"`
	Country        *string `json:"country"`
	MainCharacter  *string `json:"main_character"`
	ActivationTime *string `json:"activation_time"`
	IE             *uint8  `json:"i_e" binding:"omitempty,max=100"`
	NS             *uint8  `json:"n_s" binding:"omitempty,max=100"`
	TF             *uint8  `json:"t_f" binding:"omitempty,max=100"`
	PJ             *uint8  `json:"p_j" binding:"omitempty,max=100"`
}

// LoginRequest is the request structure for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the response structure for user data (without credentials)
type UserResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Country        string    `json:"country"`
	BirthDate      time.Time `json:"birth_date"`
	MainCharacter  string    `json:"main_character"`
	ActivationTime string    `json:"activation_time"`
	IE             uint8     `json:"i_e"`
	NS             uint8     `json:"n_s"`
	TF             uint8     `json:"t_f"`
	PJ             uint8     `json:"p_j"`

	ChatCounts  map[string]uint `json:"chat_counts"`
	TopicCounts map[string]uint `json:"topic_counts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var chatCountColumns = map[string]string{
	"Ailee": "ailee_chat_count",
	"Joon":  "joon_chat_count",
	"Nick":  "nick_chat_count",
	"Chad":  "chad_chat_count",
	"Rin":   "rin_chat_count",
}

var topicCountColumns = map[string]string{
	TopicEmotionRegulation:      "emotion_count",
	TopicDecisionMaking:         "decision_count",
	TopicCommunication:          "social_count",
	TopicSelfAwareness:          "identity_count",
	TopicMotivationProductivity: "motivation_count",
	TopicLearningStrategy:       "learning_count",
}

// ChatCountColumn maps a character name to its per-user conversation
// counter column. Unknown characters have no counter.
func ChatCountColumn(characterName string) (string, bool) {
	col, ok := chatCountColumns[characterName]
	return col, ok
}

// TopicCountColumn maps a topic to its per-user counter column. TopicNone
// has no counter.
func TopicCountColumn(topic string) (string, bool) {
	col, ok := topicCountColumns[topic]
	return col, ok
}

// HashPassword hashes a password for storage
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash. bcrypt's comparison
// runs in constant time.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ToResponse converts a UserProfile to a UserResponse
func (u *UserProfile) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Country:        u.Country,
		BirthDate:      u.BirthDate,
		MainCharacter:  u.MainCharacter,
		ActivationTime: u.ActivationTime,
		IE:             u.IE,
		NS:             u.NS,
		TF:             u.TF,
		PJ:             u.PJ,
		ChatCounts: map[string]uint{
			"Ailee": u.AileeChatCount,
			"Joon":  u.JoonChatCount,
			"Nick":  u.NickChatCount,
			"Chad":  u.ChadChatCount,
			"Rin":   u.RinChatCount,
		},
		TopicCounts: map[string]uint{
			TopicEmotionRegulation:      u.EmotionCount,
			TopicDecisionMaking:         u.DecisionCount,
			TopicCommunication:          u.SocialCount,
			TopicSelfAwareness:          u.IdentityCount,
			TopicMotivationProductivity: u.MotivationCount,
			TopicLearningStrategy:       u.LearningCount,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

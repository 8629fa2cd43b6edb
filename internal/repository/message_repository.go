package repository

import (
	"mindmate/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository persists the ordered turns belonging to sessions.
// AppendTurn is the only write path; it assigns orders inside a transaction
// so two concurrent turns against one session cannot collide.
type MessageRepository interface {
	GetBySession(sessionID uint) ([]models.Message, error)
	LastOrder(sessionID uint) (int, error)
	AppendTurn(sessionID uint, userContent, modelContent string) (userOrder int, err error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// GetBySession returns a session's messages ordered by their per-session
// sequence number ascending
func (r *GormMessageRepository) GetBySession(sessionID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Where("session_id = ?", sessionID).
		Order("ord ASC").
		Find(&messages).Error
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, err
}

// LastOrder returns the highest order in the session, or -1 when the session
// has no messages yet
func (r *GormMessageRepository) LastOrder(sessionID uint) (int, error) {
	return lastOrder(r.db, sessionID)
}

func lastOrder(tx *gorm.DB, sessionID uint) (int, error) {
	var last int
	err := tx.Model(&models.Message{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(ord), -1)").
		Scan(&last).Error
	return last, err
}

// AppendTurn writes the user utterance and the model reply as one unit. The
// session row is locked for the duration of the transaction, then the next
// two orders are assigned from the actual maximum, so orders stay gapless
// even when turns race.
func (r *GormMessageRepository) AppendTurn(sessionID uint, userContent, modelContent string) (int, error) {
	var userOrder int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var session models.ChatSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, sessionID).Error; err != nil {
			return err
		}

		last, err := lastOrder(tx, sessionID)
		if err != nil {
			return err
		}
		userOrder = last + 1

		turn := []models.Message{
			{SessionID: sessionID, Sender: models.SenderUser, Content: userContent, Ord: userOrder},
			{SessionID: sessionID, Sender: models.SenderModel, Content: modelContent, Ord: userOrder + 1},
		}
		return tx.Create(&turn).Error
	})
	return userOrder, err
}

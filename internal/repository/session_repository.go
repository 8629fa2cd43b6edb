package repository

import (
	"time"

	"mindmate/backend/internal/models"

	"gorm.io/gorm"
)

// SessionRepository persists chat sessions
type SessionRepository interface {
	Create(session *models.ChatSession) error
	GetByID(id uint) (*models.ChatSession, error)
	GetByUser(userID uint) ([]models.ChatSession, error)
	Update(session *models.ChatSession) error
	Touch(id uint, at time.Time) error
	SetSummary(id uint, summary string) error
	SetWorkflow(id uint, isWorkflow bool) error
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(session *models.ChatSession) error {
	return r.db.Create(session).Error
}

func (r *GormSessionRepository) GetByID(id uint) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByUser returns a user's sessions ordered by most recent activity first
func (r *GormSessionRepository) GetByUser(userID uint) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.Where("user_id = ?", userID).
		Order("last_active DESC").
		Find(&sessions).Error
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	return sessions, err
}

func (r *GormSessionRepository) Update(session *models.ChatSession) error {
	return r.db.Save(session).Error
}

func (r *GormSessionRepository) Touch(id uint, at time.Time) error {
	return r.db.Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("last_active", at).Error
}

func (r *GormSessionRepository) SetSummary(id uint, summary string) error {
	return r.db.Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("summary", summary).Error
}

func (r *GormSessionRepository) SetWorkflow(id uint, isWorkflow bool) error {
	return r.db.Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("is_workflow", isWorkflow).Error
}

package repository

import (
	"mindmate/backend/internal/models"

	"gorm.io/gorm"
)

// ContentRepository persists pre-scripted content threads and the per-user
// participation results
type ContentRepository interface {
	GetAll() ([]models.Content, error)
	GetByID(id uint) (*models.Content, error)
	GetMessages(contentID uint) ([]models.ContentMessage, error)
	RecordParticipation(p *models.ContentParticipation) error
	GetParticipations(userID uint) ([]models.ContentParticipation, error)
}

type GormContentRepository struct {
	db *gorm.DB
}

func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

func (r *GormContentRepository) GetAll() ([]models.Content, error) {
	var contents []models.Content
	err := r.db.Find(&contents).Error
	if contents == nil {
		contents = []models.Content{}
	}
	return contents, err
}

func (r *GormContentRepository) GetByID(id uint) (*models.Content, error) {
	var content models.Content
	err := r.db.First(&content, id).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *GormContentRepository) GetMessages(contentID uint) ([]models.ContentMessage, error) {
	var messages []models.ContentMessage
	err := r.db.Where("content_id = ?", contentID).
		Order("ord ASC").
		Find(&messages).Error
	if messages == nil {
		messages = []models.ContentMessage{}
	}
	return messages, err
}

func (r *GormContentRepository) RecordParticipation(p *models.ContentParticipation) error {
	return r.db.Create(p).Error
}

func (r *GormContentRepository) GetParticipations(userID uint) ([]models.ContentParticipation, error) {
	var participations []models.ContentParticipation
	err := r.db.Where("user_id = ?", userID).
		Order("time DESC").
		Find(&participations).Error
	if participations == nil {
		participations = []models.ContentParticipation{}
	}
	return participations, err
}

package service

import (
	"errors"
	"time"

	"mindmate/backend/internal/models"
	"mindmate/backend/internal/repository"

	"gorm.io/gorm"
)

// ContentService exposes the pre-scripted content threads and stores
// per-user participation results
type ContentService struct {
	repo repository.ContentRepository
}

func NewContentService(repo repository.ContentRepository) *ContentService {
	return &ContentService{repo: repo}
}

func (s *ContentService) ListContents() ([]models.Content, error) {
	return s.repo.GetAll()
}

func (s *ContentService) GetContentMessages(contentID uint) ([]models.ContentMessage, error) {
	if _, err := s.repo.GetByID(contentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return s.repo.GetMessages(contentID)
}

func (s *ContentService) RecordParticipation(req *models.RecordParticipationRequest) (*models.ContentParticipation, error) {
	if _, err := s.repo.GetByID(req.ContentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}

	participation := &models.ContentParticipation{
		UserID:    req.UserID,
		ContentID: req.ContentID,
		Time:      time.Now(),
		Result:    req.Result,
	}
	if err := s.repo.RecordParticipation(participation); err != nil {
		return nil, err
	}
	return participation, nil
}

func (s *ContentService) GetUserParticipations(userID uint) ([]models.ContentParticipation, error) {
	return s.repo.GetParticipations(userID)
}

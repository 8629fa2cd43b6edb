package service

import (
	"errors"
	"fmt"

	"mindmate/backend/internal/models"
	"mindmate/backend/internal/repository"
	"mindmate/backend/pkg/cache"

	"gorm.io/gorm"
)

// CharacterService handles character persona operations. Personas are
// read-heavy and effectively immutable, so lookups go through an in-memory
// TTL cache.
type CharacterService struct {
	repo  repository.CharacterRepository
	cache *cache.Cache
}

// NewCharacterService creates a new character service. The cache may be nil
// to disable caching.
func NewCharacterService(repo repository.CharacterRepository, c *cache.Cache) *CharacterService {
	return &CharacterService{repo: repo, cache: c}
}

// CreateCharacter creates a new character persona
func (s *CharacterService) CreateCharacter(req *models.CreateCharacterRequest) (*models.Character, error) {
	if req.Name == "" {
		return nil, errors.New("character name is required")
	}
	if req.SystemPrompt == "" {
		return nil, errors.New("character system prompt is required")
	}

	character := &models.Character{
		Name:         req.Name,
		Description:  req.Description,
		SystemPrompt: req.SystemPrompt,
	}

	if err := s.repo.Create(character); err != nil {
		return nil, err
	}

	return character, nil
}

// GetCharacter retrieves a character by ID
func (s *CharacterService) GetCharacter(id uint) (*models.Character, error) {
	key := fmt.Sprintf("character:%d", id)
	if s.cache != nil {
		if v, found := s.cache.Get(key); found {
			return v.(*models.Character), nil
		}
	}

	character, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, character)
	}

	return character, nil
}

// ListCharacters returns all character personas
func (s *CharacterService) ListCharacters() ([]models.Character, error) {
	return s.repo.GetAll()
}

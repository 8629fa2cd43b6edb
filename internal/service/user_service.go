package service

import (
	"errors"
	"time"

	"mindmate/backend/internal/models"
	"mindmate/backend/internal/repository"
	"mindmate/backend/pkg/jwt"

	"gorm.io/gorm"
)

// UserService handles user profile and authentication operations
type UserService struct {
	repo       repository.UserRepository
	jwtService *jwt.Service
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository, jwtService *jwt.Service) *UserService {
	return &UserService{repo: repo, jwtService: jwtService}
}

// CreateUser creates a new user profile with a hashed password and returns
// it together with a signed token
func (s *UserService) CreateUser(req *models.CreateUserRequest) (*models.UserProfile, string, error) {
	if _, err := s.repo.GetByEmail(req.Email); err == nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashed, err := models.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.UserProfile{
		Name:           req.Name,
		Email:          req.Email,
		Password:       hashed,
		Country:        req.Country,
		MainCharacter:  req.MainCharacter,
		ActivationTime: req.ActivationTime,
		IE:             req.IE,
		NS:             req.NS,
		TF:             req.TF,
		PJ:             req.PJ,
	}

	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, "", errors.New("birth_date must be formatted as YYYY-MM-DD")
		}
		user.BirthDate = birthDate
	}

	if err := s.repo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login authenticates a user and returns a signed token
func (s *UserService) Login(req *models.LoginRequest) (*models.UserProfile, string, error) {
	user, err := s.repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByID retrieves a user profile by ID
func (s *UserService) GetUserByID(id uint) (*models.UserProfile, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser applies the non-nil fields of req to the stored profile
func (s *UserService) UpdateUser(id uint, req *models.UpdateUserRequest) (*models.UserProfile, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.MainCharacter != nil {
		user.MainCharacter = *req.MainCharacter
	}
	if req.ActivationTime != nil {
		user.ActivationTime = *req.ActivationTime
	}
	if req.IE != nil {
		user.IE = *req.IE
	}
	if req.NS != nil {
		user.NS = *req.NS
	}
	if req.TF != nil {
		user.TF = *req.TF
	}
	if req.PJ != nil {
		user.PJ = *req.PJ
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Follow makes follower follow followee
func (s *UserService) Follow(followerID, followeeID uint) error {
	follower, err := s.GetUserByID(followerID)
	if err != nil {
		return err
	}
	followee, err := s.GetUserByID(followeeID)
	if err != nil {
		return err
	}
	return s.repo.Follow(follower, followee)
}

// Unfollow removes followee from follower's following set
func (s *UserService) Unfollow(followerID, followeeID uint) error {
	follower, err := s.GetUserByID(followerID)
	if err != nil {
		return err
	}
	followee, err := s.GetUserByID(followeeID)
	if err != nil {
		return err
	}
	return s.repo.Unfollow(follower, followee)
}

// GetFollowing lists the profiles a user follows
func (s *UserService) GetFollowing(userID uint) ([]models.UserProfile, error) {
	if _, err := s.GetUserByID(userID); err != nil {
		return nil, err
	}
	return s.repo.GetFollowing(userID)
}

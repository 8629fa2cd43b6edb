package repository

import (
	"mindmate/backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository persists user profiles and the following relation
type UserRepository interface {
	Create(user *models.UserProfile) error
	GetByID(id uint) (*models.UserProfile, error)
	GetByEmail(email string) (*models.UserProfile, error)
	Update(user *models.UserProfile) error
	Follow(follower, followee *models.UserProfile) error
	Unfollow(follower, followee *models.UserProfile) error
	GetFollowing(userID uint) ([]models.UserProfile, error)
	IncrementSessionCounters(userID uint, characterName, topic string) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.UserProfile) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) GetByID(id uint) (*models.UserProfile, error) {
	var user models.UserProfile
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(email string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Update(user *models.UserProfile) error {
	return r.db.Save(user).Error
}

func (r *GormUserRepository) Follow(follower, followee *models.UserProfile) error {
	return r.db.Model(follower).Association("Following").Append(followee)
}

func (r *GormUserRepository) Unfollow(follower, followee *models.UserProfile) error {
	return r.db.Model(follower).Association("Following").Delete(followee)
}

// IncrementSessionCounters bumps the per-character and per-topic usage
// counters a new session contributes to. Characters or topics without a
// counter column are skipped.
func (r *GormUserRepository) IncrementSessionCounters(userID uint, characterName, topic string) error {
	updates := map[string]interface{}{}
	if col, ok := models.ChatCountColumn(characterName); ok {
		updates[col] = gorm.Expr(col + " + 1")
	}
	if col, ok := models.TopicCountColumn(topic); ok {
		updates[col] = gorm.Expr(col + " + 1")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.UserProfile{}).
		Where("id = ?", userID).
		Updates(updates).Error
}

func (r *GormUserRepository) GetFollowing(userID uint) ([]models.UserProfile, error) {
	user := models.UserProfile{ID: userID}
	var following []models.UserProfile
	err := r.db.Model(&user).Association("Following").Find(&following)
	if following == nil {
		following = []models.UserProfile{}
	}
	return following, err
}

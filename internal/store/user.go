package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ideahub/ideas-hub/internal/models"
)

// UserStore defines user data operations
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByUsername looks up a local account. Federated accounts carry a
	// display name, not a username, and may collide with anything.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// UpsertGoogle creates the user at first federated login and reuses the
	// existing record on subsequent logins, keyed by the Google account id.
	UpsertGoogle(ctx context.Context, googleID, name, email string) (*models.User, error)
	TouchLogin(ctx context.Context, id uint) error
}

type userStore struct {
	db *gorm.DB
}

// NewUserStore creates a GORM-backed user store
func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (s *userStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? AND auth_method = ?", username, models.AuthMethodLocal).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *userStore) UpsertGoogle(ctx context.Context, googleID, name, email string) (*models.User, error) {
	now := time.Now()

	var user models.User
	err := s.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username:    name,
			AuthMethod:  models.AuthMethodGoogle,
			GoogleID:    googleID,
			Email:       email,
			LastLoginAt: &now,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"username":      name,
		"email":         email,
		"last_login_at": now,
	}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) TouchLogin(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", now).Error
}

package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/ideahub/ideas-hub/internal/models"
)

// BrainstormStore persists AI brainstorming sessions
type BrainstormStore interface {
	Save(ctx context.Context, session *models.BrainstormSession) error
	Recent(ctx context.Context, ownerID uint, limit int) ([]models.BrainstormSession, error)
}

type brainstormStore struct {
	db *gorm.DB
}

// NewBrainstormStore creates a GORM-backed brainstorm session store
func NewBrainstormStore(db *gorm.DB) BrainstormStore {
	return &brainstormStore{db: db}
}

func (s *brainstormStore) Save(ctx context.Context, session *models.BrainstormSession) error {
	if session.Category == "" {
		session.Category = models.DefaultCategory
	}
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *brainstormStore) Recent(ctx context.Context, ownerID uint, limit int) ([]models.BrainstormSession, error) {
	if limit <= 0 {
		limit = 5
	}
	var sessions []models.BrainstormSession
	err := s.db.WithContext(ctx).Where("user_id = ?", ownerID).
		Order("created_at DESC").Limit(limit).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

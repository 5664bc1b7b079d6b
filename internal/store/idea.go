package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ideahub/ideas-hub/internal/models"
)

// IdeaUpdate carries the replaceable fields of an idea for Replace.
type IdeaUpdate struct {
	Title          string
	Description    string
	Category       string
	Status         string
	YouTubeVideoID string
}

// StatusCount is one row of the per-status tally on the global dashboard.
type StatusCount struct {
	Status string
	Count  int64
}

// IdeaStore defines owner-scoped idea data operations
type IdeaStore interface {
	List(ctx context.Context, ownerID uint, filter IdeaFilter) ([]models.Idea, error)
	Get(ctx context.Context, id, ownerID uint) (*models.Idea, error)
	Create(ctx context.Context, idea *models.Idea) error
	Replace(ctx context.Context, id, ownerID uint, update IdeaUpdate) error
	SetChannelID(ctx context.Context, id, ownerID uint, channelID string) error
	Delete(ctx context.Context, id, ownerID uint) error
	DistinctChannelIDs(ctx context.Context, ownerID uint) ([]string, error)
	CountByStatus(ctx context.Context, ownerID uint) (map[string]int64, error)
}

type ideaStore struct {
	db *gorm.DB
}

// NewIdeaStore creates a GORM-backed idea store
func NewIdeaStore(db *gorm.DB) IdeaStore {
	return &ideaStore{db: db}
}

func (s *ideaStore) List(ctx context.Context, ownerID uint, filter IdeaFilter) ([]models.Idea, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", ownerID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		// LOWER on both sides keeps the match case-insensitive on Postgres
		// and SQLite alike.
		q = q.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}

	var ideas []models.Idea
	if err := q.Order("created_at DESC").Find(&ideas).Error; err != nil {
		return nil, err
	}
	return ideas, nil
}

func (s *ideaStore) Get(ctx context.Context, id, ownerID uint) (*models.Idea, error) {
	var idea models.Idea
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&idea).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &idea, nil
}

func (s *ideaStore) Create(ctx context.Context, idea *models.Idea) error {
	if idea.Category == "" {
		idea.Category = models.DefaultCategory
	}
	if idea.Status == "" {
		idea.Status = models.DefaultStatus
	}
	return s.db.WithContext(ctx).Create(idea).Error
}

func (s *ideaStore) Replace(ctx context.Context, id, ownerID uint, update IdeaUpdate) error {
	category := update.Category
	if category == "" {
		category = models.DefaultCategory
	}
	status := update.Status
	if status == "" {
		status = models.DefaultStatus
	}

	result := s.db.WithContext(ctx).Model(&models.Idea{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"title":            update.Title,
			"description":      update.Description,
			"category":         category,
			"status":           status,
			"youtube_video_id": update.YouTubeVideoID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ideaStore) SetChannelID(ctx context.Context, id, ownerID uint, channelID string) error {
	result := s.db.WithContext(ctx).Model(&models.Idea{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("youtube_channel_id", channelID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ideaStore) Delete(ctx context.Context, id, ownerID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Idea{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ideaStore) DistinctChannelIDs(ctx context.Context, ownerID uint) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Idea{}).
		Where("user_id = ? AND youtube_channel_id <> ''", ownerID).
		Distinct().
		Pluck("youtube_channel_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ideaStore) CountByStatus(ctx context.Context, ownerID uint) (map[string]int64, error) {
	var rows []StatusCount
	err := s.db.WithContext(ctx).Model(&models.Idea{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

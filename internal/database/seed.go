package database

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ideahub/ideas-hub/internal/models"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB, logger *slog.Logger) error {
	var existingUser models.User
	result := db.Where("username = ?", "dev").First(&existingUser)
	if result.Error == nil {
		logger.Info("Seed data already exists, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     "dev",
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodLocal,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	ideas := []models.Idea{
		{
			UserID:      user.ID,
			Title:       "Channel trailer refresh",
			Description: "Re-cut the channel trailer around the three most-watched uploads.",
			Category:    "YouTube",
			Status:      "Draft",
		},
		{
			UserID:      user.ID,
			Title:       "Weekly devlog series",
			Description: "Short weekly progress updates, five minutes max.",
			Category:    "General",
			Status:      "In Progress",
		},
	}
	for i := range ideas {
		if err := db.Create(&ideas[i]).Error; err != nil {
			return err
		}
	}

	logger.Info("Seeded development data", "username", user.Username, "ideas", len(ideas))
	return nil
}

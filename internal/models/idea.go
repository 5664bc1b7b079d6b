package models

import (
	"gorm.io/gorm"
)

// Idea defaults
const (
	DefaultCategory = "General"
	DefaultStatus   = "Draft"
)

// Idea represents one content idea owned by a user. The YouTube identifiers
// are optional: the channel id is resolved at creation time when the category
// mentions YouTube, the video id is settable only via edit.
type Idea struct {
	gorm.Model
	UserID           uint   `gorm:"not null;index"`
	User             User   `gorm:"constraint:OnDelete:CASCADE;"`
	Title            string `gorm:"not null"`
	Description      string `gorm:"not null;type:text"`
	Category         string `gorm:"not null;default:'General'"`
	Status           string `gorm:"not null;default:'Draft';index"`
	YouTubeChannelID string `gorm:"column:youtube_channel_id"`
	YouTubeVideoID   string `gorm:"column:youtube_video_id"`
	IsAIGenerated    bool   `gorm:"column:is_ai_generated;not null;default:false"`
}

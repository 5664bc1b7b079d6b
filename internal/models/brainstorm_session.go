package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BrainstormSession stores one successful AI brainstorming run so the
// brainstorm page can show a user's recent suggestion sets. Suggestions is
// the structured model output as returned, serialized verbatim.
type BrainstormSession struct {
	gorm.Model
	UserID      uint           `gorm:"not null;index"`
	User        User           `gorm:"constraint:OnDelete:CASCADE;"`
	Keywords    string         `gorm:"not null"`
	Category    string         `gorm:"not null;default:'General'"`
	Suggestions datatypes.JSON `gorm:"type:jsonb"`
}

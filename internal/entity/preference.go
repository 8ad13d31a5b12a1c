package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

type UserPreference struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Theme     string    `gorm:"size:10;not null;default:system" json:"theme"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

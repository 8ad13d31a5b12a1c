package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is an admin-managed tag events can be filed under.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns a time-ordered id and normalizes the slug events refer to.
func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	LineUserID   *string   `gorm:"size:100;uniqueIndex" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Profile      *Profile  `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName falls back to the email when no profile name is set.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.Name != "" {
		return u.Profile.Name
	}
	return u.Email
}

func (u *User) LineBound() bool {
	return u.LineUserID != nil && *u.LineUserID != ""
}

// PersonalInfo returns the live values of every personal field a form can collect.
func (u *User) PersonalInfo() map[string]string {
	info := map[string]string{"email": u.Email}
	if u.Profile == nil {
		return info
	}
	info["name"] = u.Profile.Name
	info["phone"] = u.Profile.Phone
	info["student_id"] = u.Profile.StudentID
	info["school"] = u.Profile.School
	info["id_number"] = u.Profile.IDNumber
	return info
}

type Profile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:30" json:"phone"`
	StudentID string    `gorm:"size:50" json:"student_id"`
	School    string    `gorm:"size:150" json:"school"`
	IDNumber  string    `gorm:"size:50" json:"id_number"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package dto

import (
	"strings"

	"anoa.com/eventhub/internal/entity"
)

// UpdateProfileInput holds the editable profile fields. Nil fields are left untouched.
type UpdateProfileInput struct {
	Name      *string `json:"name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	StudentID *string `json:"student_id" binding:"omitempty,max=50"`
	School    *string `json:"school" binding:"omitempty,max=150"`
	IDNumber  *string `json:"id_number" binding:"omitempty,max=50"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

// Apply copies the set fields onto p.
func (in UpdateProfileInput) Apply(p *entity.Profile) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.Name, in.Name)
	set(&p.Phone, in.Phone)
	set(&p.StudentID, in.StudentID)
	set(&p.School, in.School)
	set(&p.IDNumber, in.IDNumber)
}

type AvatarCrop struct {
	X      int `form:"x" binding:"min=0"`
	Y      int `form:"y" binding:"min=0"`
	Width  int `form:"width" binding:"min=0"`
	Height int `form:"height" binding:"min=0"`
}

// ProfileResponse is returned for the current user's profile.
type ProfileResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	AvatarURL *string         `json:"avatar_url"`
	LineBound bool            `json:"line_bound"`
	Profile   *entity.Profile `json:"profile"`
}

func NewProfileResponse(u *entity.User) *ProfileResponse {
	profile := u.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: u.ID}
	}
	return &ProfileResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      u.Role.Name,
		AvatarURL: u.AvatarURL,
		LineBound: u.LineBound(),
		Profile:   profile,
	}
}

package dto

import "anoa.com/eventhub/internal/entity"

type CreateUserInput struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Role      string  `json:"role" binding:"required,oneof=admin user"`
	Name      string  `json:"name" binding:"required,max=100"`
	Phone     *string `json:"phone"`
	StudentID *string `json:"student_id"`
	School    *string `json:"school"`
	IDNumber  *string `json:"id_number"`
}

type UpdateAdminUserInput struct {
	Email     string  `json:"email" binding:"omitempty,email"`
	Password  string  `json:"password" binding:"omitempty,min=8"`
	Role      string  `json:"role" binding:"omitempty,oneof=admin user"`
	Name      string  `json:"name" binding:"omitempty,max=100"`
	Phone     *string `json:"phone"`
	StudentID *string `json:"student_id"`
	School    *string `json:"school"`
	IDNumber  *string `json:"id_number"`
}

type AdminUserResponse struct {
	User    *entity.User    `json:"user"`
	Role    *entity.Role    `json:"role"`
	Profile *entity.Profile `json:"profile"`
}

func NewAdminUserResponse(u *entity.User) *AdminUserResponse {
	return &AdminUserResponse{
		User:    u,
		Role:    &u.Role,
		Profile: u.Profile,
	}
}

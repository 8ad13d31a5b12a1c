package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/admin/dto"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*dto.AdminUserResponse, error)
	GetAllUsers(ctx context.Context) ([]*dto.AdminUserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateAdminUserInput) (*dto.AdminUserResponse, error)
	DeleteUser(ctx context.Context, adminID, id uuid.UUID) error
}

type adminService struct {
	repo userRepo.UserRepository
}

func NewAdminService(repo userRepo.UserRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) findRole(ctx context.Context, name string) (*entity.Role, error) {
	role, err := s.repo.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusBadRequest, fmt.Sprintf("role %s not found", name), apperror.ErrBadRequest)
		}
		return nil, err
	}
	return role, nil
}

func (s *adminService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*dto.AdminUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	role, err := s.findRole(ctx, input.Role)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleID := role.ID
	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
	}
	profile := &entity.Profile{Name: strings.TrimSpace(input.Name)}
	applyOptional(profile, input.Phone, input.StudentID, input.School, input.IDNumber)

	if err := s.repo.Create(ctx, user, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewAdminUserResponse(created), nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]*dto.AdminUserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, dto.NewAdminUserResponse(u))
	}
	return response, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateAdminUserInput) (*dto.AdminUserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" && email != user.Email {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if input.Role != "" && input.Role != user.Role.Name {
		role, err := s.findRole(ctx, input.Role)
		if err != nil {
			return nil, err
		}
		roleID := role.ID
		user.RoleID = &roleID
		user.Role = *role
	}

	profile := user.Profile
	if profile == nil {
		profile = &entity.Profile{UserID: user.ID}
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		profile.Name = name
	}
	applyOptional(profile, input.Phone, input.StudentID, input.School, input.IDNumber)

	user.Profile = nil
	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	return dto.NewAdminUserResponse(user), nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminID, id uuid.UUID) error {
	if adminID == id {
		return apperror.New(http.StatusBadRequest, "cannot delete your own account", apperror.ErrBadRequest)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func applyOptional(p *entity.Profile, phone, studentID, school, idNumber *string) {
	if phone != nil {
		p.Phone = strings.TrimSpace(*phone)
	}
	if studentID != nil {
		p.StudentID = strings.TrimSpace(*studentID)
	}
	if school != nil {
		p.School = strings.TrimSpace(*school)
	}
	if idNumber != nil {
		p.IDNumber = strings.TrimSpace(*idNumber)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/user/dto"
	"anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/internal/templates"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, tokenString string) error
	ForgotPassword(ctx context.Context, input dto.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error
}

type authService struct {
	repo        repository.UserRepository
	tokens      *TokenManager
	redisClient *redis.Client
	dispatcher  queue.Dispatcher
	frontendURL string
}

func NewAuthService(repo repository.UserRepository, tokens *TokenManager, redisClient *redis.Client, dispatcher queue.Dispatcher, frontendURL string) AuthService {
	return &authService{
		repo:        repo,
		tokens:      tokens,
		redisClient: redisClient,
		dispatcher:  dispatcher,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("default role not found: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
	}
	profile := &entity.Profile{
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		StudentID: strings.TrimSpace(input.StudentID),
		School:    strings.TrimSpace(input.School),
		IDNumber:  strings.TrimSpace(input.IDNumber),
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return fmt.Errorf("invalid token: %w", apperror.ErrUnauthorized)
	}
	if s.redisClient == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redisClient.Set(ctx, BlacklistKey(claims.ID), "1", ttl).Err()
}

func (s *authService) ForgotPassword(ctx context.Context, input dto.ForgotPasswordInput) error {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// same response for unknown emails
			return nil
		}
		return err
	}

	if s.redisClient == nil {
		return fmt.Errorf("password reset unavailable: %w", apperror.ErrInternal)
	}

	token := uuid.NewString()
	if err := s.redisClient.Set(ctx, resetKey(token), user.ID.String(), resetTokenTTL).Err(); err != nil {
		return err
	}

	email, err := templates.ResetPasswordEmail(user.Email, s.frontendURL+"/reset-password?token="+token)
	if err != nil {
		return err
	}
	if err := s.dispatcher.Dispatch(ctx, queue.EmailJob(email)); err != nil {
		log.Printf("Failed to send reset email to %s: %v", user.Email, err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	if s.redisClient == nil {
		return fmt.Errorf("password reset unavailable: %w", apperror.ErrInternal)
	}

	userIDStr, err := s.redisClient.Get(ctx, resetKey(input.Token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("invalid or expired reset token: %w", apperror.ErrBadRequest)
		}
		return err
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token: %w", apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	if err := s.redisClient.Del(ctx, resetKey(input.Token)).Err(); err != nil {
		log.Printf("Failed to delete reset token: %v", err)
	}
	return nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        user,
		Role:        &user.Role,
		Profile:     user.Profile,
	}, nil
}

func resetKey(token string) string {
	return "auth:reset:" + token
}

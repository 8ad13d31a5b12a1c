package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	stateAudience = "line-binding"
	stateTTL      = 10 * time.Minute
)

type LineService interface {
	LoginURL(userID uuid.UUID) (string, error)
	Callback(ctx context.Context, code, state string) error
	Unbind(ctx context.Context, userID uuid.UUID) error
}

type lineService struct {
	repo   userRepo.UserRepository
	auth   Authenticator
	secret []byte
}

func NewLineService(repo userRepo.UserRepository, auth Authenticator, secret string) LineService {
	return &lineService{
		repo:   repo,
		auth:   auth,
		secret: stateKey(secret),
	}
}

// stateKey derives the state signing key so a state token never verifies
// under the access token secret.
func stateKey(secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stateAudience))
	return mac.Sum(nil)
}

func (s *lineService) LoginURL(userID uuid.UUID) (string, error) {
	state, err := s.signState(userID)
	if err != nil {
		return "", err
	}
	return s.auth.AuthCodeURL(state), nil
}

func (s *lineService) Callback(ctx context.Context, code, state string) error {
	if code == "" {
		return apperror.New(http.StatusBadRequest, "missing authorization code", apperror.ErrBadRequest)
	}

	userID, err := s.parseState(state)
	if err != nil {
		return apperror.New(http.StatusBadRequest, "invalid or expired state", apperror.ErrBadRequest)
	}

	lineUserID, err := s.auth.FetchUserID(ctx, code)
	if err != nil {
		log.Printf("line login failed for %s: %v", userID, err)
		return apperror.New(http.StatusBadGateway, "failed to verify LINE account", apperror.ErrInternal)
	}

	if owner, err := s.repo.FindByLineUserID(ctx, lineUserID); err == nil {
		if owner.ID == userID {
			return nil
		}
		return fmt.Errorf("LINE account is bound to another user: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.repo.SetLineUserID(ctx, userID, &lineUserID)
}

func (s *lineService) Unbind(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	if !user.LineBound() {
		return apperror.New(http.StatusBadRequest, "LINE account is not bound", apperror.ErrBadRequest)
	}
	return s.repo.SetLineUserID(ctx, userID, nil)
}

func (s *lineService) signState(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{stateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *lineService) parseState(state string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(state, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(stateAudience))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

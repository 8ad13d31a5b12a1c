package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/eventhub/internal/entity"
	"anoa.com/eventhub/internal/modules/user/dto"
	"anoa.com/eventhub/internal/modules/user/repository"
	"anoa.com/eventhub/internal/queue"
	"anoa.com/eventhub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	repository.UserRepository
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if u, ok := f.users[email]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return &entity.Role{ID: 2, Name: name}, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	profile.UserID = user.ID
	user.Profile = profile
	f.users[user.Email] = user
	return nil
}

type nopDispatcher struct{ jobs []queue.Job }

func (d *nopDispatcher) Dispatch(ctx context.Context, job queue.Job) error {
	d.jobs = append(d.jobs, job)
	return nil
}

func newTestAuthService(repo *fakeUserRepo) (AuthService, *TokenManager) {
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewAuthService(repo, tokens, nil, &nopDispatcher{}, "http://localhost:3000"), tokens
}

func TestRegisterThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc, tokens := newTestAuthService(repo)
	ctx := context.Background()

	res, err := svc.Register(ctx, dto.RegisterInput{Email: "Mei@Example.com", Password: "password123", Name: "Mei"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.Email != "mei@example.com" || res.User.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", res.User)
	}

	claims, err := tokens.Parse(res.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != res.User.ID.String() || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := svc.Login(ctx, dto.LoginInput{Email: "mei@example.com", Password: "password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(ctx, dto.LoginInput{Email: "mei@example.com", Password: "wrong-pass"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, dto.LoginInput{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(repo)
	ctx := context.Background()

	input := dto.RegisterInput{Email: "kai@example.com", Password: "password123", Name: "Kai"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserRepo())
	if err := svc.ForgotPassword(context.Background(), dto.ForgotPasswordInput{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	a := NewTokenManager("secret-a", time.Hour)
	b := NewTokenManager("secret-b", time.Hour)

	token, _, err := a.Generate(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := b.Parse(token); err == nil {
		t.Fatal("expected signature error")
	}

	expired := NewTokenManager("secret-a", -time.Minute)
	old, _, _ := expired.Generate(uuid.New())
	if _, err := a.Parse(old); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestTokenManagerRequiresAccessAudience(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	for name, aud := range map[string]jwt.ClaimStrings{
		"no audience":    nil,
		"other audience": {"line-binding"},
	} {
		claims := jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Audience:  aud,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		if _, err := tokens.Parse(token); err == nil {
			t.Fatalf("%s: expected audience error", name)
		}
	}

	token, _, _ := tokens.Generate(uuid.New())
	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != AccessAudience {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
}

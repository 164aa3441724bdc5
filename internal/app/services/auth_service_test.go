package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/app/models/dto"
	"github.com/surgitrack/surgitrack/internal/pkg/apperrors"
	pkgauth "github.com/surgitrack/surgitrack/internal/pkg/auth"
)

type fakeUserRepo struct {
	users      map[int64]models.User
	lastLogins map[int64]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[int64]models.User),
		lastLogins: make(map[int64]time.Time),
	}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			out := user
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	r.lastLogins[id] = at
	return nil
}

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	hash, err := pkgauth.HashPassword("supervisor-pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	profileID := int64(2)
	users.users[42] = models.User{
		ID:        42,
		Email:     "brian@hospital.org",
		Password:  hash,
		FirstName: "Brian",
		LastName:  "Okafor",
		Role:      models.RoleSupervisor,
		Institute: "st-marys",
		ProfileID: &profileID,
		IsActive:  true,
	}
	jwtSvc := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "surgitrack-test",
	})
	return NewAuthService(users, jwtSvc, zerolog.Nop()), users
}

func TestLoginSuccess(t *testing.T) {
	svc, users := newAuthFixture(t)

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "brian@hospital.org",
		Password: "supervisor-pass",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}
	if _, ok := users.lastLogins[42]; !ok {
		t.Error("login should record last login time")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "brian@hospital.org",
		Password: "not-the-password",
	})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@hospital.org",
		Password: "whatever-pass",
	})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	user := users.users[42]
	user.IsActive = false
	users.users[42] = user

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "brian@hospital.org",
		Password: "supervisor-pass",
	})
	if !errors.Is(err, apperrors.ErrAccountDisabled) {
		t.Fatalf("expected account disabled, got %v", err)
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "brian@hospital.org",
		Password: "supervisor-pass",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatal("expected non-empty refreshed pair")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "brian@hospital.org",
		Password: "supervisor-pass",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	_, err = svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	if !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("access token must not be accepted for refresh, got %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "not.a.token"})
	if err == nil {
		t.Fatal("garbage refresh token should fail")
	}
}

func TestProfile(t *testing.T) {
	svc, _ := newAuthFixture(t)

	profile, err := svc.Profile(context.Background(), 42)
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Email != "brian@hospital.org" || profile.Role != string(models.RoleSupervisor) {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.ProfileID == nil || *profile.ProfileID != 2 {
		t.Errorf("expected profileId 2, got %v", profile.ProfileID)
	}

	if _, err := svc.Profile(context.Background(), 404); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reclaimhq/reclaim-backend/internal/users"
	pkgAuth "github.com/reclaimhq/reclaim-backend/pkg/auth"
	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	pkgerrors "github.com/reclaimhq/reclaim-backend/pkg/errors"
	"github.com/reclaimhq/reclaim-backend/pkg/security"
)

func TestServiceLoginIssuesMemberToken(t *testing.T) {
	password := "member-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "member@example.com",
		PasswordHash: hashed,
		FirstName:    "Member",
		LastName:     "User",
		Role:         enums.UserRoleMember,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, repo, err := buildTestService(user, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleMember {
		t.Fatalf("expected member role claim, got %s", claims.Role)
	}
	if repo.lastLoginAt.IsZero() {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user in response")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	hashed := mustHashPassword(t, "right-password")
	user := &models.User{
		ID:           uuid.New(),
		Email:        "member@example.com",
		PasswordHash: hashed,
		Role:         enums.UserRoleMember,
		IsActive:     true,
	}

	svc, _, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	if err == nil {
		t.Fatalf("expected unauthorized for bad password")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "inactive-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "inactive@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleMember,
		IsActive:     false,
	}

	svc, _, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err == nil {
		t.Fatalf("expected unauthorized for inactive user")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRegisterCreatesMember(t *testing.T) {
	svc, repo, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "New",
		LastName:  "Member",
		Email:     "  New.Member@Example.com ",
		Password:  "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if repo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if repo.created.Email != "new.member@example.com" {
		t.Fatalf("expected normalized email, got %s", repo.created.Email)
	}
	if repo.created.Role != enums.UserRoleMember {
		t.Fatalf("expected member role, got %s", repo.created.Role)
	}
	if repo.created.PasswordHash == "hunter2hunter2" {
		t.Fatalf("expected password to be hashed")
	}
	if resp.User == nil || resp.User.Email != "new.member@example.com" {
		t.Fatalf("expected created user in response")
	}
}

func TestServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := &models.User{
		ID:    uuid.New(),
		Email: "taken@example.com",
	}
	svc, _, err := buildTestService(existing, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{
		FirstName: "Dup",
		LastName:  "User",
		Email:     "taken@example.com",
		Password:  "hunter2hunter2",
	})
	if err == nil {
		t.Fatalf("expected conflict for duplicate email")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceRegisterMapsUniqueViolationToConflict(t *testing.T) {
	svc, repo, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	repo.createErr = errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`)

	_, err = svc.Register(context.Background(), RegisterRequest{
		FirstName: "Race",
		LastName:  "Loser",
		Email:     "race@example.com",
		Password:  "hunter2hunter2",
	})
	if err == nil {
		t.Fatalf("expected conflict when insert hits the unique index")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func buildTestService(user *models.User, jwtCfg config.JWTConfig) (Service, *stubUserRepo, error) {
	repo := &stubUserRepo{user: user}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		JWTConfig:      jwtCfg,
		PasswordConfig: config.PasswordConfig{},
	})
	return svc, repo, err
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "reclaim",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user        *models.User
	created     *models.User
	createErr   error
	lastLoginAt time.Time
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	model := dto.ToModel()
	model.ID = uuid.New()
	s.created = model
	return model, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginAt = at
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

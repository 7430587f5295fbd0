package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/domain"
	"quizdeck-service/internal/infra/memory"
)

func newAccountService(now *time.Time) (*app.AccountService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour, memory.NewRevocationList())
	lockout := app.LockoutPolicy{Threshold: 3, LockDuration: 15 * time.Minute}
	svc := app.NewAccountServiceWithClock(memory.NewUserRepository(), tokens, &recorderMailer{}, lockout, func() time.Time { return *now })
	return svc, tokens
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, _ := newAccountService(&now)

	cases := []app.RegisterInput{
		{FirstName: "", LastName: "Doe", Email: "a@b.com", Password: "longenough"},
		{FirstName: "Jane", LastName: "Doe", Email: "not-an-email", Password: "longenough"},
		{FirstName: "Jane", LastName: "Doe", Email: "a@b.com", Password: "short"},
	}
	for i, in := range cases {
		if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, _ := newAccountService(&now)

	in := app.RegisterInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in.Email = "  JANE@Example.com "
	if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken for normalized duplicate, got %v", err)
	}
}

func TestLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, _ := newAccountService(&now)

	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginLockoutFlow(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, _ := newAccountService(&now)

	user, err := svc.Register(ctx, app.RegisterInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Login(ctx, user.Email, "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("failure %d: expected invalid credentials, got %v", i+1, err)
		}
	}

	// Correct password during the lock window is still rejected as locked.
	if _, err := svc.Login(ctx, user.Email, "longenough"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected locked, got %v", err)
	}

	now = now.Add(16 * time.Minute)
	result, err := svc.Login(ctx, user.Email, "longenough")
	if err != nil {
		t.Fatalf("login after lock expiry: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
	if result.User.Role != domain.RolePlayer {
		t.Fatalf("expected PLAYER role, got %s", result.User.Role)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, tokens := newAccountService(&now)

	user, err := svc.Register(ctx, app.RegisterInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.Login(ctx, user.Email, "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := tokens.Verify(ctx, result.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := tokens.Verify(ctx, result.Token); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected revoked token, got %v", err)
	}
}

func TestProfileOwnership(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, _ := newAccountService(&now)

	user, err := svc.Register(ctx, app.RegisterInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.GetProfile(ctx, user.ID+1, user.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden reading another profile, got %v", err)
	}

	country := "Serbia"
	updated, err := svc.UpdateProfile(ctx, user.ID, user.ID, app.ProfilePatch{Country: &country})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Country != "Serbia" {
		t.Fatalf("expected country updated, got %q", updated.Country)
	}
	if updated.Email != user.Email || updated.Role != user.Role {
		t.Fatalf("email and role must not change via profile update")
	}
}

func TestChangeRoleValidatesRole(t *testing.T) {
	ctx := context.Background()
	now := mustTime("2026-01-02T10:00:00Z")
	svc, _ := newAccountService(&now)

	user, err := svc.Register(ctx, app.RegisterInput{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.ChangeRole(ctx, user.ID, domain.Role("SUPERUSER")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
	updated, err := svc.ChangeRole(ctx, user.ID, domain.RoleModerator)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != domain.RoleModerator {
		t.Fatalf("expected MODERATOR, got %s", updated.Role)
	}
}

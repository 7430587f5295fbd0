package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/domain"
)

// AccountService covers registration, login with lockout, logout, profile
// reads/updates, and admin role changes.
type AccountService struct {
	users   UserRepository
	tokens  *auth.TokenManager
	mailer  Mailer
	lockout LockoutPolicy
	now     func() time.Time
}

func NewAccountService(users UserRepository, tokens *auth.TokenManager, mailer Mailer, lockout LockoutPolicy) *AccountService {
	return &AccountService{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		lockout: lockout,
		now:     time.Now,
	}
}

// NewAccountServiceWithClock is test-only for deterministic timestamps.
func NewAccountServiceWithClock(users UserRepository, tokens *auth.TokenManager, mailer Mailer, lockout LockoutPolicy, now func() time.Time) *AccountService {
	s := NewAccountService(users, tokens, mailer, lockout)
	s.now = now
	return s
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// NormalizeEmail trims and lower-cases an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a PLAYER account with a bcrypt password hash.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := NormalizeEmail(in.Email)
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return domain.User{}, fmt.Errorf("%w: firstName and lastName are required", domain.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}
	if len(in.Password) < 8 {
		return domain.User{}, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RolePlayer,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token string
	User  domain.User
}

// Login applies the lockout policy and issues a bearer token on success.
// An unknown email and a wrong password are indistinguishable to the
// caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return LoginResult{}, domain.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	now := s.now()
	state := LockoutState{FailedAttempts: user.FailedLoginAttempts, LockedUntil: user.LockedUntil}

	if state.LockedUntil != nil && state.LockedUntil.After(now) {
		return LoginResult{}, domain.ErrAccountLocked
	}

	matched := auth.CheckPassword(password, user.PasswordHash)
	outcome, next := s.lockout.Evaluate(state, matched, now)
	if err := s.users.RecordLoginOutcome(ctx, user.ID, next.FailedAttempts, next.LockedUntil); err != nil {
		return LoginResult{}, err
	}
	if outcome != OutcomeSuccess {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

// Logout revokes the presented token.
func (s *AccountService) Logout(ctx context.Context, claims auth.Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

// GetProfile returns a user's own record; reading other users is an
// ownership violation.
func (s *AccountService) GetProfile(ctx context.Context, callerID, userID int64) (domain.User, error) {
	if callerID != userID {
		return domain.User{}, domain.ErrForbidden
	}
	return s.users.GetByID(ctx, userID)
}

// ProfilePatch carries the mutable profile fields; nil means unchanged.
// Email, role, and id are not patchable.
type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	BirthDate    *time.Time
	Gender       *string
	Country      *string
	Street       *string
	StreetNumber *string
	ProfileImage *string
}

// UpdateProfile applies a partial update to the caller's own record.
func (s *AccountService) UpdateProfile(ctx context.Context, callerID, userID int64, patch ProfilePatch) (domain.User, error) {
	if callerID != userID {
		return domain.User{}, domain.ErrForbidden
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.BirthDate != nil {
		user.BirthDate = patch.BirthDate
	}
	if patch.Gender != nil {
		user.Gender = strings.TrimSpace(*patch.Gender)
	}
	if patch.Country != nil {
		user.Country = strings.TrimSpace(*patch.Country)
	}
	if patch.Street != nil {
		user.Street = strings.TrimSpace(*patch.Street)
	}
	if patch.StreetNumber != nil {
		user.StreetNumber = strings.TrimSpace(*patch.StreetNumber)
	}
	if patch.ProfileImage != nil {
		user.ProfileImage = *patch.ProfileImage
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SetProfileImage records the stored image URL on the caller's record.
func (s *AccountService) SetProfileImage(ctx context.Context, userID int64, url string) (domain.User, error) {
	if err := s.users.UpdateProfileImage(ctx, userID, url); err != nil {
		return domain.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// ChangeRole sets a user's role and sends a best-effort notification mail.
func (s *AccountService) ChangeRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return domain.User{}, err
	}
	user.Role = role

	go func(email string, role domain.Role) {
		body := fmt.Sprintf("Hello,\n\nYour role on the system has been changed. New role: %s\n\nBest regards.", role)
		if err := s.mailer.Send(email, "Role Changed Notification", body); err != nil {
			log.Printf("role change mail to %s failed: %v", email, err)
		}
	}(user.Email, role)

	return user, nil
}

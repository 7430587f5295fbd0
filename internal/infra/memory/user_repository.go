package memory

import (
	"context"
	"sync"
	"time"

	"quizdeck-service/internal/domain"
)

// UserRepository is an in-memory implementation of app.UserRepository,
// used in tests and when Postgres is not configured.
type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]domain.User
	byEmail map[string]int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		nextID:  1,
		users:   make(map[int64]domain.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.BirthDate = user.BirthDate
	existing.Gender = user.Gender
	existing.Country = user.Country
	existing.Street = user.Street
	existing.StreetNumber = user.StreetNumber
	existing.ProfileImage = user.ProfileImage
	r.users[user.ID] = existing
	return nil
}

func (r *UserRepository) RecordLoginOutcome(_ context.Context, id int64, failedAttempts int, lockedUntil *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.FailedLoginAttempts = failedAttempts
	user.LockedUntil = lockedUntil
	r.users[id] = user
	return nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Role = role
	r.users[id] = user
	return nil
}

func (r *UserRepository) UpdateProfileImage(_ context.Context, id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ProfileImage = url
	r.users[id] = user
	return nil
}

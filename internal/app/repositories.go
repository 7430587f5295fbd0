package app

import (
	"context"
	"time"

	"quizdeck-service/internal/domain"
)

// UserRepository abstracts the credential store (Postgres, in-memory).
type UserRepository interface {
	// Create persists a new user and assigns its id. Returns
	// domain.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	// UpdateProfile writes the mutable profile fields of the user.
	UpdateProfile(ctx context.Context, user domain.User) error
	// RecordLoginOutcome atomically writes the lockout counters.
	RecordLoginOutcome(ctx context.Context, id int64, failedAttempts int, lockedUntil *time.Time) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	UpdateProfileImage(ctx context.Context, id int64, url string) error
}

// QuizRepository abstracts the quiz catalog. All multi-row writes are
// all-or-nothing: a failed validation or insert leaves nothing behind.
type QuizRepository interface {
	// Create persists the quiz hierarchy and assigns ids.
	Create(ctx context.Context, quiz *domain.Quiz) error
	// Get loads the full quiz including questions and options.
	Get(ctx context.Context, id int64) (domain.Quiz, error)
	// ListByStatus returns quiz headers (no questions) ordered by id.
	ListByStatus(ctx context.Context, status domain.QuizStatus) ([]domain.Quiz, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Quiz, error)
	// UpdateStatus transitions from -> to, guarded on the current status.
	// Returns domain.ErrQuizNotPending (or ErrQuizNotRejected) when the
	// quiz is no longer in the expected source state.
	UpdateStatus(ctx context.Context, id int64, from, to domain.QuizStatus, reason string) error
	// ReplaceContent rewrites title, duration, and questions of a REJECTED
	// quiz and resets it to PENDING with the rejection reason cleared.
	ReplaceContent(ctx context.Context, quiz *domain.Quiz) error
}

// AttemptRepository abstracts attempt rows. The (quiz, player) pair is
// unique at the store level; concurrent starts converge on one row.
type AttemptRepository interface {
	// GetOrCreate inserts an attempt or, if one already exists for the
	// pair, returns the existing row. The bool reports whether a new row
	// was created.
	GetOrCreate(ctx context.Context, quizID, playerID int64, startedAt time.Time) (domain.Attempt, bool, error)
	Get(ctx context.Context, quizID, playerID int64) (domain.Attempt, error)
	GetByID(ctx context.Context, id int64) (domain.Attempt, error)
	// Finish sets finished_at only if it is still null. The bool reports
	// whether this caller won the transition.
	Finish(ctx context.Context, id int64, finishedAt time.Time) (bool, error)
	// SetScore writes the score only if it is still null, making score
	// completion idempotent.
	SetScore(ctx context.Context, id int64, score int) (bool, error)
	// ListFinished returns finished attempts for a quiz ordered by score
	// descending then finish time ascending, at most limit rows.
	ListFinished(ctx context.Context, quizID int64, limit int) ([]domain.Attempt, error)
}

// Cache is a byte-oriented TTL cache with prefix invalidation. Key prefixes
// map to invalidation scopes (quiz lists, quiz details) owned by the quiz
// service.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeleteByPrefix(ctx context.Context, prefix string)
}

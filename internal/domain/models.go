package domain

import "time"

// Role gates what a user may do. Players take quizzes, moderators author
// them, admins moderate and administer.
type Role string

const (
	RolePlayer    Role = "PLAYER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// QuizStatus is the moderation state of a quiz.
type QuizStatus string

const (
	StatusPending  QuizStatus = "PENDING"
	StatusApproved QuizStatus = "APPROVED"
	StatusRejected QuizStatus = "REJECTED"
)

// User is a registered account. FailedLoginAttempts and LockedUntil carry
// the lockout state; LockedUntil in the future rejects logins outright.
type User struct {
	ID                  int64
	FirstName           string
	LastName            string
	Email               string
	PasswordHash        string
	BirthDate           *time.Time
	Gender              string
	Country             string
	Street              string
	StreetNumber        string
	ProfileImage        string
	Role                Role
	CreatedAt           time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// Option is one possible answer to a question.
type Option struct {
	ID         int64
	QuestionID int64
	Text       string
	Correct    bool
}

// Question belongs to exactly one quiz and has at least two options.
type Question struct {
	ID      int64
	QuizID  int64
	Text    string
	Points  int
	Options []Option
}

// CorrectOptionIDs returns the set of correct option ids for the question.
func (q Question) CorrectOptionIDs() map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, o := range q.Options {
		if o.Correct {
			ids[o.ID] = struct{}{}
		}
	}
	return ids
}

// Quiz owns its questions; deleting a quiz cascades to them.
type Quiz struct {
	ID              int64
	Title           string
	DurationSeconds int
	Status          QuizStatus
	RejectionReason string
	AuthorID        int64
	CreatedAt       time.Time
	Questions       []Question
}

// QuestionByID finds a question of the quiz, or nil.
func (q Quiz) QuestionByID(id int64) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// Attempt is one player's single try at one quiz. Lifecycle: a missing row
// means not started; FinishedAt nil means in progress; FinishedAt set with
// Score nil means scoring is pending; both set means scored and immutable.
type Attempt struct {
	ID         int64
	QuizID     int64
	PlayerID   int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Score      *int
}

// Finished reports whether the attempt has been finalized.
func (a Attempt) Finished() bool { return a.FinishedAt != nil }

// Scored reports whether the background scorer has written a result.
func (a Attempt) Scored() bool { return a.Score != nil }

// DurationSeconds is the wall time between start and finish, or -1 while
// the attempt is still in progress.
func (a Attempt) DurationSeconds() int {
	if a.FinishedAt == nil {
		return -1
	}
	return int(a.FinishedAt.Sub(a.StartedAt).Seconds())
}

// AnswerSheet maps question ids to the option ids a player selected.
type AnswerSheet map[int64][]int64

package domain

import "errors"

var (
	// ErrValidation covers malformed or missing input on writes.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for a wrong password or an unknown
	// email; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked rejects logins while a lockout window is open.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrEmailTaken indicates a registration with an already used email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrTokenInvalid covers missing, malformed, or expired tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenRevoked indicates a token whose id is on the revocation list.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrForbidden indicates a role or ownership violation.
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound indicates the user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuizNotFound indicates the quiz id does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizNotAvailable hides non-approved quizzes from players.
	ErrQuizNotAvailable = errors.New("quiz not available")
	// ErrQuizNotPending rejects moderation of an already decided quiz.
	ErrQuizNotPending = errors.New("quiz is not pending")
	// ErrQuizNotRejected rejects edits of quizzes outside REJECTED.
	ErrQuizNotRejected = errors.New("only rejected quizzes can be edited")

	// ErrAttemptNotFound indicates no attempt row exists for (quiz, player).
	ErrAttemptNotFound = errors.New("no attempt")
	// ErrAttemptNotStarted rejects submissions before a start.
	ErrAttemptNotStarted = errors.New("quiz attempt not started")
	// ErrAttemptFinished rejects duplicate starts or submissions.
	ErrAttemptFinished = errors.New("attempt already finished")
	// ErrAttemptNotFinished indicates a result read before submission.
	ErrAttemptNotFinished = errors.New("attempt not submitted yet")
	// ErrResultProcessing signals the score is still being computed.
	ErrResultProcessing = errors.New("result processing")
	// ErrInvalidAnswer rejects answers referencing foreign questions or
	// option ids outside the question.
	ErrInvalidAnswer = errors.New("invalid answer")
)

package app

import "quizdeck-service/internal/domain"

// Broadcaster pushes best-effort events to live connections. Loss of an
// event is acceptable; the authoritative result is always readable via the
// result endpoint.
type Broadcaster interface {
	// ToUser sends to every connection of one player.
	ToUser(userID int64, event string, payload any)
	// ToAdmins sends to every connected admin.
	ToAdmins(event string, payload any)
}

// Mailer delivers fire-and-forget mail. Failures are logged by callers and
// never surfaced to the request path.
type Mailer interface {
	Send(to, subject, body string) error
	SendWithAttachment(to, subject, body, filename, mimeType string, data []byte) error
}

// Push event names carried over the websocket channel.
const (
	EventQuizCreated  = "quiz_created"
	EventQuizApproved = "quiz_approved"
	EventQuizRejected = "quiz_rejected"
	EventResultReady  = "quiz_result_ready"
)

// QuizEvent is the payload for quiz lifecycle broadcasts.
type QuizEvent struct {
	QuizID   int64             `json:"quizId"`
	Title    string            `json:"title"`
	Status   domain.QuizStatus `json:"status"`
	AuthorID int64             `json:"authorId"`
	Reason   string            `json:"reason,omitempty"`
}

// ResultEvent is the payload pushed to a player when scoring completes.
type ResultEvent struct {
	QuizID          int64  `json:"quizId"`
	AttemptID       int64  `json:"attemptId"`
	Score           int    `json:"score"`
	DurationSeconds int    `json:"durationSeconds"`
	FinishedAt      string `json:"finishedAt"`
}

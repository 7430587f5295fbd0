package http

import (
	"time"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/domain"
)

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}

type userResponse struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	BirthDate    string `json:"birthDate,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Country      string `json:"country,omitempty"`
	Street       string `json:"street,omitempty"`
	StreetNumber string `json:"streetNumber,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

func toUserResponse(u domain.User) userResponse {
	out := userResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         string(u.Role),
		Gender:       u.Gender,
		Country:      u.Country,
		Street:       u.Street,
		StreetNumber: u.StreetNumber,
		ProfileImage: u.ProfileImage,
	}
	if u.BirthDate != nil {
		out.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	if !u.CreatedAt.IsZero() {
		out.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

type profilePatchRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	BirthDate    *string `json:"birthDate"`
	Gender       *string `json:"gender"`
	Country      *string `json:"country"`
	Street       *string `json:"street"`
	StreetNumber *string `json:"streetNumber"`
	ProfileImage *string `json:"profileImage"`
}

type roleChangeRequest struct {
	Role string `json:"role"`
}

type answerDraftRequest struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type questionDraftRequest struct {
	Text    string               `json:"text"`
	Points  int                  `json:"points"`
	Answers []answerDraftRequest `json:"answers"`
}

type quizDraftRequest struct {
	Title           string                 `json:"title"`
	DurationSeconds int                    `json:"durationSeconds"`
	Questions       []questionDraftRequest `json:"questions"`
}

func (r quizDraftRequest) toDraft() domain.QuizDraft {
	draft := domain.QuizDraft{
		Title:           r.Title,
		DurationSeconds: r.DurationSeconds,
	}
	for _, q := range r.Questions {
		points := q.Points
		qd := domain.QuestionDraft{Text: q.Text, Points: points}
		for _, a := range q.Answers {
			qd.Answers = append(qd.Answers, domain.AnswerDraft{Text: a.Text, Correct: a.IsCorrect})
		}
		draft.Questions = append(draft.Questions, qd)
	}
	return draft
}

type quizHeaderResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"durationSeconds"`
	Status          string `json:"status,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	AuthorID        int64  `json:"authorId,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

func toQuizHeader(q domain.Quiz, includeModeration bool) quizHeaderResponse {
	out := quizHeaderResponse{
		ID:              q.ID,
		Title:           q.Title,
		DurationSeconds: q.DurationSeconds,
	}
	if includeModeration {
		out.Status = string(q.Status)
		out.RejectionReason = q.RejectionReason
		out.AuthorID = q.AuthorID
		if !q.CreatedAt.IsZero() {
			out.CreatedAt = q.CreatedAt.UTC().Format(time.RFC3339)
		}
	}
	return out
}

func toQuizHeaders(quizzes []domain.Quiz, includeModeration bool) []quizHeaderResponse {
	out := make([]quizHeaderResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizHeader(q, includeModeration))
	}
	return out
}

type answerOptionResponse struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type questionResponse struct {
	ID      int64                  `json:"id"`
	Text    string                 `json:"text"`
	Points  int                    `json:"points"`
	Answers []answerOptionResponse `json:"answers"`
}

type quizDetailResponse struct {
	ID              int64              `json:"id"`
	Title           string             `json:"title"`
	DurationSeconds int                `json:"durationSeconds"`
	Status          string             `json:"status"`
	Questions       []questionResponse `json:"questions"`
}

// toQuizDetail never exposes correctness flags; the answer key stays
// server-side.
func toQuizDetail(q domain.Quiz) quizDetailResponse {
	out := quizDetailResponse{
		ID:              q.ID,
		Title:           q.Title,
		DurationSeconds: q.DurationSeconds,
		Status:          string(q.Status),
		Questions:       make([]questionResponse, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qr := questionResponse{
			ID:      question.ID,
			Text:    question.Text,
			Points:  question.Points,
			Answers: make([]answerOptionResponse, 0, len(question.Options)),
		}
		for _, option := range question.Options {
			qr.Answers = append(qr.Answers, answerOptionResponse{ID: option.ID, Text: option.Text})
		}
		out.Questions = append(out.Questions, qr)
	}
	return out
}

type attemptResponse struct {
	AttemptID  int64   `json:"attemptId"`
	QuizID     int64   `json:"quizId"`
	StartedAt  string  `json:"startedAt"`
	FinishedAt *string `json:"finishedAt"`
}

func toAttemptResponse(a domain.Attempt) attemptResponse {
	out := attemptResponse{
		AttemptID: a.ID,
		QuizID:    a.QuizID,
		StartedAt: a.StartedAt.UTC().Format(time.RFC3339),
	}
	if a.FinishedAt != nil {
		finished := a.FinishedAt.UTC().Format(time.RFC3339)
		out.FinishedAt = &finished
	}
	return out
}

type submittedAnswer struct {
	QuestionID int64   `json:"questionId"`
	AnswerIDs  []int64 `json:"answerIds"`
}

type submitRequest struct {
	Answers          []submittedAnswer `json:"answers"`
	RemainingSeconds *int              `json:"remainingSeconds"`
}

type resultResponse struct {
	QuizID          int64  `json:"quizId"`
	PlayerID        int64  `json:"playerId"`
	Score           int    `json:"score"`
	DurationSeconds int    `json:"durationSeconds"`
	FinishedAt      string `json:"finishedAt"`
}

type leaderboardRowResponse struct {
	PlayerID        int64  `json:"playerId"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Score           int    `json:"score"`
	DurationSeconds int    `json:"durationSeconds"`
	FinishedAt      string `json:"finishedAt"`
}

func toLeaderboardResponse(rows []app.LeaderboardRow) []leaderboardRowResponse {
	out := make([]leaderboardRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboardRowResponse{
			PlayerID:        row.PlayerID,
			Name:            row.Name,
			Email:           row.Email,
			Score:           row.Score,
			DurationSeconds: row.DurationSeconds,
			FinishedAt:      row.FinishedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/domain"
)

// AttemptHandler serves the attempt lifecycle: start, submit, result, and
// the per-quiz leaderboard.
type AttemptHandler struct {
	attempts *app.AttemptService
}

func NewAttemptHandler(attempts *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	attempt, created, err := h.attempts.Start(r.Context(), quizID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toAttemptResponse(attempt))
}

func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers := make(domain.AnswerSheet, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.QuestionID] = a.AnswerIDs
	}

	result, err := h.attempts.Submit(r.Context(), quizID, claims.UserID, answers, req.RemainingSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Expired {
		writeMessage(w, http.StatusAccepted, "time expired, a zero score is being recorded")
		return
	}
	writeMessage(w, http.StatusAccepted, "answers accepted, scoring in progress")
}

func (h *AttemptHandler) Result(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	result, err := h.attempts.Result(r.Context(), quizID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{
		QuizID:          result.QuizID,
		PlayerID:        result.PlayerID,
		Score:           result.Score,
		DurationSeconds: result.DurationSeconds,
		FinishedAt:      result.FinishedAt.UTC().Format(time.RFC3339),
	})
}

func (h *AttemptHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	rows, err := h.attempts.Leaderboard(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(rows))
}

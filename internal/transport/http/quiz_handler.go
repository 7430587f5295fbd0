package http

import (
	"encoding/json"
	"net/http"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/domain"
)

// QuizHandler serves authoring, moderation, and catalog reads.
type QuizHandler struct {
	quizzes  *app.QuizService
	accounts *app.AccountService
	reports  *app.ReportService
}

func NewQuizHandler(quizzes *app.QuizService, accounts *app.AccountService, reports *app.ReportService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, accounts: accounts, reports: reports}
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	var req quizDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quiz, err := h.quizzes.Create(r.Context(), claims.UserID, req.toDraft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuizHeader(quiz, true))
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req quizDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quiz, err := h.quizzes.Update(r.Context(), claims.UserID, claims.Role, quizID, req.toDraft())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizHeader(quiz, true))
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	quiz, err := h.quizzes.Get(r.Context(), quizID, claims.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizDetail(quiz))
}

func (h *QuizHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListApproved(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizHeaders(quizzes, false))
}

func (h *QuizHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizHeaders(quizzes, true))
}

func (h *QuizHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	quizzes, err := h.quizzes.ListMine(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizHeaders(quizzes, true))
}

func (h *QuizHandler) Approve(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	quiz, err := h.quizzes.Approve(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizHeader(quiz, true))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *QuizHandler) Reject(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid quiz id")
		return
	}
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quiz, err := h.quizzes.Reject(r.Context(), quizID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuizHeader(quiz, true))
}

// Report emails a PDF of the quiz's scored attempts to the requesting
// admin and returns as soon as the delivery is queued.
func (h *QuizHandler) Report(w http.ResponseWriter, r *http.Request) {
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
	quiz, err := h.quizzes.Get(r.Context(), quizID, domain.RoleAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	admin, err := h.accounts.GetProfile(r.Context(), claims.UserID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.reports.Request(r.Context(), quizID, quiz.Title, admin.Email); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusAccepted, "report generation started")
}

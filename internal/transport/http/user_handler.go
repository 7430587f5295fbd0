package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/domain"
)

// UserHandler serves profile reads/updates and admin role changes.
type UserHandler struct {
	accounts *app.AccountService
}

func NewUserHandler(accounts *app.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	userID, ok := pathID(r, "userID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.accounts.GetProfile(r.Context(), claims.UserID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	userID, ok := pathID(r, "userID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req profilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := app.ProfilePatch{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		Country:      req.Country,
		Street:       req.Street,
		StreetNumber: req.StreetNumber,
		ProfileImage: req.ProfileImage,
	}
	if req.BirthDate != nil {
		birth, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "birthDate must be YYYY-MM-DD")
			return
		}
		patch.BirthDate = &birth
	}

	user, err := h.accounts.UpdateProfile(r.Context(), claims.UserID, userID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req roleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.accounts.ChangeRole(r.Context(), userID, domain.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

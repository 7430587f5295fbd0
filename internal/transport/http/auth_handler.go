package http

import (
	"encoding/json"
	"net/http"

	"quizdeck-service/internal/app"
)

// AuthHandler serves registration, login, and logout.
type AuthHandler struct {
	accounts *app.AccountService
}

func NewAuthHandler(accounts *app.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.accounts.Register(r.Context(), app.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		Role:        string(result.User.Role),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	if err := h.accounts.Logout(r.Context(), claims); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

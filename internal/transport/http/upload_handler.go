package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizdeck-service/internal/app"
)

const maxUploadBytes = 5 << 20

var allowedImageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// UploadHandler stores profile images on disk and records their public URL
// on the uploading user's record.
type UploadHandler struct {
	accounts *app.AccountService
	dir      string
	baseURL  string
}

func NewUploadHandler(accounts *app.AccountService, dir, baseURL string) *UploadHandler {
	return &UploadHandler{accounts: accounts, dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *UploadHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		writeMessage(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		writeError(w, err)
		return
	}
	name := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		writeError(w, err)
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, err)
		return
	}

	url := h.baseURL + "/uploads/" + name
	user, err := h.accounts.SetProfileImage(r.Context(), claims.UserID, url)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

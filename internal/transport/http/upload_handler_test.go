package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"quizdeck-service/internal/domain"
)

func multipartImage(t *testing.T, filename string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake image bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadProfileImage(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "player@example.com", domain.RolePlayer)

	body, contentType := multipartImage(t, "avatar.png")
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/upload/profile-image", body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}

	var user userResponse
	if err := json.Unmarshal(raw, &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(user.ProfileImage, "/uploads/") || !strings.HasSuffix(user.ProfileImage, ".png") {
		t.Fatalf("expected a stored image url, got %q", user.ProfileImage)
	}

	// The stored file is served back under /uploads/.
	name := user.ProfileImage[strings.LastIndex(user.ProfileImage, "/uploads/"):]
	resp, err = http.Get(env.server.URL + name)
	if err != nil {
		t.Fatalf("fetch upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for stored file, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsUnknownExtensions(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "player@example.com", domain.RolePlayer)

	body, contentType := multipartImage(t, "script.sh")
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/upload/profile-image", body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for disallowed extension, got %d", resp.StatusCode)
	}
}

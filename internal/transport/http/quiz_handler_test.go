package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"quizdeck-service/internal/domain"
)

func TestQuizModerationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, modToken := env.seedUser(t, "mod@example.com", domain.RoleModerator)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)
	_, playerToken := env.seedUser(t, "player@example.com", domain.RolePlayer)

	resp, raw := env.do(t, http.MethodPost, "/api/quizzes", modToken, draftBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, raw)
	}
	var created quizHeaderResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != string(domain.StatusPending) {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}

	// Players cannot see a quiz that is still in moderation.
	resp, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/quizzes/%d", created.ID), playerToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for pending quiz, got %d", resp.StatusCode)
	}

	resp, raw = env.do(t, http.MethodGet, "/api/quizzes/pending", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pending list: expected 200, got %d", resp.StatusCode)
	}
	var pending []quizHeaderResponse
	if err := json.Unmarshal(raw, &pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("expected the new quiz in the queue, got %+v", pending)
	}

	resp, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/api/quizzes/%d/approve", created.ID), adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/api/quizzes/%d/approve", created.ID), adminToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double approve: expected 409, got %d", resp.StatusCode)
	}

	resp, raw = env.do(t, http.MethodGet, fmt.Sprintf("/api/quizzes/%d", created.ID), playerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", resp.StatusCode)
	}
	if bytes.Contains(raw, []byte("isCorrect")) || bytes.Contains(raw, []byte("Correct")) {
		t.Fatalf("quiz detail must not leak the answer key: %s", raw)
	}
	var detail quizDetailResponse
	if err := json.Unmarshal(raw, &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if len(detail.Questions) != 1 || len(detail.Questions[0].Answers) != 2 {
		t.Fatalf("expected full question content, got %+v", detail)
	}
}

func TestRejectAndResubmitOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, modToken := env.seedUser(t, "mod@example.com", domain.RoleModerator)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)

	resp, raw := env.do(t, http.MethodPost, "/api/quizzes", modToken, draftBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created quizHeaderResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/api/quizzes/%d/reject", created.ID), adminToken, rejectRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank reason: expected 400, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/api/quizzes/%d/reject", created.ID), adminToken, rejectRequest{Reason: "too short"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d", resp.StatusCode)
	}

	update := draftBody()
	update.Title = "Capitals, revised"
	resp, raw = env.do(t, http.MethodPut, fmt.Sprintf("/api/quizzes/%d", created.ID), modToken, update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", resp.StatusCode, raw)
	}
	var updated quizHeaderResponse
	if err := json.Unmarshal(raw, &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != string(domain.StatusPending) || updated.Title != "Capitals, revised" {
		t.Fatalf("expected resubmitted quiz, got %+v", updated)
	}

	// Editing now conflicts again: the quiz is back in PENDING.
	resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/quizzes/%d", created.ID), modToken, update)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("edit pending: expected 409, got %d", resp.StatusCode)
	}
}

func TestReportRequestOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, modToken := env.seedUser(t, "mod@example.com", domain.RoleModerator)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)

	resp, raw := env.do(t, http.MethodPost, "/api/quizzes", modToken, draftBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created quizHeaderResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Reports only exist for approved quizzes.
	resp, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/report", created.ID), adminToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unapproved quiz, got %d", resp.StatusCode)
	}

	if _, err := env.quizzes.Approve(context.Background(), created.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	resp, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/report", created.ID), adminToken, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
}

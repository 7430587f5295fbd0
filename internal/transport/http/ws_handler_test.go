package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/domain"
)

func dialWS(t *testing.T, env *testEnv, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + env.server.URL[len("http"):] + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Event, msg.Data
}

func TestWSRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	u := "ws" + env.server.URL[len("http"):] + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestWSAuthorReceivesModerationEvents(t *testing.T) {
	env := newTestEnv(t)
	mod, modToken := env.seedUser(t, "mod@example.com", domain.RoleModerator)

	conn := dialWS(t, env, modToken)

	ctx := context.Background()
	quiz, err := env.quizzes.Create(ctx, mod.ID, domain.QuizDraft{
		Title:           "Capitals",
		DurationSeconds: 300,
		Questions: []domain.QuestionDraft{
			{
				Text:   "Capital of France?",
				Points: 10,
				Answers: []domain.AnswerDraft{
					{Text: "Paris", Correct: true},
					{Text: "Lyon"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if _, err := env.quizzes.Approve(ctx, quiz.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	event, data := readEvent(t, conn)
	if event != app.EventQuizApproved {
		t.Fatalf("expected %s, got %s", app.EventQuizApproved, event)
	}
	if data["status"] != string(domain.StatusApproved) {
		t.Fatalf("expected approved payload, got %+v", data)
	}
}

func TestWSAdminsReceiveQueueEvents(t *testing.T) {
	env := newTestEnv(t)
	mod, _ := env.seedUser(t, "mod@example.com", domain.RoleModerator)
	_, adminToken := env.seedUser(t, "admin@example.com", domain.RoleAdmin)

	conn := dialWS(t, env, adminToken)

	if _, err := env.quizzes.Create(context.Background(), mod.ID, domain.QuizDraft{
		Title:           "Capitals",
		DurationSeconds: 300,
		Questions: []domain.QuestionDraft{
			{
				Text:   "Capital of France?",
				Points: 10,
				Answers: []domain.AnswerDraft{
					{Text: "Paris", Correct: true},
					{Text: "Lyon"},
				},
			},
		},
	}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	event, _ := readEvent(t, conn)
	if event != app.EventQuizCreated {
		t.Fatalf("expected %s, got %s", app.EventQuizCreated, event)
	}
}

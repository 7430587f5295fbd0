package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/domain"
	"quizdeck-service/internal/infra/memory"
	"quizdeck-service/internal/notify"
)

// testEnv is a full stack on in-memory stores with synchronous scoring.
type testEnv struct {
	server   *httptest.Server
	tokens   *auth.TokenManager
	accounts *app.AccountService
	quizzes  *app.QuizService
	users    *memory.UserRepository
	mailer   *captureMailer
}

type captureMailer struct {
	mails []string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mails = append(m.mails, subject)
	return nil
}

func (m *captureMailer) SendWithAttachment(to, subject, body, filename, mimeType string, data []byte) error {
	return m.Send(to, subject, body)
}

type syncScorer struct {
	worker *app.ScoreWorker
}

func (d syncScorer) Dispatch(job app.ScoringJob) {
	d.worker.Process(context.Background(), job)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepository()
	attempts := memory.NewAttemptRepository()
	mailer := &captureMailer{}
	hub := notify.NewHub()
	tokens := auth.NewTokenManager("test-secret", time.Hour, memory.NewRevocationList())

	lockout := app.LockoutPolicy{Threshold: 3, LockDuration: 15 * time.Minute}
	accounts := app.NewAccountService(users, tokens, mailer, lockout)
	quizzes := app.NewQuizService(memory.NewQuizRepository(), memory.NewCache(), time.Minute, hub)

	worker := app.NewScoreWorker(attempts, users, hub, mailer, 0)
	attemptSvc := app.NewAttemptService(attempts, quizzes, users, syncScorer{worker: worker})
	reports := app.NewReportService(attemptSvc, mailer, notify.BuildQuizReportPDF)

	uploadDir := t.TempDir()
	handlers := Handlers{
		Auth:     NewAuthHandler(accounts),
		Users:    NewUserHandler(accounts),
		Quizzes:  NewQuizHandler(quizzes, accounts, reports),
		Attempts: NewAttemptHandler(attemptSvc),
		Uploads:  NewUploadHandler(accounts, uploadDir, "http://localhost:8080"),
		WS:       NewWSHandler(tokens, hub),
	}

	server := httptest.NewServer(NewRouter(tokens, handlers, uploadDir))
	t.Cleanup(server.Close)

	return &testEnv{
		server:   server,
		tokens:   tokens,
		accounts: accounts,
		quizzes:  quizzes,
		users:    users,
		mailer:   mailer,
	}
}

// seedUser registers an account and bumps it to the wanted role, returning
// the user and a valid bearer token.
func (e *testEnv) seedUser(t *testing.T, email string, role domain.Role) (domain.User, string) {
	t.Helper()
	ctx := context.Background()
	user, err := e.accounts.Register(ctx, app.RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "longenough",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if role != domain.RolePlayer {
		if user, err = e.accounts.ChangeRole(ctx, user.ID, role); err != nil {
			t.Fatalf("change role: %v", err)
		}
	}
	token, err := e.tokens.Issue(user.ID, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func draftBody() quizDraftRequest {
	return quizDraftRequest{
		Title:           "Capitals",
		DurationSeconds: 300,
		Questions: []questionDraftRequest{
			{
				Text:   "Capital of France?",
				Points: 10,
				Answers: []answerDraftRequest{
					{Text: "Paris", IsCorrect: true},
					{Text: "Lyon"},
				},
			},
		},
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/quizzes", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodGet, "/api/quizzes", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", resp.StatusCode)
	}
}

func TestRoleChecks(t *testing.T) {
	env := newTestEnv(t)
	_, playerToken := env.seedUser(t, "player@example.com", domain.RolePlayer)
	_, modToken := env.seedUser(t, "mod@example.com", domain.RoleModerator)

	resp, _ := env.do(t, http.MethodPost, "/api/quizzes", playerToken, draftBody())
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for player creating quiz, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodGet, "/api/quizzes/pending", modToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for moderator listing pending, got %d", resp.StatusCode)
	}
}

package app_test

import (
	"context"
	"sync"
	"time"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/domain"
)

// recordedEvent captures one broadcast for assertions.
type recordedEvent struct {
	UserID  int64
	Admins  bool
	Event   string
	Payload any
}

type recorderBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorderBroadcaster) ToUser(userID int64, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{UserID: userID, Event: event, Payload: payload})
}

func (r *recorderBroadcaster) ToAdmins(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Admins: true, Event: event, Payload: payload})
}

func (r *recorderBroadcaster) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

type recordedMail struct {
	To      string
	Subject string
}

type recorderMailer struct {
	mu    sync.Mutex
	mails []recordedMail
}

func (m *recorderMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, recordedMail{To: to, Subject: subject})
	return nil
}

func (m *recorderMailer) SendWithAttachment(to, subject, body, filename, mimeType string, data []byte) error {
	return m.Send(to, subject, body)
}

// inlineScorer runs the completion handler synchronously so tests see
// scores without waiting on goroutines.
type inlineScorer struct {
	worker *app.ScoreWorker
}

func (d inlineScorer) Dispatch(job app.ScoringJob) {
	d.worker.Process(context.Background(), job)
}

// noopScorer drops jobs; attempts stay in the scoring state.
type noopScorer struct{}

func (noopScorer) Dispatch(app.ScoringJob) {}

func validDraft() domain.QuizDraft {
	return domain.QuizDraft{
		Title:           "Capitals of Europe",
		DurationSeconds: 300,
		Questions: []domain.QuestionDraft{
			{
				Text:   "Capital of France?",
				Points: 10,
				Answers: []domain.AnswerDraft{
					{Text: "Paris", Correct: true},
					{Text: "Lyon"},
					{Text: "Nice"},
				},
			},
			{
				Text:   "Which are Nordic countries?",
				Points: 5,
				Answers: []domain.AnswerDraft{
					{Text: "Norway", Correct: true},
					{Text: "Sweden", Correct: true},
					{Text: "Poland"},
				},
			},
		},
	}
}

func mustTime(t string) time.Time {
	parsed, err := time.Parse(time.RFC3339, t)
	if err != nil {
		panic(err)
	}
	return parsed
}

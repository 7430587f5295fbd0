package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// ScoreWorker computes scores out of band. Jobs are fire-and-forget: the
// handler that enqueues one has already committed the finish timestamp and
// returned a processing status to the client. Completion is idempotent
// (the guarded score write), so a duplicate job is harmless; a job lost to
// a crash leaves the attempt in the scoring state, which the design
// accepts.
type ScoreWorker struct {
	attempts AttemptRepository
	users    UserRepository
	events   Broadcaster
	mailer   Mailer
	// delay simulates the heavier computation the scoring path is assumed
	// to carry; zero in tests.
	delay time.Duration

	jobs chan ScoringJob
	wg   sync.WaitGroup
	once sync.Once
}

func NewScoreWorker(attempts AttemptRepository, users UserRepository, events Broadcaster, mailer Mailer, delay time.Duration) *ScoreWorker {
	return &ScoreWorker{
		attempts: attempts,
		users:    users,
		events:   events,
		mailer:   mailer,
		delay:    delay,
		jobs:     make(chan ScoringJob, 64),
	}
}

// Start launches n scoring goroutines.
func (w *ScoreWorker) Start(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for job := range w.jobs {
				w.Process(context.Background(), job)
			}
		}()
	}
}

// Stop drains queued jobs and waits for in-flight ones.
func (w *ScoreWorker) Stop() {
	w.once.Do(func() { close(w.jobs) })
	w.wg.Wait()
}

// Dispatch enqueues a job for background processing.
func (w *ScoreWorker) Dispatch(job ScoringJob) {
	select {
	case w.jobs <- job:
	default:
		// Queue full; fall back to a detached goroutine rather than block
		// the request path.
		go w.Process(context.Background(), job)
	}
}

// Process scores one attempt and performs notification. Exported so tests
// and synchronous dispatchers can run the completion handler inline.
func (w *ScoreWorker) Process(ctx context.Context, job ScoringJob) {
	if !job.Expired && w.delay > 0 {
		time.Sleep(w.delay)
	}

	score := 0
	if !job.Expired {
		score = Score(job.Quiz, job.Answers)
	}

	won, err := w.attempts.SetScore(ctx, job.AttemptID, score)
	if err != nil {
		log.Printf("score attempt %d: %v", job.AttemptID, err)
		return
	}
	if !won {
		// Another completion already wrote the score.
		return
	}

	attempt, err := w.attempts.GetByID(ctx, job.AttemptID)
	if err != nil {
		log.Printf("load scored attempt %d: %v", job.AttemptID, err)
		return
	}

	event := ResultEvent{
		QuizID:          job.Quiz.ID,
		AttemptID:       attempt.ID,
		Score:           score,
		DurationSeconds: attempt.DurationSeconds(),
	}
	if attempt.FinishedAt != nil {
		event.FinishedAt = attempt.FinishedAt.UTC().Format(time.RFC3339)
	}
	w.events.ToUser(attempt.PlayerID, EventResultReady, event)

	player, err := w.users.GetByID(ctx, attempt.PlayerID)
	if err != nil || player.Email == "" {
		return
	}
	body := fmt.Sprintf("Your quiz result is ready.\n\nQuiz: %s\nScore: %d\n", job.Quiz.Title, score)
	if err := w.mailer.Send(player.Email, "Quiz Result", body); err != nil {
		log.Printf("result mail to %s failed: %v", player.Email, err)
	}
}

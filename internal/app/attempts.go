package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quizdeck-service/internal/domain"
)

// ScoringJob is the unit of work handed to the background scorer after an
// attempt is finalized. Expired jobs ignore the answers and force a zero.
type ScoringJob struct {
	AttemptID int64
	Quiz      domain.Quiz
	Answers   domain.AnswerSheet
	Expired   bool
}

// ScoringDispatcher hands a job to the out-of-band scorer. Dispatch must
// not block the request path.
type ScoringDispatcher interface {
	Dispatch(job ScoringJob)
}

// AttemptService runs the per (quiz, player) attempt state machine:
// not-started -> in-progress -> scoring -> scored. Finish timestamps are
// committed synchronously so duplicate-submission checks are race-free;
// the score arrives later from the dispatcher.
type AttemptService struct {
	attempts AttemptRepository
	quizzes  *QuizService
	users    UserRepository
	scorer   ScoringDispatcher
	now      func() time.Time
}

func NewAttemptService(attempts AttemptRepository, quizzes *QuizService, users UserRepository, scorer ScoringDispatcher) *AttemptService {
	return &AttemptService{
		attempts: attempts,
		quizzes:  quizzes,
		users:    users,
		scorer:   scorer,
		now:      time.Now,
	}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(attempts AttemptRepository, quizzes *QuizService, users UserRepository, scorer ScoringDispatcher, now func() time.Time) *AttemptService {
	s := NewAttemptService(attempts, quizzes, users, scorer)
	s.now = now
	return s
}

func (s *AttemptService) approvedQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := s.quizzes.Load(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Status != domain.StatusApproved {
		return domain.Quiz{}, domain.ErrQuizNotAvailable
	}
	return quiz, nil
}

// Start opens an attempt, or returns the existing unfinished one
// idempotently. Concurrent starts for the same pair converge on a single
// row via the store's unique constraint.
func (s *AttemptService) Start(ctx context.Context, quizID, playerID int64) (domain.Attempt, bool, error) {
	if _, err := s.approvedQuiz(ctx, quizID); err != nil {
		return domain.Attempt{}, false, err
	}
	attempt, created, err := s.attempts.GetOrCreate(ctx, quizID, playerID, s.now())
	if err != nil {
		return domain.Attempt{}, false, err
	}
	if !created && attempt.Finished() {
		return domain.Attempt{}, false, domain.ErrAttemptFinished
	}
	return attempt, created, nil
}

// SubmitResult reports how a submission was accepted.
type SubmitResult struct {
	AttemptID int64
	// Expired is true when the quiz duration had elapsed; the answers were
	// ignored and a zero score is being recorded.
	Expired bool
}

// Submit finalizes an in-progress attempt and dispatches scoring. The
// finish time is the server's clock, or derived from the client-reported
// remaining seconds when that value is consistent (non-negative and at
// most the quiz duration), so the stored duration agrees with the
// countdown the player saw.
func (s *AttemptService) Submit(ctx context.Context, quizID, playerID int64, answers domain.AnswerSheet, remainingSeconds *int) (SubmitResult, error) {
	quiz, err := s.approvedQuiz(ctx, quizID)
	if err != nil {
		return SubmitResult{}, err
	}

	attempt, err := s.attempts.Get(ctx, quizID, playerID)
	if err != nil {
		if errors.Is(err, domain.ErrAttemptNotFound) {
			return SubmitResult{}, domain.ErrAttemptNotStarted
		}
		return SubmitResult{}, err
	}
	if attempt.Finished() {
		if !attempt.Scored() {
			return SubmitResult{}, domain.ErrResultProcessing
		}
		return SubmitResult{}, domain.ErrAttemptFinished
	}

	now := s.now()
	elapsed := now.Sub(attempt.StartedAt)
	if elapsed > time.Duration(quiz.DurationSeconds)*time.Second {
		won, err := s.attempts.Finish(ctx, attempt.ID, now)
		if err != nil {
			return SubmitResult{}, err
		}
		if won {
			s.scorer.Dispatch(ScoringJob{AttemptID: attempt.ID, Quiz: quiz, Expired: true})
		}
		return SubmitResult{AttemptID: attempt.ID, Expired: true}, nil
	}

	if err := validateAnswers(quiz, answers); err != nil {
		return SubmitResult{}, err
	}

	finishedAt := now
	if remainingSeconds != nil {
		remaining := *remainingSeconds
		if remaining >= 0 && remaining <= quiz.DurationSeconds {
			finishedAt = attempt.StartedAt.Add(time.Duration(quiz.DurationSeconds-remaining) * time.Second)
		}
	}

	won, err := s.attempts.Finish(ctx, attempt.ID, finishedAt)
	if err != nil {
		return SubmitResult{}, err
	}
	if !won {
		return SubmitResult{}, domain.ErrAttemptFinished
	}
	s.scorer.Dispatch(ScoringJob{AttemptID: attempt.ID, Quiz: quiz, Answers: answers})
	return SubmitResult{AttemptID: attempt.ID}, nil
}

// validateAnswers rejects the whole submission when any referenced
// question is foreign, any answer list is empty, or any option id does not
// belong to its question.
func validateAnswers(quiz domain.Quiz, answers domain.AnswerSheet) error {
	for questionID, chosen := range answers {
		question := quiz.QuestionByID(questionID)
		if question == nil {
			return fmt.Errorf("%w: question %d does not belong to this quiz", domain.ErrInvalidAnswer, questionID)
		}
		if len(chosen) == 0 {
			return fmt.Errorf("%w: answerIds must be non-empty for question %d", domain.ErrInvalidAnswer, questionID)
		}
		valid := make(map[int64]struct{}, len(question.Options))
		for _, o := range question.Options {
			valid[o.ID] = struct{}{}
		}
		for _, id := range chosen {
			if _, ok := valid[id]; !ok {
				return fmt.Errorf("%w: invalid answerIds for question %d", domain.ErrInvalidAnswer, questionID)
			}
		}
	}
	return nil
}

// ResultView is the scored outcome of an attempt.
type ResultView struct {
	QuizID          int64
	PlayerID        int64
	AttemptID       int64
	Score           int
	DurationSeconds int
	FinishedAt      time.Time
}

// Result reports the player's outcome for a quiz. An in-progress attempt
// whose time has expired is lazily finalized here, as a side effect of the
// read, and reported as still processing.
func (s *AttemptService) Result(ctx context.Context, quizID, playerID int64) (ResultView, error) {
	quiz, err := s.quizzes.Load(ctx, quizID)
	if err != nil {
		return ResultView{}, err
	}
	attempt, err := s.attempts.Get(ctx, quizID, playerID)
	if err != nil {
		return ResultView{}, err
	}

	now := s.now()
	if !attempt.Finished() {
		if now.Sub(attempt.StartedAt) > time.Duration(quiz.DurationSeconds)*time.Second {
			won, err := s.attempts.Finish(ctx, attempt.ID, now)
			if err != nil {
				return ResultView{}, err
			}
			if won {
				s.scorer.Dispatch(ScoringJob{AttemptID: attempt.ID, Quiz: quiz, Expired: true})
			}
			return ResultView{}, domain.ErrResultProcessing
		}
		return ResultView{}, domain.ErrAttemptNotFinished
	}
	if !attempt.Scored() {
		return ResultView{}, domain.ErrResultProcessing
	}

	return ResultView{
		QuizID:          quizID,
		PlayerID:        playerID,
		AttemptID:       attempt.ID,
		Score:           *attempt.Score,
		DurationSeconds: attempt.DurationSeconds(),
		FinishedAt:      *attempt.FinishedAt,
	}, nil
}

// LeaderboardRow is one finished attempt enriched with player identity.
type LeaderboardRow struct {
	PlayerID        int64
	Name            string
	Email           string
	Score           int
	DurationSeconds int
	FinishedAt      time.Time
}

const leaderboardLimit = 50

// Leaderboard lists scored attempts for an approved quiz, best first.
func (s *AttemptService) Leaderboard(ctx context.Context, quizID int64) ([]LeaderboardRow, error) {
	quiz, err := s.quizzes.Load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status != domain.StatusApproved {
		return nil, domain.ErrQuizNotFound
	}

	attempts, err := s.attempts.ListFinished(ctx, quizID, leaderboardLimit)
	if err != nil {
		return nil, err
	}
	rows := make([]LeaderboardRow, 0, len(attempts))
	for _, a := range attempts {
		row := LeaderboardRow{
			PlayerID:        a.PlayerID,
			DurationSeconds: a.DurationSeconds(),
		}
		if a.Score != nil {
			row.Score = *a.Score
		}
		if a.FinishedAt != nil {
			row.FinishedAt = *a.FinishedAt
		}
		if user, err := s.users.GetByID(ctx, a.PlayerID); err == nil {
			row.Name = user.FirstName + " " + user.LastName
			row.Email = user.Email
		}
		rows = append(rows, row)
	}
	return rows, nil
}

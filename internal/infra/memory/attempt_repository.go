package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizdeck-service/internal/domain"
)

type attemptKey struct {
	quizID   int64
	playerID int64
}

// AttemptRepository is an in-memory implementation of
// app.AttemptRepository. The pair map stands in for the store-level unique
// constraint on (quiz, player).
type AttemptRepository struct {
	mu       sync.Mutex
	nextID   int64
	attempts map[int64]domain.Attempt
	byPair   map[attemptKey]int64
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{
		nextID:   1,
		attempts: make(map[int64]domain.Attempt),
		byPair:   make(map[attemptKey]int64),
	}
}

func (r *AttemptRepository) GetOrCreate(_ context.Context, quizID, playerID int64, startedAt time.Time) (domain.Attempt, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := attemptKey{quizID, playerID}
	if id, ok := r.byPair[key]; ok {
		return r.attempts[id], false, nil
	}
	attempt := domain.Attempt{
		ID:        r.nextID,
		QuizID:    quizID,
		PlayerID:  playerID,
		StartedAt: startedAt,
	}
	r.nextID++
	r.attempts[attempt.ID] = attempt
	r.byPair[key] = attempt.ID
	return attempt, true, nil
}

func (r *AttemptRepository) Get(_ context.Context, quizID, playerID int64) (domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPair[attemptKey{quizID, playerID}]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return r.attempts[id], nil
}

func (r *AttemptRepository) GetByID(_ context.Context, id int64) (domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[id]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (r *AttemptRepository) Finish(_ context.Context, id int64, finishedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[id]
	if !ok {
		return false, domain.ErrAttemptNotFound
	}
	if attempt.FinishedAt != nil {
		return false, nil
	}
	attempt.FinishedAt = &finishedAt
	r.attempts[id] = attempt
	return true, nil
}

func (r *AttemptRepository) SetScore(_ context.Context, id int64, score int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt, ok := r.attempts[id]
	if !ok {
		return false, domain.ErrAttemptNotFound
	}
	if attempt.Score != nil {
		return false, nil
	}
	attempt.Score = &score
	r.attempts[id] = attempt
	return true, nil
}

func (r *AttemptRepository) ListFinished(_ context.Context, quizID int64, limit int) ([]domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attempt
	for _, a := range r.attempts {
		if a.QuizID == quizID && a.FinishedAt != nil {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := -1, -1
		if out[i].Score != nil {
			si = *out[i].Score
		}
		if out[j].Score != nil {
			sj = *out[j].Score
		}
		if si != sj {
			return si > sj
		}
		return out[i].FinishedAt.Before(*out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

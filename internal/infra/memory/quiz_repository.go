package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizdeck-service/internal/domain"
)

// QuizRepository is an in-memory implementation of app.QuizRepository.
type QuizRepository struct {
	mu      sync.RWMutex
	nextID  int64
	quizzes map[int64]domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{
		nextID:  1,
		quizzes: make(map[int64]domain.Quiz),
	}
}

func (r *QuizRepository) Create(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.nextID
	r.nextID++
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}
	r.assignContentIDs(quiz)
	r.quizzes[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

// assignContentIDs hands out question/option ids from the same counter the
// way serial columns would.
func (r *QuizRepository) assignContentIDs(quiz *domain.Quiz) {
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		q.ID = r.nextID
		r.nextID++
		q.QuizID = quiz.ID
		for j := range q.Options {
			q.Options[j].ID = r.nextID
			r.nextID++
			q.Options[j].QuestionID = q.ID
		}
	}
}

func (r *QuizRepository) Get(_ context.Context, id int64) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (r *QuizRepository) ListByStatus(_ context.Context, status domain.QuizStatus) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range r.quizzes {
		if quiz.Status == status {
			header := quiz
			header.Questions = nil
			out = append(out, header)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuizRepository) ListByAuthor(_ context.Context, authorID int64) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range r.quizzes {
		if quiz.AuthorID == authorID {
			header := quiz
			header.Questions = nil
			out = append(out, header)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuizRepository) UpdateStatus(_ context.Context, id int64, from, to domain.QuizStatus, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if quiz.Status != from {
		return statusConflict(from)
	}
	quiz.Status = to
	quiz.RejectionReason = reason
	r.quizzes[id] = quiz
	return nil
}

func (r *QuizRepository) ReplaceContent(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	if existing.Status != domain.StatusRejected {
		return domain.ErrQuizNotRejected
	}
	quiz.Status = domain.StatusPending
	quiz.RejectionReason = ""
	quiz.CreatedAt = existing.CreatedAt
	r.assignContentIDs(quiz)
	r.quizzes[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

func statusConflict(from domain.QuizStatus) error {
	if from == domain.StatusRejected {
		return domain.ErrQuizNotRejected
	}
	return domain.ErrQuizNotPending
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	out := quiz
	out.Questions = make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		cq := q
		cq.Options = append([]domain.Option(nil), q.Options...)
		out.Questions[i] = cq
	}
	return out
}

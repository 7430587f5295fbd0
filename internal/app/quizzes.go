package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"quizdeck-service/internal/domain"
)

// Cache key prefixes; each prefix is one invalidation scope.
const (
	cacheKeyApprovedList = "quiz:list:approved"
	cacheKeyDetailPrefix = "quiz:detail:"
	cacheKeyListPrefix   = "quiz:list:"
)

// QuizService covers authoring, the moderation state machine, and catalog
// reads. Reads of approved content go through a TTL cache; every mutation
// invalidates the affected scopes.
type QuizService struct {
	quizzes  QuizRepository
	cache    Cache
	cacheTTL time.Duration
	events   Broadcaster
	sf       singleflight.Group
}

func NewQuizService(quizzes QuizRepository, cache Cache, cacheTTL time.Duration, events Broadcaster) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		cache:    cache,
		cacheTTL: cacheTTL,
		events:   events,
	}
}

// Create validates and persists a draft all-or-nothing, then notifies
// connected admins that a quiz awaits moderation.
func (s *QuizService) Create(ctx context.Context, authorID int64, draft domain.QuizDraft) (domain.Quiz, error) {
	if err := draft.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	quiz := draft.Build(authorID)
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.cache.DeleteByPrefix(ctx, cacheKeyListPrefix)

	s.events.ToAdmins(EventQuizCreated, QuizEvent{
		QuizID:   quiz.ID,
		Title:    quiz.Title,
		Status:   quiz.Status,
		AuthorID: quiz.AuthorID,
	})
	return quiz, nil
}

// Approve transitions a PENDING quiz to APPROVED.
func (s *QuizService) Approve(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.UpdateStatus(ctx, quizID, domain.StatusPending, domain.StatusApproved, ""); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Status = domain.StatusApproved
	quiz.RejectionReason = ""
	s.invalidateQuiz(ctx, quizID)

	s.events.ToUser(quiz.AuthorID, EventQuizApproved, QuizEvent{
		QuizID:   quiz.ID,
		Title:    quiz.Title,
		Status:   quiz.Status,
		AuthorID: quiz.AuthorID,
	})
	return quiz, nil
}

// Reject transitions a PENDING quiz to REJECTED with a non-empty reason.
func (s *QuizService) Reject(ctx context.Context, quizID int64, reason string) (domain.Quiz, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Quiz{}, fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.UpdateStatus(ctx, quizID, domain.StatusPending, domain.StatusRejected, reason); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Status = domain.StatusRejected
	quiz.RejectionReason = reason
	s.invalidateQuiz(ctx, quizID)

	s.events.ToUser(quiz.AuthorID, EventQuizRejected, QuizEvent{
		QuizID:   quiz.ID,
		Title:    quiz.Title,
		Status:   quiz.Status,
		AuthorID: quiz.AuthorID,
		Reason:   reason,
	})
	return quiz, nil
}

// Update rewrites a REJECTED quiz's content and resubmits it as PENDING
// with the rejection reason cleared. Only the author or an admin may edit.
func (s *QuizService) Update(ctx context.Context, callerID int64, callerRole domain.Role, quizID int64, draft domain.QuizDraft) (domain.Quiz, error) {
	existing, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if callerRole != domain.RoleAdmin && existing.AuthorID != callerID {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if existing.Status != domain.StatusRejected {
		return domain.Quiz{}, domain.ErrQuizNotRejected
	}
	if err := draft.Validate(); err != nil {
		return domain.Quiz{}, err
	}

	quiz := draft.Build(existing.AuthorID)
	quiz.ID = quizID
	quiz.CreatedAt = existing.CreatedAt
	if err := s.quizzes.ReplaceContent(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.invalidateQuiz(ctx, quizID)
	return quiz, nil
}

// Get loads a quiz for display. Players may only see approved quizzes.
// Detail reads of the same quiz collapse onto one load under cache misses.
func (s *QuizService) Get(ctx context.Context, quizID int64, callerRole domain.Role) (domain.Quiz, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if callerRole == domain.RolePlayer && quiz.Status != domain.StatusApproved {
		return domain.Quiz{}, domain.ErrQuizNotAvailable
	}
	return quiz, nil
}

// Load fetches the full quiz without role filtering; for internal callers
// such as the attempt workflow.
func (s *QuizService) Load(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.load(ctx, quizID)
}

func (s *QuizService) load(ctx context.Context, quizID int64) (domain.Quiz, error) {
	key := cacheKeyDetailPrefix + strconv.FormatInt(quizID, 10)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		quiz, err := s.quizzes.Get(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			s.cache.Set(ctx, key, raw, s.cacheTTL)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// ListApproved returns approved quiz headers through the list cache.
func (s *QuizService) ListApproved(ctx context.Context) ([]domain.Quiz, error) {
	if raw, ok := s.cache.Get(ctx, cacheKeyApprovedList); ok {
		var quizzes []domain.Quiz
		if err := json.Unmarshal(raw, &quizzes); err == nil {
			return quizzes, nil
		}
	}
	quizzes, err := s.quizzes.ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(quizzes); err == nil {
		s.cache.Set(ctx, cacheKeyApprovedList, raw, s.cacheTTL)
	}
	return quizzes, nil
}

// ListPending returns quizzes awaiting moderation.
func (s *QuizService) ListPending(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListByStatus(ctx, domain.StatusPending)
}

// ListMine returns the caller's authored quizzes in every status.
func (s *QuizService) ListMine(ctx context.Context, authorID int64) ([]domain.Quiz, error) {
	return s.quizzes.ListByAuthor(ctx, authorID)
}

func (s *QuizService) invalidateQuiz(ctx context.Context, quizID int64) {
	s.cache.DeleteByPrefix(ctx, cacheKeyDetailPrefix+strconv.FormatInt(quizID, 10))
	s.cache.DeleteByPrefix(ctx, cacheKeyListPrefix)
}

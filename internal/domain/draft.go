package domain

import (
	"fmt"
	"strings"
)

// QuizDraft is the authoring input for creating or re-submitting a quiz.
type QuizDraft struct {
	Title           string
	DurationSeconds int
	Questions       []QuestionDraft
}

// QuestionDraft is one question of a draft.
type QuestionDraft struct {
	Text    string
	Points  int
	Answers []AnswerDraft
}

// AnswerDraft is one answer option of a draft question.
type AnswerDraft struct {
	Text    string
	Correct bool
}

// Validate enforces the structural rules for quiz content: non-empty title,
// positive duration, at least one question, and per question non-empty text,
// positive points, at least two answers and at least one correct one.
// Callers persist the draft all-or-nothing only after Validate passes.
func (d QuizDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if d.DurationSeconds <= 0 {
		return fmt.Errorf("%w: durationSeconds must be a positive integer", ErrValidation)
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: questions must be a non-empty list", ErrValidation)
	}
	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d must have text", ErrValidation, i+1)
		}
		if q.Points <= 0 {
			return fmt.Errorf("%w: question %d points must be a positive integer", ErrValidation, i+1)
		}
		if len(q.Answers) < 2 {
			return fmt.Errorf("%w: question %d must have at least 2 answers", ErrValidation, i+1)
		}
		correct := 0
		for _, a := range q.Answers {
			if strings.TrimSpace(a.Text) == "" {
				return fmt.Errorf("%w: question %d has an answer without text", ErrValidation, i+1)
			}
			if a.Correct {
				correct++
			}
		}
		if correct < 1 {
			return fmt.Errorf("%w: question %d must have at least 1 correct answer", ErrValidation, i+1)
		}
	}
	return nil
}

// Build converts a validated draft into quiz content for persistence.
// Status starts at PENDING and ids are assigned by the store.
func (d QuizDraft) Build(authorID int64) Quiz {
	quiz := Quiz{
		Title:           strings.TrimSpace(d.Title),
		DurationSeconds: d.DurationSeconds,
		Status:          StatusPending,
		AuthorID:        authorID,
	}
	for _, qd := range d.Questions {
		question := Question{
			Text:   strings.TrimSpace(qd.Text),
			Points: qd.Points,
		}
		for _, ad := range qd.Answers {
			question.Options = append(question.Options, Option{
				Text:    strings.TrimSpace(ad.Text),
				Correct: ad.Correct,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

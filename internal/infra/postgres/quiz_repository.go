package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizdeck-service/internal/domain"
)

// QuizRepository persists the quiz/question/option hierarchy in Postgres.
// Multi-row writes run in a transaction so a failed insert leaves nothing
// behind; deletes cascade quiz -> questions -> options at the schema level.
type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (title, duration_seconds, status, author_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		quiz.Title, quiz.DurationSeconds, string(quiz.Status), quiz.AuthorID,
	).Scan(&quiz.ID, &quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	if err := insertContent(ctx, tx, quiz); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertContent(ctx context.Context, tx pgx.Tx, quiz *domain.Quiz) error {
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		q.QuizID = quiz.ID
		err := tx.QueryRow(ctx,
			`INSERT INTO questions (quiz_id, text, points) VALUES ($1, $2, $3) RETURNING id`,
			quiz.ID, q.Text, q.Points,
		).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		for j := range q.Options {
			o := &q.Options[j]
			o.QuestionID = q.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO answer_options (question_id, text, is_correct) VALUES ($1, $2, $3) RETURNING id`,
				q.ID, o.Text, o.Correct,
			).Scan(&o.ID)
			if err != nil {
				return fmt.Errorf("insert answer option: %w", err)
			}
		}
	}
	return nil
}

func (r *QuizRepository) Get(ctx context.Context, id int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_seconds, status, COALESCE(rejection_reason, ''), author_id, created_at FROM quizzes WHERE id = $1`,
		id,
	).Scan(&quiz.ID, &quiz.Title, &quiz.DurationSeconds, &status, &quiz.RejectionReason, &quiz.AuthorID, &quiz.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Status = domain.QuizStatus(status)

	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, text, points FROM questions WHERE quiz_id = $1 ORDER BY id`, id)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()
	index := make(map[int64]int)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Points); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(quiz.Questions)
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, err
	}

	optRows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.text, o.is_correct
		 FROM answer_options o
		 JOIN questions q ON q.id = o.question_id
		 WHERE q.quiz_id = $1
		 ORDER BY o.id`, id)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load answer options: %w", err)
	}
	defer optRows.Close()
	for optRows.Next() {
		var o domain.Option
		if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.Correct); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan answer option: %w", err)
		}
		if i, ok := index[o.QuestionID]; ok {
			quiz.Questions[i].Options = append(quiz.Questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (r *QuizRepository) listHeaders(ctx context.Context, where sq.Eq) ([]domain.Quiz, error) {
	query, args, err := psql.Select("id", "title", "duration_seconds", "status", "COALESCE(rejection_reason, '')", "author_id", "created_at").
		From("quizzes").
		Where(where).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		var quiz domain.Quiz
		var status string
		if err := rows.Scan(&quiz.ID, &quiz.Title, &quiz.DurationSeconds, &status, &quiz.RejectionReason, &quiz.AuthorID, &quiz.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz.Status = domain.QuizStatus(status)
		out = append(out, quiz)
	}
	return out, rows.Err()
}

func (r *QuizRepository) ListByStatus(ctx context.Context, status domain.QuizStatus) ([]domain.Quiz, error) {
	return r.listHeaders(ctx, sq.Eq{"status": string(status)})
}

func (r *QuizRepository) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Quiz, error) {
	return r.listHeaders(ctx, sq.Eq{"author_id": authorID})
}

func (r *QuizRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.QuizStatus, reason string) error {
	var reasonArg interface{}
	if reason != "" {
		reasonArg = reason
	}
	query, args, err := psql.Update("quizzes").
		Set("status", string(to)).
		Set("rejection_reason", reasonArg).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update quiz status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return statusConflict(ctx, r.pool, id, from)
	}
	return nil
}

func (r *QuizRepository) ReplaceContent(ctx context.Context, quiz *domain.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE quizzes SET title = $1, duration_seconds = $2, status = $3, rejection_reason = NULL
		 WHERE id = $4 AND status = $5`,
		quiz.Title, quiz.DurationSeconds, string(domain.StatusPending), quiz.ID, string(domain.StatusRejected),
	)
	if err != nil {
		return fmt.Errorf("update quiz content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return statusConflict(ctx, r.pool, quiz.ID, domain.StatusRejected)
	}

	// Cascades to answer_options.
	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quiz.ID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if err := insertContent(ctx, tx, quiz); err != nil {
		return err
	}
	quiz.Status = domain.StatusPending
	quiz.RejectionReason = ""
	return tx.Commit(ctx)
}

// statusConflict distinguishes a missing quiz from one in the wrong state
// after a guarded update touched no rows.
func statusConflict(ctx context.Context, pool *pgxpool.Pool, id int64, from domain.QuizStatus) error {
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check quiz exists: %w", err)
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	if from == domain.StatusRejected {
		return domain.ErrQuizNotRejected
	}
	return domain.ErrQuizNotPending
}

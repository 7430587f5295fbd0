package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizdeck-service/internal/domain"
)

// AttemptRepository persists quiz attempts. The unique constraint on
// (quiz_id, player_id) enforces the one-attempt-per-pair invariant even
// under concurrent starts; the guarded finish/score updates keep the
// two-phase finalization idempotent.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = "id, quiz_id, player_id, started_at, finished_at, score"

func scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var a domain.Attempt
	err := row.Scan(&a.ID, &a.QuizID, &a.PlayerID, &a.StartedAt, &a.FinishedAt, &a.Score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attempt{}, domain.ErrAttemptNotFound
		}
		return domain.Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	return a, nil
}

func (r *AttemptRepository) GetOrCreate(ctx context.Context, quizID, playerID int64, startedAt time.Time) (domain.Attempt, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quiz_attempts (quiz_id, player_id, started_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (quiz_id, player_id) DO NOTHING
		 RETURNING id`,
		quizID, playerID, startedAt,
	).Scan(&id)
	if err == nil {
		return domain.Attempt{ID: id, QuizID: quizID, PlayerID: playerID, StartedAt: startedAt}, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, fmt.Errorf("insert attempt: %w", err)
	}

	// Lost the insert: observe the row the other starter created.
	attempt, err := r.Get(ctx, quizID, playerID)
	if err != nil {
		return domain.Attempt{}, false, err
	}
	return attempt, false, nil
}

func (r *AttemptRepository) Get(ctx context.Context, quizID, playerID int64) (domain.Attempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE quiz_id = $1 AND player_id = $2`,
		quizID, playerID)
	return scanAttempt(row)
}

func (r *AttemptRepository) GetByID(ctx context.Context, id int64) (domain.Attempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id)
	return scanAttempt(row)
}

func (r *AttemptRepository) Finish(ctx context.Context, id int64, finishedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_attempts SET finished_at = $1 WHERE id = $2 AND finished_at IS NULL`,
		finishedAt, id)
	if err != nil {
		return false, fmt.Errorf("finish attempt: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AttemptRepository) SetScore(ctx context.Context, id int64, score int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_attempts SET score = $1 WHERE id = $2 AND score IS NULL`,
		score, id)
	if err != nil {
		return false, fmt.Errorf("set score: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AttemptRepository) ListFinished(ctx context.Context, quizID int64, limit int) ([]domain.Attempt, error) {
	query, args, err := psql.Select("id", "quiz_id", "player_id", "started_at", "finished_at", "score").
		From("quiz_attempts").
		Where(sq.Eq{"quiz_id": quizID}).
		Where("finished_at IS NOT NULL").
		OrderBy("score DESC NULLS LAST", "finished_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		if err := rows.Scan(&a.ID, &a.QuizID, &a.PlayerID, &a.StartedAt, &a.FinishedAt, &a.Score); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

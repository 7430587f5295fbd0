package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

// psql builds $n-placeholder queries for Postgres.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Connect opens a pgx connection pool for the given DSN.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	return pgxpool.Connect(ctx, url)
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

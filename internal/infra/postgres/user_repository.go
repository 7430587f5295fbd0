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

// UserRepository persists users in Postgres.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var userColumns = []string{
	"id", "first_name", "last_name", "email", "password_hash",
	"birth_date", "gender", "country", "street", "street_number",
	"profile_image", "role", "created_at", "failed_login_attempts", "locked_until",
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.BirthDate, &u.Gender, &u.Country, &u.Street, &u.StreetNumber,
		&u.ProfileImage, &role, &u.CreatedAt, &u.FailedLoginAttempts, &u.LockedUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query, args, err := psql.Insert("users").
		Columns("first_name", "last_name", "email", "password_hash", "role", "created_at").
		Values(user.FirstName, user.LastName, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	query, args, err := psql.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("birth_date", user.BirthDate).
		Set("gender", user.Gender).
		Set("country", user.Country).
		Set("street", user.Street).
		Set("street_number", user.StreetNumber).
		Set("profile_image", user.ProfileImage).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) RecordLoginOutcome(ctx context.Context, id int64, failedAttempts int, lockedUntil *time.Time) error {
	query, args, err := psql.Update("users").
		Set("failed_login_attempts", failedAttempts).
		Set("locked_until", lockedUntil).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("record login outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	query, args, err := psql.Update("users").
		Set("role", string(role)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, id int64, url string) error {
	query, args, err := psql.Update("users").
		Set("profile_image", url).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

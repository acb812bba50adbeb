package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"imager/internal/domain/models"
	"imager/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var userColumns = []string{
	"id",
	"username",
	"email",
	"first_name",
	"last_name",
	"password",
	"is_active",
	"date_joined",
	"last_login",
}

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: newBuilder(),
	}
}

// CreateUserWithProfile inserts the account and its empty profile in one
// transaction. A taken username yields storage.ErrUserExists.
func (r *UserRepo) CreateUserWithProfile(ctx context.Context, user models.User) (int64, error) {
	const op = "repository.user_repository.CreateUserWithProfile"

	joined := user.DateJoined
	if joined.IsZero() {
		joined = time.Now().UTC()
	}

	userSQL, userArgs, err := r.sb.Insert("users").
		Columns(
			"username",
			"email",
			"first_name",
			"last_name",
			"password",
			"is_active",
			"date_joined",
		).
		Values(
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.Password,
			user.IsActive,
			joined,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err = withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, userSQL, userArgs...).Scan(&id); err != nil {
			if isUniqueViolation(err) {
				return storage.ErrUserExists
			}
			return err
		}

		profileSQL, profileArgs, err := r.sb.Insert("profiles").
			Columns("user_id").
			Values(id).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, profileSQL, profileArgs...)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *UserRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	const op = "repository.user_repository.UserByID"

	user, err := r.user(ctx, sq.Eq{"id": id})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *UserRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "repository.user_repository.UserByUsername"

	user, err := r.user(ctx, sq.Eq{"username": username})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *UserRepo) user(ctx context.Context, where sq.Eq) (models.User, error) {
	query, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("can't build sql: %w", err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Password,
		&user.IsActive,
		&user.DateJoined,
		&user.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (r *UserRepo) ActivateUser(ctx context.Context, id int64) error {
	const op = "repository.user_repository.ActivateUser"

	return r.setColumn(ctx, op, id, "is_active", true)
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const op = "repository.user_repository.TouchLastLogin"

	return r.setColumn(ctx, op, id, "last_login", at.UTC())
}

func (r *UserRepo) setColumn(ctx context.Context, op string, id int64, column string, value interface{}) error {
	query, args, err := r.sb.Update("users").
		Set(column, value).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

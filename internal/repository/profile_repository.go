package repository

import (
	"context"
	"errors"
	"fmt"

	"imager/internal/domain/models"
	"imager/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type ProfileRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{
		db: db,
		sb: newBuilder(),
	}
}

func (r *ProfileRepo) selectProfiles() sq.SelectBuilder {
	return r.sb.Select(
		"p.user_id",
		"u.username",
		"p.website",
		"p.location",
		"p.fee::text",
		"p.camera",
		"p.services",
		"p.photostyles",
		"p.bio",
		"p.phone",
		"p.is_active",
	).
		From("profiles p").
		Join("users u ON u.id = p.user_id")
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var (
		p      models.Profile
		camera string
	)
	err := row.Scan(
		&p.UserID,
		&p.Username,
		&p.Website,
		&p.Location,
		&p.Fee,
		&camera,
		pq.Array(&p.Services),
		pq.Array(&p.PhotoStyles),
		&p.Bio,
		&p.Phone,
		&p.IsActive,
	)
	p.Camera = models.CameraType(camera)
	return p, err
}

func (r *ProfileRepo) ProfileByUserID(ctx context.Context, userID int64) (models.Profile, error) {
	const op = "repository.profile_repository.ProfileByUserID"

	query, args, err := r.selectProfiles().
		Where(sq.Eq{"p.user_id": userID}).
		ToSql()
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	profile, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}

// UpdateProfile saves the account's name and email together with the
// profile fields, so neither half is persisted without the other.
func (r *ProfileRepo) UpdateProfile(ctx context.Context, user models.User, profile models.Profile) error {
	const op = "repository.profile_repository.UpdateProfile"

	userSQL, userArgs, err := r.sb.Update("users").
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	profileSQL, profileArgs, err := r.sb.Update("profiles").
		Set("website", profile.Website).
		Set("location", profile.Location).
		Set("fee", sq.Expr("?::text::numeric", profile.Fee)).
		Set("camera", string(profile.Camera)).
		Set("services", pq.Array(nonNil(profile.Services))).
		Set("photostyles", pq.Array(nonNil(profile.PhotoStyles))).
		Set("bio", profile.Bio).
		Set("phone", profile.Phone).
		Set("is_active", profile.IsActive).
		Where(sq.Eq{"user_id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	err = withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, userSQL, userArgs...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrUserNotFound
		}

		_, err = tx.Exec(ctx, profileSQL, profileArgs...)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListActive returns profiles whose account and profile are both active,
// ordered by username.
func (r *ProfileRepo) ListActive(ctx context.Context) ([]models.Profile, error) {
	const op = "repository.profile_repository.ListActive"

	query, args, err := r.selectProfiles().
		Where(sq.Eq{"u.is_active": true, "p.is_active": true}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return profiles, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

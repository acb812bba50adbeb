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

type PhotoRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{
		db: db,
		sb: newBuilder(),
	}
}

func (r *PhotoRepo) CreatePhoto(ctx context.Context, photo models.Photo) (int64, error) {
	const op = "repository.photo_repository.CreatePhoto"

	now := time.Now().UTC()
	if photo.DateUploaded.IsZero() {
		photo.DateUploaded = now
	}
	if photo.DateModified.IsZero() {
		photo.DateModified = photo.DateUploaded
	}

	query, args, err := r.sb.Insert("photos").
		Columns(
			"owner_id",
			"image",
			"title",
			"description",
			"date_uploaded",
			"date_modified",
			"date_published",
			"visibility",
		).
		Values(
			photo.OwnerID,
			photo.Image,
			photo.Title,
			photo.Description,
			photo.DateUploaded,
			photo.DateModified,
			photo.DatePublished,
			string(photo.Visibility),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdatePhoto rewrites the mutable columns of a photo owned by photo.OwnerID.
// date_uploaded is never touched.
func (r *PhotoRepo) UpdatePhoto(ctx context.Context, photo models.Photo) error {
	const op = "repository.photo_repository.UpdatePhoto"

	modified := photo.DateModified
	if modified.IsZero() {
		modified = time.Now().UTC()
	}

	query, args, err := r.sb.Update("photos").
		Set("image", photo.Image).
		Set("title", photo.Title).
		Set("description", photo.Description).
		Set("date_modified", modified).
		Set("date_published", photo.DatePublished).
		Set("visibility", string(photo.Visibility)).
		Where(sq.Eq{"id": photo.ID, "owner_id": photo.OwnerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	return nil
}

func (r *PhotoRepo) PhotoByID(ctx context.Context, id int64) (models.Photo, error) {
	const op = "repository.photo_repository.PhotoByID"

	photo, err := r.one(ctx, sq.Eq{"ph.id": id})
	if err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	return photo, nil
}

// OwnedPhoto looks a photo up by id and owner at once, so a foreign photo is
// indistinguishable from a missing one.
func (r *PhotoRepo) OwnedPhoto(ctx context.Context, id, ownerID int64) (models.Photo, error) {
	const op = "repository.photo_repository.OwnedPhoto"

	photo, err := r.one(ctx, sq.Eq{"ph.id": id, "ph.owner_id": ownerID})
	if err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	return photo, nil
}

func (r *PhotoRepo) ListPhotos(ctx context.Context, f PhotoFilter) ([]models.Photo, error) {
	const op = "repository.photo_repository.ListPhotos"

	b := applyPhotoFilter(r.selectPhotos(), f).OrderBy("ph.date_uploaded", "ph.id")
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	if f.Offset > 0 {
		b = b.Offset(f.Offset)
	}

	photos, err := r.list(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return photos, nil
}

func (r *PhotoRepo) CountPhotos(ctx context.Context, f PhotoFilter) (int, error) {
	const op = "repository.photo_repository.CountPhotos"

	n, err := count(ctx, r.db, applyPhotoFilter(r.sb.Select("COUNT(*)").From("photos ph"), f))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *PhotoRepo) RandomPublicPhoto(ctx context.Context) (models.Photo, error) {
	const op = "repository.photo_repository.RandomPublicPhoto"

	b := r.selectPhotos().
		Where(sq.Eq{"ph.visibility": string(models.VisibilityPublic)}).
		OrderBy("RANDOM()").
		Limit(1)

	photos, err := r.list(ctx, b)
	if err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(photos) == 0 {
		return models.Photo{}, fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	return photos[0], nil
}

func (r *PhotoRepo) selectPhotos() sq.SelectBuilder {
	return r.sb.Select(
		"ph.id",
		"ph.owner_id",
		"u.username",
		"ph.image",
		"ph.title",
		"ph.description",
		"ph.date_uploaded",
		"ph.date_modified",
		"ph.date_published",
		"ph.visibility",
	).
		From("photos ph").
		Join("users u ON u.id = ph.owner_id")
}

func applyPhotoFilter(b sq.SelectBuilder, f PhotoFilter) sq.SelectBuilder {
	if f.AlbumID != 0 {
		b = b.Join("album_photos ap ON ap.photo_id = ph.id").
			Where(sq.Eq{"ap.album_id": f.AlbumID})
	}
	if f.OwnerID != 0 {
		b = b.Where(sq.Eq{"ph.owner_id": f.OwnerID})
	}
	if f.Visibility != "" {
		b = b.Where(sq.Eq{"ph.visibility": string(f.Visibility)})
	}
	if f.IDs != nil {
		b = b.Where(sq.Eq{"ph.id": f.IDs})
	}
	return b
}

func (r *PhotoRepo) one(ctx context.Context, where sq.Eq) (models.Photo, error) {
	query, args, err := r.selectPhotos().Where(where).ToSql()
	if err != nil {
		return models.Photo{}, fmt.Errorf("can't build sql: %w", err)
	}

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Photo{}, storage.ErrPhotoNotFound
		}
		return models.Photo{}, err
	}
	return photo, nil
}

func (r *PhotoRepo) list(ctx context.Context, b sq.SelectBuilder) ([]models.Photo, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build sql: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	return photos, rows.Err()
}

func scanPhoto(row pgx.Row) (models.Photo, error) {
	var (
		p          models.Photo
		visibility string
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.OwnerUsername,
		&p.Image,
		&p.Title,
		&p.Description,
		&p.DateUploaded,
		&p.DateModified,
		&p.DatePublished,
		&visibility,
	)
	p.Visibility = models.Visibility(visibility)
	return p, err
}

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

type AlbumRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAlbumRepository(db *pgxpool.Pool) *AlbumRepo {
	return &AlbumRepo{
		db: db,
		sb: newBuilder(),
	}
}

// CreateAlbum inserts the album and its membership rows in one transaction.
func (r *AlbumRepo) CreateAlbum(ctx context.Context, album models.Album) (int64, error) {
	const op = "repository.album_repository.CreateAlbum"

	now := time.Now().UTC()
	if album.DateUploaded.IsZero() {
		album.DateUploaded = now
	}
	if album.DateModified.IsZero() {
		album.DateModified = album.DateUploaded
	}

	query, args, err := r.sb.Insert("albums").
		Columns(
			"owner_id",
			"title",
			"description",
			"cover_id",
			"date_uploaded",
			"date_modified",
			"date_published",
			"visibility",
		).
		Values(
			album.OwnerID,
			album.Title,
			album.Description,
			album.CoverID,
			album.DateUploaded,
			album.DateModified,
			album.DatePublished,
			string(album.Visibility),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id int64
	err = withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return err
		}
		return r.replacePhotos(ctx, tx, id, album.PhotoIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateAlbum rewrites an owned album and replaces its membership set.
func (r *AlbumRepo) UpdateAlbum(ctx context.Context, album models.Album) error {
	const op = "repository.album_repository.UpdateAlbum"

	modified := album.DateModified
	if modified.IsZero() {
		modified = time.Now().UTC()
	}

	query, args, err := r.sb.Update("albums").
		Set("title", album.Title).
		Set("description", album.Description).
		Set("cover_id", album.CoverID).
		Set("date_modified", modified).
		Set("date_published", album.DatePublished).
		Set("visibility", string(album.Visibility)).
		Where(sq.Eq{"id": album.ID, "owner_id": album.OwnerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	err = withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrAlbumNotFound
		}
		return r.replacePhotos(ctx, tx, album.ID, album.PhotoIDs)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *AlbumRepo) replacePhotos(ctx context.Context, db DBTX, albumID int64, photoIDs []int64) error {
	query, args, err := r.sb.Delete("album_photos").
		Where(sq.Eq{"album_id": albumID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build sql: %w", err)
	}
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return err
	}

	if len(photoIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("album_photos").
		Columns("album_id", "photo_id").
		Suffix("ON CONFLICT DO NOTHING")
	for _, id := range photoIDs {
		insert = insert.Values(albumID, id)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("can't build sql: %w", err)
	}
	_, err = db.Exec(ctx, query, args...)
	return err
}

func (r *AlbumRepo) AlbumByID(ctx context.Context, id int64) (models.Album, error) {
	const op = "repository.album_repository.AlbumByID"

	album, err := r.one(ctx, sq.Eq{"a.id": id})
	if err != nil {
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}
	return album, nil
}

func (r *AlbumRepo) OwnedAlbum(ctx context.Context, id, ownerID int64) (models.Album, error) {
	const op = "repository.album_repository.OwnedAlbum"

	album, err := r.one(ctx, sq.Eq{"a.id": id, "a.owner_id": ownerID})
	if err != nil {
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}
	return album, nil
}

func (r *AlbumRepo) ListAlbums(ctx context.Context, f AlbumFilter) ([]models.Album, error) {
	const op = "repository.album_repository.ListAlbums"

	b := applyAlbumFilter(r.selectAlbums(), f).OrderBy("a.date_uploaded", "a.id")
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	if f.Offset > 0 {
		b = b.Offset(f.Offset)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	albums := []models.Album{}
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return albums, nil
}

func (r *AlbumRepo) CountAlbums(ctx context.Context, f AlbumFilter) (int, error) {
	const op = "repository.album_repository.CountAlbums"

	n, err := count(ctx, r.db, applyAlbumFilter(r.sb.Select("COUNT(*)").From("albums a"), f))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *AlbumRepo) selectAlbums() sq.SelectBuilder {
	return r.sb.Select(
		"a.id",
		"a.owner_id",
		"u.username",
		"a.title",
		"a.description",
		"a.cover_id",
		"c.image",
		"a.date_uploaded",
		"a.date_modified",
		"a.date_published",
		"a.visibility",
	).
		From("albums a").
		Join("users u ON u.id = a.owner_id").
		LeftJoin("photos c ON c.id = a.cover_id")
}

func applyAlbumFilter(b sq.SelectBuilder, f AlbumFilter) sq.SelectBuilder {
	if f.OwnerID != 0 {
		b = b.Where(sq.Eq{"a.owner_id": f.OwnerID})
	}
	if f.Visibility != "" {
		b = b.Where(sq.Eq{"a.visibility": string(f.Visibility)})
	}
	return b
}

func (r *AlbumRepo) one(ctx context.Context, where sq.Eq) (models.Album, error) {
	query, args, err := r.selectAlbums().Where(where).ToSql()
	if err != nil {
		return models.Album{}, fmt.Errorf("can't build sql: %w", err)
	}

	album, err := scanAlbum(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Album{}, storage.ErrAlbumNotFound
		}
		return models.Album{}, err
	}

	album.PhotoIDs, err = r.photoIDs(ctx, album.ID)
	if err != nil {
		return models.Album{}, err
	}

	return album, nil
}

func (r *AlbumRepo) photoIDs(ctx context.Context, albumID int64) ([]int64, error) {
	query, args, err := r.sb.Select("photo_id").
		From("album_photos").
		Where(sq.Eq{"album_id": albumID}).
		OrderBy("photo_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build sql: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanAlbum(row pgx.Row) (models.Album, error) {
	var (
		a          models.Album
		visibility string
	)
	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.OwnerUsername,
		&a.Title,
		&a.Description,
		&a.CoverID,
		&a.CoverImage,
		&a.DateUploaded,
		&a.DateModified,
		&a.DatePublished,
		&visibility,
	)
	a.Visibility = models.Visibility(visibility)
	return a, err
}

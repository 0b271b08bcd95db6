// Package postgres implements photohost.Repository on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ceephoto/photohost/pkg/photohost"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements photohost.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// handlePostgresError maps driver errors onto the package sentinels.
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return photohost.ErrDuplicateName
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return photohost.ErrPhotoNotFound
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const photoColumns = `
	id, name, sha1, size, original_url, medium_url, small_url, thumbnail_url,
	sort_order, title, camera, lens, iso, aperture, shutter_speed,
	focal_length, rating, taken_at, created_at, posted_at, post_title, post_summary`

func scanPhoto(row pgx.Row) (*photohost.Photo, error) {
	var p photohost.Photo
	err := row.Scan(
		&p.ID, &p.Name, &p.SHA1, &p.Size, &p.OriginalURL, &p.MediumURL,
		&p.SmallURL, &p.ThumbnailURL, &p.SortOrder, &p.Title, &p.Camera,
		&p.Lens, &p.ISO, &p.Aperture, &p.ShutterSpeed, &p.FocalLength,
		&p.Rating, &p.TakenAt, &p.CreatedAt, &p.PostedAt, &p.PostTitle,
		&p.PostSummary)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePhoto(ctx context.Context, photo *photohost.Photo) error {
	query := `
		INSERT INTO photos (` + photoColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		          $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.Name, photo.SHA1, photo.Size, photo.OriginalURL,
		photo.MediumURL, photo.SmallURL, photo.ThumbnailURL, photo.SortOrder,
		photo.Title, photo.Camera, photo.Lens, photo.ISO, photo.Aperture,
		photo.ShutterSpeed, photo.FocalLength, photo.Rating, photo.TakenAt,
		photo.CreatedAt, photo.PostedAt, photo.PostTitle, photo.PostSummary)
	if err != nil {
		return handlePostgresError("create photo", err)
	}
	return nil
}

func (r *Repository) GetPhoto(ctx context.Context, id uuid.UUID) (*photohost.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, handlePostgresError("get photo", err)
	}
	return photo, nil
}

func (r *Repository) GetPhotoByName(ctx context.Context, name string) (*photohost.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE name = $1`

	photo, err := scanPhoto(r.db.QueryRow(ctx, query, name))
	if err != nil {
		return nil, handlePostgresError("get photo by name", err)
	}
	return photo, nil
}

func (r *Repository) UpdatePhoto(ctx context.Context, photo *photohost.Photo) error {
	query := `
		UPDATE photos SET
			name = $2, sha1 = $3, size = $4, original_url = $5, medium_url = $6,
			small_url = $7, thumbnail_url = $8, sort_order = $9, title = $10,
			camera = $11, lens = $12, iso = $13, aperture = $14,
			shutter_speed = $15, focal_length = $16, rating = $17,
			taken_at = $18, posted_at = $19, post_title = $20, post_summary = $21
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		photo.ID, photo.Name, photo.SHA1, photo.Size, photo.OriginalURL,
		photo.MediumURL, photo.SmallURL, photo.ThumbnailURL, photo.SortOrder,
		photo.Title, photo.Camera, photo.Lens, photo.ISO, photo.Aperture,
		photo.ShutterSpeed, photo.FocalLength, photo.Rating, photo.TakenAt,
		photo.PostedAt, photo.PostTitle, photo.PostSummary)
	if err != nil {
		return handlePostgresError("update photo", err)
	}
	if tag.RowsAffected() == 0 {
		return photohost.ErrPhotoNotFound
	}
	return nil
}

func (r *Repository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete photo", err)
	}
	if tag.RowsAffected() == 0 {
		return photohost.ErrPhotoNotFound
	}
	return nil
}

func (r *Repository) ListPhotos(ctx context.Context) ([]*photohost.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos
		ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, handlePostgresError("list photos", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func (r *Repository) ListPublishedPhotos(ctx context.Context, limit int) ([]*photohost.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos
		WHERE posted_at IS NOT NULL
		ORDER BY posted_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgresError("list published photos", err)
	}
	defer rows.Close()

	return collectPhotos(rows)
}

func collectPhotos(rows pgx.Rows) ([]*photohost.Photo, error) {
	var photos []*photohost.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return photos, nil
}

package content

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, object_path, storage_path, file_name, content_type, size_bytes, visibility, title, created_at, deleted_at`

// Create inserts a new content record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO content_objects (
    id,
    owner_id,
    object_path,
    storage_path,
    file_name,
    content_type,
    size_bytes,
    visibility,
    title,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.OwnerID,
		rec.ObjectPath,
		rec.StoragePath,
		rec.FileName,
		rec.ContentType,
		rec.SizeBytes,
		rec.Visibility,
		nullString(rec.Title),
		rec.CreatedAt,
	)
	return err
}

// GetByID fetches a live record by ID for an owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	query := `
SELECT ` + selectColumns + `
FROM content_objects
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByOwner lists live records ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + selectColumns + `
FROM content_objects
WHERE owner_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SoftDelete stamps deleted_at on a live record.
func (r *PGRepo) SoftDelete(ctx context.Context, ownerID, id string) error {
	const query = `
UPDATE content_objects
SET deleted_at = now()
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purge hard-deletes a soft-deleted record.
func (r *PGRepo) Purge(ctx context.Context, id string) error {
	const query = `
DELETE FROM content_objects
WHERE id = $1 AND deleted_at IS NOT NULL`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var title sql.NullString
	var deletedAt sql.NullTime
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.ObjectPath,
		&rec.StoragePath,
		&rec.FileName,
		&rec.ContentType,
		&rec.SizeBytes,
		&rec.Visibility,
		&title,
		&rec.CreatedAt,
		&deletedAt,
	); err != nil {
		return Record{}, err
	}
	if title.Valid {
		rec.Title = title.String
	}
	if deletedAt.Valid {
		rec.DeletedAt = &deletedAt.Time
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)

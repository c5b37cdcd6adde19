package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/db"
)

// PhotoRepository handles database operations for photo records
type PhotoRepository struct {
	db *db.DB
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *db.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `
	id, filename, storage_key, public_url, group_id, stage,
	uploader, note, file_size, mime_type, created_at
`

// Insert persists a new photo record. The id and created_at are assigned
// here, not by the caller.
func (r *PhotoRepository) Insert(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photo (
			id, filename, storage_key, public_url, group_id, stage,
			uploader, note, file_size, mime_type
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING created_at
	`

	photo.ID = uuid.New()

	err := r.db.QueryRow(ctx, query,
		photo.ID,
		photo.Filename,
		photo.StorageKey,
		photo.PublicURL,
		photo.GroupID,
		photo.Stage,
		photo.Uploader,
		photo.Note,
		photo.FileSize,
		photo.MimeType,
	).Scan(&photo.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}

	return nil
}

// GetByID retrieves a photo record by its ID
func (r *PhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photo WHERE id = $1`

	photo := &models.Photo{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&photo.ID,
		&photo.Filename,
		&photo.StorageKey,
		&photo.PublicURL,
		&photo.GroupID,
		&photo.Stage,
		&photo.Uploader,
		&photo.Note,
		&photo.FileSize,
		&photo.MimeType,
		&photo.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

// List retrieves photo records matching the filter. The unfiltered gallery
// view orders newest-first; a group lookup orders by stage then upload time
// so entry photos precede exit photos chronologically.
func (r *PhotoRepository) List(ctx context.Context, filter models.PhotoFilter) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photo`

	var (
		conds []string
		args  []any
	)
	if filter.GroupID != "" {
		args = append(args, filter.GroupID)
		conds = append(conds, fmt.Sprintf("group_id = $%d", len(args)))
	}
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		conds = append(conds, fmt.Sprintf("stage = $%d", len(args)))
	}

	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	if filter.GroupID != "" {
		query += " ORDER BY stage ASC, created_at ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo := &models.Photo{}
		if err := rows.Scan(
			&photo.ID,
			&photo.Filename,
			&photo.StorageKey,
			&photo.PublicURL,
			&photo.GroupID,
			&photo.Stage,
			&photo.Uploader,
			&photo.Note,
			&photo.FileSize,
			&photo.MimeType,
			&photo.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate photos: %w", err)
	}

	return photos, nil
}

// Delete removes a photo record by ID. Deleting an absent row is not an
// error; the caller decides whether that matters.
func (r *PhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM photo WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteByGroup removes every photo record for a group and returns the count
func (r *PhotoRepository) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM photo WHERE group_id = $1`, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete photos for group %s: %w", groupID, err)
	}
	return tag.RowsAffected(), nil
}

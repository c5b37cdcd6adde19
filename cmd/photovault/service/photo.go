package service

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/logger"
)

// ViewCache caches rendered list payloads by view path
type ViewCache interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	Set(ctx context.Context, path string, payload []byte)
}

// PhotoService serves the gallery and order-lookup reads
type PhotoService struct {
	store  ObjectStore
	photos PhotoStore
	views  ViewCache
	log    *logger.Logger
}

// NewPhotoService creates the read-side service
func NewPhotoService(store ObjectStore, photos PhotoStore, views ViewCache, log *logger.Logger) *PhotoService {
	return &PhotoService{
		store:  store,
		photos: photos,
		views:  views,
		log:    log,
	}
}

// GetByID returns one photo record
func (s *PhotoService) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if apperrors.IsNotFound(err) {
		return nil, err
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "find", Err: err}
	}
	return photo, nil
}

// List returns photo records matching the filter
func (s *PhotoService) List(ctx context.Context, filter models.PhotoFilter) ([]*models.Photo, error) {
	photos, err := s.photos.List(ctx, filter)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "find", Err: err}
	}
	return photos, nil
}

// ListRendered returns the JSON payload for a list view, serving the two
// canonical views (global gallery, per-group order page) from cache.
// Stage-filtered queries bypass the cache; they are rare admin lookups.
func (s *PhotoService) ListRendered(ctx context.Context, filter models.PhotoFilter) ([]byte, error) {
	viewPath, cacheable := viewPathFor(filter)

	if cacheable {
		if payload, ok := s.views.Get(ctx, viewPath); ok {
			return payload, nil
		}
	}

	photos, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if photos == nil {
		photos = []*models.Photo{}
	}

	payload, err := json.Marshal(map[string]any{
		"count":  len(photos),
		"photos": photos,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal photo list: %w", err)
	}

	if cacheable {
		s.views.Set(ctx, viewPath, payload)
	}

	return payload, nil
}

func viewPathFor(filter models.PhotoFilter) (string, bool) {
	if filter.Stage != "" {
		return "", false
	}
	if filter.GroupID != "" {
		return ViewOrderPrefix + filter.GroupID, true
	}
	return ViewGallery, true
}

// WriteArchive streams every stored photo into a ZIP. Blobs that cannot be
// read are skipped with a log line so one bad object never breaks the whole
// export.
func (s *PhotoService) WriteArchive(ctx context.Context, w io.Writer) error {
	photos, err := s.photos.List(ctx, models.PhotoFilter{})
	if err != nil {
		return &apperrors.PersistenceError{Op: "find", Err: err}
	}
	if len(photos) == 0 {
		return apperrors.ErrNotFound
	}

	zw := zip.NewWriter(w)
	for i, photo := range photos {
		if err := s.addArchiveEntry(ctx, zw, photo, i); err != nil {
			s.log.Warn("skipping photo in archive",
				"photo_id", photo.ID,
				"storage_key", photo.StorageKey,
				"error", err,
			)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

func (s *PhotoService) addArchiveEntry(ctx context.Context, zw *zip.Writer, photo *models.Photo, index int) error {
	blob, err := s.store.Open(ctx, photo.StorageKey)
	if err != nil {
		return err
	}
	defer blob.Close()

	name := photo.Filename
	if name == "" {
		name = fmt.Sprintf("foto-%d.jpg", index+1)
	}

	entry, err := zw.Create(fmt.Sprintf("%03d-%s", index+1, name))
	if err != nil {
		return err
	}

	_, err = io.Copy(entry, blob)
	return err
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/telemetry"
	"github.com/taller/photovault/common/validate"
)

// DeleteService coordinates the orphan-safe deletion transaction.
//
// The blob is removed before the row: if the row delete then fails, what
// remains is a row pointing at a missing blob, which the UI makes visible.
// The opposite order would leave an unreferenced blob nobody can find. A
// failed blob delete is logged and tolerated, so a transient storage outage
// never blocks removing the record.
type DeleteService struct {
	store       ObjectStore
	photos      PhotoStore
	invalidator Invalidator
	metrics     *telemetry.Telemetry
	log         *logger.Logger
}

// NewDeleteService creates the deletion coordinator
func NewDeleteService(
	store ObjectStore,
	photos PhotoStore,
	invalidator Invalidator,
	metrics *telemetry.Telemetry,
	log *logger.Logger,
) *DeleteService {
	return &DeleteService{
		store:       store,
		photos:      photos,
		invalidator: invalidator,
		metrics:     metrics,
		log:         log,
	}
}

// Delete removes one photo: blob first, then row. Deleting an id that does
// not exist is an idempotent no-op; the returned bool reports whether a
// record was actually removed so the HTTP layer can answer 404.
func (s *DeleteService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if apperrors.IsNotFound(err) {
		s.log.Info("delete for unknown photo, nothing to do", "photo_id", id)
		return false, nil
	}
	if err != nil {
		return false, &apperrors.PersistenceError{Op: "find", Err: err}
	}

	if err := s.store.Remove(ctx, []string{photo.StorageKey}); err != nil {
		// Tolerated: the blob may already be gone, or storage is down.
		s.metrics.OrphanedBlobs.Inc()
		s.log.Warn("blob delete failed, removing record anyway",
			"photo_id", id,
			"storage_key", photo.StorageKey,
			"error", err,
		)
	}

	if err := s.photos.Delete(ctx, id); err != nil && !apperrors.IsNotFound(err) {
		return false, &apperrors.PersistenceError{Op: "delete", Err: err}
	}

	s.metrics.DeletesTotal.Inc()
	s.invalidator.Invalidate(ctx, ViewGallery, ViewOrderPrefix+photo.GroupID)

	s.log.Info("photo deleted", "photo_id", id, "group_id", photo.GroupID)
	return true, nil
}

// DeleteGroup removes every photo of a group: all blobs first (best
// effort), then the rows in one statement. Returns the row count removed.
func (s *DeleteService) DeleteGroup(ctx context.Context, groupID string) (int64, error) {
	groupID, err := validate.GroupID(groupID)
	if err != nil {
		return 0, err
	}

	photos, err := s.photos.List(ctx, models.PhotoFilter{GroupID: groupID})
	if err != nil {
		return 0, &apperrors.PersistenceError{Op: "find", Err: err}
	}
	if len(photos) == 0 {
		return 0, nil
	}

	keys := make([]string, len(photos))
	for i, p := range photos {
		keys[i] = p.StorageKey
	}

	if err := s.store.Remove(ctx, keys); err != nil {
		s.metrics.OrphanedBlobs.Inc()
		s.log.Warn("blob delete failed for group, removing records anyway",
			"group_id", groupID,
			"error", err,
		)
	}

	count, err := s.photos.DeleteByGroup(ctx, groupID)
	if err != nil {
		return 0, &apperrors.PersistenceError{Op: "delete", Err: err}
	}

	s.metrics.DeletesTotal.Add(float64(count))
	s.invalidator.Invalidate(ctx, ViewGallery, ViewOrderPrefix+groupID)

	s.log.Info("group photos deleted", "group_id", groupID, "count", count)
	return count, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/config"
	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/mailer"
	"github.com/taller/photovault/common/policy"
	"github.com/taller/photovault/common/storage"
	"github.com/taller/photovault/common/telemetry"
	"github.com/taller/photovault/common/validate"
	"golang.org/x/sync/errgroup"
)

// keyAttempts bounds the retry-with-new-key loop on a storage key collision.
const keyAttempts = 3

// UploadService coordinates the multi-step upload transaction: validate the
// batch, write each blob, persist each record, then invalidate cached views
// and send a best-effort notification.
//
// Consistency model: a file's blob is always written before its row. The
// batch fails fast on the first file error and files persisted before the
// failure are not rolled back; a blob whose insert failed stays behind as an
// orphan, detectable by reconciling the bucket against the photo table.
type UploadService struct {
	store       ObjectStore
	photos      PhotoStore
	invalidator Invalidator
	notifier    Notifier
	accept      *policy.Policy
	cfg         config.UploadConfig
	metrics     *telemetry.Telemetry
	log         *logger.Logger
}

// NewUploadService creates the upload coordinator
func NewUploadService(
	store ObjectStore,
	photos PhotoStore,
	invalidator Invalidator,
	notifier Notifier,
	accept *policy.Policy,
	cfg config.UploadConfig,
	metrics *telemetry.Telemetry,
	log *logger.Logger,
) *UploadService {
	return &UploadService{
		store:       store,
		photos:      photos,
		invalidator: invalidator,
		notifier:    notifier,
		accept:      accept,
		cfg:         cfg,
		metrics:     metrics,
		log:         log,
	}
}

// Handle validates and persists one upload batch.
// Validation is fail-fast and happens before any I/O; a single unacceptable
// file rejects the whole batch.
func (s *UploadService) Handle(ctx context.Context, batch models.UploadBatch) (*models.BatchResult, error) {
	groupID, err := validate.GroupID(batch.GroupID)
	if err != nil {
		return nil, err
	}

	stageStr, err := validate.Stage(batch.Stage)
	if err != nil {
		return nil, err
	}
	stage := models.Stage(stageStr)

	if err := validate.FileCount(len(batch.Files), s.cfg.MaxFiles); err != nil {
		return nil, err
	}

	for _, f := range batch.Files {
		if err := validate.File(f.Filename, f.MimeType, f.Size, s.cfg.MaxFileBytes); err != nil {
			return nil, err
		}

		ok, err := s.accept.Accept(policy.FileInput{
			Filename: f.Filename,
			MimeType: f.MimeType,
			Size:     f.Size,
			GroupID:  groupID,
			Stage:    string(stage),
		})
		if err != nil {
			// A broken policy fails closed.
			s.log.Error("acceptance policy evaluation failed", "file", f.Filename, "error", err)
			return nil, apperrors.NewValidation("file %q was rejected by the acceptance policy", f.Filename)
		}
		if !ok {
			return nil, apperrors.NewValidation("file %q was rejected by the acceptance policy", f.Filename)
		}
	}

	uploadedAt := time.Now()
	photos := make([]*models.Photo, len(batch.Files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range batch.Files {
		i, f := i, f
		g.Go(func() error {
			photo, err := s.processFile(gctx, groupID, stage, batch, f, i, len(batch.Files), uploadedAt)
			if err != nil {
				return err
			}
			photos[i] = photo
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		kind := "storage"
		var pe *apperrors.PersistenceError
		if errors.As(err, &pe) {
			kind = "persistence"
		}
		s.metrics.UploadFailures.WithLabelValues(kind).Inc()
		s.log.Error("upload batch aborted", "group_id", groupID, "stage", stage, "error", err)
		return nil, err
	}

	for _, p := range photos {
		s.metrics.UploadsTotal.WithLabelValues(string(stage)).Inc()
		s.metrics.UploadBytes.Observe(float64(p.FileSize))
	}

	// Downstream side effects sit outside the consistency boundary: cached
	// views are invalidated fire-and-forget and notification failures are
	// swallowed.
	s.invalidator.Invalidate(ctx, ViewGallery, ViewOrderPrefix+groupID)
	s.notify(ctx, groupID, stage, batch, photos)

	s.log.Info("upload batch persisted",
		"group_id", groupID,
		"stage", stage,
		"count", len(photos),
	)

	return &models.BatchResult{
		GroupID:    groupID,
		Stage:      stage,
		Uploader:   batch.Uploader,
		Note:       batch.Note,
		SavedCount: len(photos),
		Photos:     photos,
	}, nil
}

// processFile runs one file's two dependent steps: blob upload, then record
// insert. The insert never precedes a successful upload of the same file.
func (s *UploadService) processFile(
	ctx context.Context,
	groupID string,
	stage models.Stage,
	batch models.UploadBatch,
	file models.BatchFile,
	index, total int,
	uploadedAt time.Time,
) (*models.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
	defer cancel()

	var put storage.PutResult
	var err error
	for attempt := 0; attempt < keyAttempts; attempt++ {
		key := storageKey(stage, groupID, index, total, uploadedAt, file.MimeType)
		put, err = s.store.Put(ctx, key, file.Content, file.Size, file.MimeType)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrKeyExists) {
			s.log.Warn("storage key collision, retrying with a new key", "key", key, "attempt", attempt+1)
			continue
		}
		return nil, &apperrors.StorageError{Op: "put", Key: key, Err: err}
	}
	if err != nil {
		return nil, &apperrors.StorageError{Op: "put", Err: err}
	}

	photo := &models.Photo{
		Filename:   displayFilename(stage, groupID, index, total, file.MimeType),
		StorageKey: put.Key,
		PublicURL:  put.PublicURL,
		GroupID:    groupID,
		Stage:      stage,
		Uploader:   optional(batch.Uploader),
		Note:       optional(batch.Note),
		FileSize:   file.Size,
		MimeType:   file.MimeType,
	}

	if err := s.photos.Insert(ctx, photo); err != nil {
		// The blob is already written; it stays behind as a detectable
		// orphan. No compensation here.
		return nil, &apperrors.PersistenceError{Op: "insert", Err: err}
	}

	return photo, nil
}

func (s *UploadService) notify(ctx context.Context, groupID string, stage models.Stage, batch models.UploadBatch, photos []*models.Photo) {
	links := make([]mailer.PhotoLink, len(photos))
	for i, p := range photos {
		links[i] = mailer.PhotoLink{Filename: p.Filename, PublicURL: p.PublicURL}
	}

	err := s.notifier.Notify(ctx, mailer.BatchSummary{
		GroupID:  groupID,
		Stage:    string(stage),
		Uploader: batch.Uploader,
		Note:     batch.Note,
		Count:    len(photos),
		Photos:   links,
	})
	if err != nil {
		s.metrics.NotifyFailures.Inc()
		s.log.Error("notification failed", "group_id", groupID, "error", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/config"
	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/mailer"
	"github.com/taller/photovault/common/storage"
	"github.com/taller/photovault/common/telemetry"
)

// fakeBackend implements ObjectStore, PhotoStore, Invalidator and Notifier
// for coordinator tests. It records calls so tests can assert on ordering
// and counts.
type fakeBackend struct {
	mu sync.Mutex

	// object store
	blobs       map[string][]byte
	putCalls    int
	putErrs     []error // consumed one per Put call; nil entry means success
	removeErr   error
	removeCalls int
	removed     []string

	// metadata store
	rows            map[uuid.UUID]*models.Photo
	insertCalls     int
	insertErr       error
	deleteErr       error
	orderViolations int // inserts whose blob was not written first

	// invalidator
	invalidated []string

	// notifier
	notifyErr error
	notified  []mailer.BatchSummary
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		blobs: make(map[string][]byte),
		rows:  make(map[uuid.UUID]*models.Photo),
	}
}

func (f *fakeBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.PutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.putCalls++
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return storage.PutResult{}, err
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return storage.PutResult{}, err
	}
	f.blobs[key] = data

	return storage.PutResult{
		Key:       key,
		PublicURL: "https://cdn.test/" + key,
	}, nil
}

func (f *fakeBackend) Remove(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removeCalls++
	f.removed = append(f.removed, keys...)
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, key := range keys {
		delete(f.blobs, key)
	}
	return nil
}

func (f *fakeBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no such blob: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBackend) Insert(ctx context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, uploaded := f.blobs[photo.StorageKey]; !uploaded {
		f.orderViolations++
	}

	photo.ID = uuid.New()
	photo.CreatedAt = time.Now()
	stored := *photo
	f.rows[photo.ID] = &stored
	return nil
}

func (f *fakeBackend) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	photo, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *photo
	return &copied, nil
}

func (f *fakeBackend) List(ctx context.Context, filter models.PhotoFilter) ([]*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var photos []*models.Photo
	for _, photo := range f.rows {
		if filter.GroupID != "" && photo.GroupID != filter.GroupID {
			continue
		}
		if filter.Stage != "" && photo.Stage != filter.Stage {
			continue
		}
		copied := *photo
		photos = append(photos, &copied)
	}
	return photos, nil
}

func (f *fakeBackend) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBackend) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var count int64
	for id, photo := range f.rows {
		if photo.GroupID == groupID {
			delete(f.rows, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeBackend) Invalidate(ctx context.Context, paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated = append(f.invalidated, paths...)
}

func (f *fakeBackend) Notify(ctx context.Context, summary mailer.BatchSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notified = append(f.notified, summary)
	return f.notifyErr
}

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxFiles:     12,
		MaxFileBytes: 8 << 20,
		StepTimeout:  time.Minute,
	}
}

func newTestUploadService(f *fakeBackend) *UploadService {
	log := testLogger()
	return NewUploadService(
		f, f, f, f,
		nil, // no acceptance policy
		testUploadConfig(),
		telemetry.New(0, 0, false, log),
		log,
	)
}

func newTestDeleteService(f *fakeBackend) *DeleteService {
	log := testLogger()
	return NewDeleteService(f, f, f, telemetry.New(0, 0, false, log), log)
}

func jpegFile(name string, size int64) models.BatchFile {
	return models.BatchFile{
		Filename: name,
		MimeType: "image/jpeg",
		Size:     size,
		Content:  bytes.NewReader([]byte("jpeg-bytes")),
	}
}

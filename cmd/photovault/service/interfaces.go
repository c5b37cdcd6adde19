package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/common/mailer"
	"github.com/taller/photovault/common/storage"
)

// ObjectStore is the blob storage collaborator. Put must reject an existing
// key with storage.ErrKeyExists rather than overwrite it.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.PutResult, error)
	Remove(ctx context.Context, keys []string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// PhotoStore is the metadata store collaborator
type PhotoStore interface {
	Insert(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	List(ctx context.Context, filter models.PhotoFilter) ([]*models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByGroup(ctx context.Context, groupID string) (int64, error)
}

// Invalidator signals that cached page renders are stale. Fire-and-forget:
// implementations log failures and never return them.
type Invalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// Notifier sends the best-effort batch notification. The coordinator
// swallows any error it returns.
type Notifier interface {
	Notify(ctx context.Context, summary mailer.BatchSummary) error
}

// View paths whose cached renders depend on the photo table.
const (
	ViewGallery     = "/gallery"
	ViewOrderPrefix = "/orden/"
)

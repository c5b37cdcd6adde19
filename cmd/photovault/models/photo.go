package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Stage marks which phase of the repair workflow a photo belongs to
type Stage string

const (
	StageEntry Stage = "ENTRY"
	StageExit  Stage = "EXIT"
)

// KeyPrefix returns the human-readable storage key prefix for a stage
func (s Stage) KeyPrefix() string {
	if s == StageExit {
		return "salida"
	}
	return "entrada"
}

// Photo is one persisted evidence photo. Rows are append-only: created by an
// upload, removed by an admin delete, never updated.
type Photo struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"-"` // bucket-internal, never exposed
	PublicURL  string    `json:"public_url"`
	GroupID    string    `json:"group_id"`
	Stage      Stage     `json:"stage"`
	Uploader   *string   `json:"uploader,omitempty"`
	Note       *string   `json:"note,omitempty"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// BatchFile is one inbound file of an upload batch
type BatchFile struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.Reader
}

// UploadBatch is a validated-at-the-boundary upload request. Stage is kept
// raw here; the coordinator normalizes it before any I/O.
type UploadBatch struct {
	GroupID  string
	Stage    string
	Uploader string
	Note     string
	Files    []BatchFile
}

// BatchResult summarizes a fully persisted upload batch
type BatchResult struct {
	GroupID    string   `json:"group_id"`
	Stage      Stage    `json:"stage"`
	Uploader   string   `json:"uploader,omitempty"`
	Note       string   `json:"note,omitempty"`
	SavedCount int      `json:"saved_count"`
	Photos     []*Photo `json:"photos"`
}

// PhotoFilter narrows a list query. Zero values mean "no filter".
type PhotoFilter struct {
	GroupID string
	Stage   Stage
}

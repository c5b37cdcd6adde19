package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/cmd/photovault/service"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/config"
	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/mailer"
	"github.com/taller/photovault/common/storage"
	"github.com/taller/photovault/common/telemetry"
)

// memBackend is an in-memory stand-in for storage, repository, cache
// invalidation and mail, enough to drive handlers end to end.
type memBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
	rows  map[uuid.UUID]*models.Photo
}

func newMemBackend() *memBackend {
	return &memBackend{
		blobs: make(map[string][]byte),
		rows:  make(map[uuid.UUID]*models.Photo),
	}
}

func (m *memBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.PutResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blobs[key]; exists {
		return storage.PutResult{}, storage.ErrKeyExists
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.PutResult{}, err
	}
	m.blobs[key] = data
	return storage.PutResult{Key: key, PublicURL: "https://cdn.test/" + key}, nil
}

func (m *memBackend) Remove(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.blobs, key)
	}
	return nil
}

func (m *memBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no such blob: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBackend) Insert(ctx context.Context, photo *models.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	photo.ID = uuid.New()
	photo.CreatedAt = time.Now()
	stored := *photo
	m.rows[photo.ID] = &stored
	return nil
}

func (m *memBackend) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	photo, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *photo
	return &copied, nil
}

func (m *memBackend) List(ctx context.Context, filter models.PhotoFilter) ([]*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var photos []*models.Photo
	for _, photo := range m.rows {
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

func (m *memBackend) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memBackend) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for id, photo := range m.rows {
		if photo.GroupID == groupID {
			delete(m.rows, id)
			count++
		}
	}
	return count, nil
}

func (m *memBackend) Invalidate(ctx context.Context, paths ...string) {}

func (m *memBackend) Notify(ctx context.Context, summary mailer.BatchSummary) error {
	return nil
}

func newTestUploadHandler(m *memBackend) *UploadHandler {
	log := logger.New("error", "json")
	svc := service.NewUploadService(
		m, m, m, m,
		nil,
		config.UploadConfig{MaxFiles: 12, MaxFileBytes: 8 << 20, StepTimeout: time.Minute},
		telemetry.New(0, 0, false, log),
		log,
	)
	return NewUploadHandler(svc, log)
}

// multipartBody builds a multipart request body with the given form fields
// and one image part per filename.
func multipartBody(t *testing.T, fields map[string]string, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range filenames {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, name))
		header.Set("Content-Type", "image/jpeg")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadHandler_HappyPath(t *testing.T) {
	m := newMemBackend()
	h := newTestUploadHandler(m)

	body, contentType := multipartBody(t, map[string]string{
		"group_id": "BAUTIZO-2025",
		"stage":    "entry",
		"uploader": "marta",
	}, "a.jpg", "b.jpg")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Upload(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message    string          `json:"message"`
		GroupID    string          `json:"group_id"`
		Stage      string          `json:"stage"`
		SavedCount int             `json:"saved_count"`
		Photos     []*models.Photo `json:"photos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "BAUTIZO-2025", resp.GroupID)
	assert.Equal(t, "ENTRY", resp.Stage)
	assert.Equal(t, 2, resp.SavedCount)
	require.Len(t, resp.Photos, 2)
	assert.NotEmpty(t, resp.Photos[0].PublicURL)
	assert.Len(t, m.rows, 2)
	assert.Len(t, m.blobs, 2)
}

func TestUploadHandler_InvalidStage(t *testing.T) {
	m := newMemBackend()
	h := newTestUploadHandler(m)

	body, contentType := multipartBody(t, map[string]string{
		"group_id": "BAUTIZO-2025",
		"stage":    "middle",
	}, "a.jpg")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Upload(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "stage")
	assert.Empty(t, m.rows)
}

func TestUploadHandler_NoFiles(t *testing.T) {
	m := newMemBackend()
	h := newTestUploadHandler(m)

	body, contentType := multipartBody(t, map[string]string{
		"group_id": "BAUTIZO-2025",
		"stage":    "entry",
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Upload(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "at least one image")
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	m := newMemBackend()
	h := newTestUploadHandler(m)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", bytes.NewBufferString(`{"group_id":"X"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Upload(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

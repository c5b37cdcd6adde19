package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taller/photovault/cmd/photovault/models"
)

func TestStorageKeyFormat(t *testing.T) {
	at := time.UnixMilli(1756400000000)

	key := storageKey(models.StageEntry, "ORD-2025.1", 0, 1, at, "image/jpeg")
	assert.Regexp(t,
		regexp.MustCompile(`^entrada-ORD-2025\.1-1756400000000-[0-9a-f-]{36}\.jpg$`),
		key,
	)

	key = storageKey(models.StageExit, "ORD-2025.1", 2, 5, at, "image/png")
	assert.Regexp(t,
		regexp.MustCompile(`^salida-ORD-2025\.1-03-1756400000000-[0-9a-f-]{36}\.png$`),
		key,
	)
}

func TestStorageKeyIsFreshEveryCall(t *testing.T) {
	at := time.Now()
	a := storageKey(models.StageEntry, "ORD-1", 0, 1, at, "image/jpeg")
	b := storageKey(models.StageEntry, "ORD-1", 0, 1, at, "image/jpeg")
	assert.NotEqual(t, a, b)
}

func TestDisplayFilename(t *testing.T) {
	assert.Equal(t, "entrada-ORD-1.jpg",
		displayFilename(models.StageEntry, "ORD-1", 0, 1, "image/jpeg"))
	assert.Equal(t, "salida-ORD-1-01.webp",
		displayFilename(models.StageExit, "ORD-1", 0, 3, "image/webp"))
	assert.Equal(t, "salida-ORD-1-03.webp",
		displayFilename(models.StageExit, "ORD-1", 2, 3, "image/webp"))
}

func TestExtForMime(t *testing.T) {
	assert.Equal(t, ".jpg", extForMime("image/jpeg"))
	assert.Equal(t, ".jpg", extForMime("image/jpg"))
	assert.Equal(t, ".png", extForMime("IMAGE/PNG"))
	assert.Equal(t, ".webp", extForMime("image/webp"))
	assert.Equal(t, ".heic", extForMime("image/heic"))
	assert.Equal(t, ".heif", extForMime("image/heif"))
}

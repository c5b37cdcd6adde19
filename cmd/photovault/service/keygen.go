package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taller/photovault/cmd/photovault/models"
)

// positionSuffix keeps multi-file uploads human-readable: files of the same
// batch sort by their position in the request.
func positionSuffix(index, total int) string {
	if total <= 1 {
		return ""
	}
	return fmt.Sprintf("-%02d", index+1)
}

// displayFilename is the name shown in galleries and notifications; it stays
// stable across retries, unlike the storage key.
func displayFilename(stage models.Stage, groupID string, index, total int, mimeType string) string {
	return stage.KeyPrefix() + "-" + groupID + positionSuffix(index, total) + extForMime(mimeType)
}

// storageKey builds a collision-resistant bucket key: stage prefix, group,
// position, upload timestamp and a random token. A fresh call yields a fresh
// token, which is what the bounded retry in the coordinator relies on.
func storageKey(stage models.Stage, groupID string, index, total int, uploadedAt time.Time, mimeType string) string {
	return fmt.Sprintf("%s-%s%s-%d-%s%s",
		stage.KeyPrefix(),
		groupID,
		positionSuffix(index, total),
		uploadedAt.UnixMilli(),
		uuid.NewString(),
		extForMime(mimeType),
	)
}

func extForMime(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ".jpg"
	}
}

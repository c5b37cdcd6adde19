// Package validate holds the pure validation rules applied to an upload
// batch before any side effect. No I/O happens here.
package validate

import (
	"regexp"
	"strings"

	"github.com/taller/photovault/common/apperrors"
)

// Group id is embedded in storage keys, so the character set stays
// key-safe: alphanumeric plus `-`, `_` and `.`.
const (
	GroupIDMinLen = 3
	GroupIDMaxLen = 32
)

var groupIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// AllowedMimeTypes is the image allow-list for uploads
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// GroupID trims and validates a caller-supplied group id, returning the
// normalized value.
func GroupID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewValidation("group id is required")
	}
	if len(s) < GroupIDMinLen || len(s) > GroupIDMaxLen {
		return "", apperrors.NewValidation("group id must be between %d and %d characters", GroupIDMinLen, GroupIDMaxLen)
	}
	if !groupIDPattern.MatchString(s) {
		return "", apperrors.NewValidation("group id may only contain letters, digits, '-', '_' and '.'")
	}
	return s, nil
}

// Stage normalizes a stage value. Input is case-insensitive; the canonical
// form is uppercase ENTRY or EXIT.
func Stage(s string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENTRY":
		return "ENTRY", nil
	case "EXIT":
		return "EXIT", nil
	default:
		return "", apperrors.NewValidation("stage must be ENTRY or EXIT")
	}
}

// File checks one file's declared MIME type and size against the allow-list
// and the configured ceiling. Returns nil when the file is acceptable.
func File(filename, mimeType string, size, maxBytes int64) error {
	if !AllowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))] {
		return apperrors.NewValidation("file %q has unsupported type %q; only images are accepted", filename, mimeType)
	}
	if size > maxBytes {
		return apperrors.NewValidation("file %q exceeds the %d MB limit", filename, maxBytes>>20)
	}
	if size <= 0 {
		return apperrors.NewValidation("file %q is empty", filename)
	}
	return nil
}

// FileCount checks the batch size bounds: at least one file, at most max.
func FileCount(n, max int) error {
	if n == 0 {
		return apperrors.NewValidation("at least one image is required")
	}
	if n > max {
		return apperrors.NewValidation("too many images: %d exceeds the limit of %d per upload", n, max)
	}
	return nil
}

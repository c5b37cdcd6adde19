package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/cmd/photovault/service"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/logger"
)

// UploadHandler handles photo batch uploads
type UploadHandler struct {
	uploads *service.UploadService
	log     *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *service.UploadService, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		log:     log,
	}
}

// Upload persists a batch of evidence photos for one group and stage.
// POST /api/v1/photos (multipart/form-data)
func (h *UploadHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "request must be multipart/form-data with an images field",
		})
	}

	batch := models.UploadBatch{
		GroupID:  formValue(form, "group_id"),
		Stage:    formValue(form, "stage"),
		Uploader: formValue(form, "uploader"),
		Note:     formValue(form, "note"),
	}

	fileHeaders := form.File["images"]
	openFiles := make([]multipart.File, 0, len(fileHeaders))
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": fmt.Sprintf("could not read uploaded file %q", fh.Filename),
			})
		}
		openFiles = append(openFiles, f)

		batch.Files = append(batch.Files, models.BatchFile{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  f,
		})
	}

	result, err := h.uploads.Handle(c.Request().Context(), batch)
	if err != nil {
		if apperrors.IsValidation(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
		}
		// Storage and persistence details stay server-side.
		h.log.Error("upload failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "upload failed, please try again later",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("saved %d photo(s) for order %s (%s)", result.SavedCount, result.GroupID, result.Stage),
		"group_id":    result.GroupID,
		"stage":       result.Stage,
		"uploader":    result.Uploader,
		"note":        result.Note,
		"saved_count": result.SavedCount,
		"photos":      result.Photos,
	})
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

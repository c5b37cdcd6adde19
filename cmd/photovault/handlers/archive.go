package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/taller/photovault/cmd/photovault/service"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/logger"
)

// ArchiveHandler streams a ZIP export of all stored photos
type ArchiveHandler struct {
	photos *service.PhotoService
	log    *logger.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(photos *service.PhotoService, log *logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		photos: photos,
		log:    log,
	}
}

// Download streams every stored photo as one ZIP file.
// GET /api/v1/photos/archive
func (h *ArchiveHandler) Download(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/zip")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="fotos-%s.zip"`, time.Now().Format("2006-01-02")))

	err := h.photos.WriteArchive(c.Request().Context(), res)
	if apperrors.IsNotFound(err) {
		// Nothing written yet, safe to switch to a JSON response.
		return c.JSON(http.StatusNotFound, map[string]string{"message": "no photos to download"})
	}
	if err != nil {
		// Headers may already be on the wire; log and abort the stream.
		h.log.Error("archive download failed", "error", err)
		return err
	}

	return nil
}

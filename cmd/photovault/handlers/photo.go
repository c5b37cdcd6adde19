package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/taller/photovault/cmd/photovault/models"
	"github.com/taller/photovault/cmd/photovault/service"
	"github.com/taller/photovault/common/apperrors"
	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/validate"
)

// PhotoHandler handles reads and deletions of photo records
type PhotoHandler struct {
	photos  *service.PhotoService
	deletes *service.DeleteService
	log     *logger.Logger
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photos *service.PhotoService, deletes *service.DeleteService, log *logger.Logger) *PhotoHandler {
	return &PhotoHandler{
		photos:  photos,
		deletes: deletes,
		log:     log,
	}
}

// List returns photo records, optionally filtered by group and stage.
// Unfiltered: newest first (gallery). With group_id: stage then upload time
// (order view).
// GET /api/v1/photos?group_id=&stage=
func (h *PhotoHandler) List(c echo.Context) error {
	filter := models.PhotoFilter{}

	if groupID := c.QueryParam("group_id"); groupID != "" {
		normalized, err := validate.GroupID(groupID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
		}
		filter.GroupID = normalized
	}

	if stage := c.QueryParam("stage"); stage != "" {
		normalized, err := validate.Stage(stage)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
		}
		filter.Stage = models.Stage(normalized)
	}

	payload, err := h.photos.ListRendered(c.Request().Context(), filter)
	if err != nil {
		h.log.Error("photo list failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "could not load photos",
		})
	}

	return c.JSONBlob(http.StatusOK, payload)
}

// Get returns a single photo record by id.
// GET /api/v1/photos/:id
func (h *PhotoHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid photo id"})
	}

	photo, err := h.photos.GetByID(c.Request().Context(), id)
	if apperrors.IsNotFound(err) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "photo not found"})
	}
	if err != nil {
		h.log.Error("photo lookup failed", "photo_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "could not load photo",
		})
	}

	return c.JSON(http.StatusOK, photo)
}

// Delete removes one photo (blob first, then record).
// DELETE /api/v1/photos/:id
func (h *PhotoHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid photo id"})
	}

	deleted, err := h.deletes.Delete(c.Request().Context(), id)
	if err != nil {
		h.log.Error("photo delete failed", "photo_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "could not delete photo",
		})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "photo not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "photo deleted"})
}

// DeleteGroup removes every photo of one group.
// DELETE /api/v1/groups/:groupId/photos
func (h *PhotoHandler) DeleteGroup(c echo.Context) error {
	count, err := h.deletes.DeleteGroup(c.Request().Context(), c.Param("groupId"))
	if err != nil {
		if apperrors.IsValidation(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
		}
		h.log.Error("group delete failed", "group_id", c.Param("groupId"), "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "could not delete photos",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("deleted %d photo(s)", count),
		"deleted_count": count,
	})
}

package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/taller/photovault/cmd/photovault/container"
	"github.com/taller/photovault/cmd/photovault/middleware"
)

// Register wires all photo routes onto the API group
func Register(e *echo.Echo, c *container.Container) {
	api := e.Group("/api/v1")

	admin := middleware.RequireAdmin(c.Components.Config.Auth)

	// POST /api/v1/photos - upload a batch of evidence photos
	api.POST("/photos", c.UploadHandler.Upload)

	// GET /api/v1/photos - gallery / order lookup
	api.GET("/photos", c.PhotoHandler.List)

	// GET /api/v1/photos/archive - ZIP export (admin)
	api.GET("/photos/archive", c.ArchiveHandler.Download, admin)

	// GET /api/v1/photos/:id - single record
	api.GET("/photos/:id", c.PhotoHandler.Get)

	// DELETE /api/v1/photos/:id - remove one photo (admin)
	api.DELETE("/photos/:id", c.PhotoHandler.Delete, admin)

	// DELETE /api/v1/groups/:groupId/photos - bulk cleanup by group (admin)
	api.DELETE("/groups/:groupId/photos", c.PhotoHandler.DeleteGroup, admin)
}

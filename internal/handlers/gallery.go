package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/gallery"
	"github.com/harry7799/heng-studio/internal/logging"
	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/realtime"
)

type GalleryHandler struct {
	scanner   *gallery.WatchedScanner
	manifest  *gallery.FileManifest
	publisher *realtime.Publisher
}

func NewGalleryHandler(scanner *gallery.WatchedScanner, manifest *gallery.FileManifest, publisher *realtime.Publisher) *GalleryHandler {
	return &GalleryHandler{scanner: scanner, manifest: manifest, publisher: publisher}
}

// GetGallery godoc
// @Summary     Scan gallery directory
// @Description Lists numerically named images in the gallery directory, sorted by number
// @Tags        gallery
// @Produce     json
// @Success     200 {array}  models.GalleryEntry
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/gallery [get]
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	entries, err := h.scanner.Scan()
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("scan_gallery", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read gallery"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetManifest godoc
// @Summary     Get gallery manifest
// @Description Returns the saved gallery ordering; the ETag header carries its version
// @Tags        gallery
// @Produce     json
// @Success     200 {array}  models.GalleryEntry
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/gallery/manifest [get]
func (h *GalleryHandler) GetManifest(c *gin.Context) {
	entries, version, err := h.manifest.Load(c.Request.Context())
	if err != nil {
		respondError(c, "load_manifest", err)
		return
	}
	if version != "" {
		c.Header("ETag", `"`+version+`"`)
	}
	c.JSON(http.StatusOK, entries)
}

// SaveGallery godoc
// @Summary     Save gallery ordering
// @Description Replaces the manifest with the posted entries, renumbered 1..N.
// @Description Send If-Match with a previously returned ETag to fail with 412 instead of overwriting a newer save.
// @Tags        gallery
// @Accept      json
// @Produce     json
// @Param       request  body     []models.GalleryEntry true  "Ordered entries"
// @Param       If-Match header   string                false "Manifest version"
// @Success     200      {object} models.SaveGalleryResponse
// @Failure     400      {object} models.ErrorResponse
// @Failure     401      {object} models.ErrorResponse
// @Failure     412      {object} models.ErrorResponse
// @Failure     500      {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/save-gallery [post]
func (h *GalleryHandler) SaveGallery(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respondError(c, "save_gallery", err)
		return
	}
	entries, err := gallery.DecodeEntries(body)
	if err != nil {
		respondError(c, "save_gallery", err)
		return
	}

	ifMatch := strings.Trim(strings.TrimSpace(c.GetHeader("If-Match")), `"`)
	version, err := h.manifest.Save(c.Request.Context(), entries, ifMatch)
	if err != nil {
		respondError(c, "save_gallery", err)
		return
	}

	if err := h.publisher.PublishEvent(c.Request.Context(), realtime.GalleryChannel, realtime.EventGallerySaved,
		realtime.GallerySavedPayload(len(entries), version)); err != nil {
		logging.NewLogger(c.Request.Context()).LogWarnf("publish_event", "event=%s error=%v", realtime.EventGallerySaved, err)
	}

	c.Header("ETag", `"`+version+`"`)
	c.JSON(http.StatusOK, models.SaveGalleryResponse{Success: true, Count: len(entries), Version: version})
}

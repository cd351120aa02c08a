package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/services"
)

const (
	uploadFieldName = "file"
	// Room for multipart headers and boundaries on top of the file limit.
	multipartOverhead = 1 << 20
)

type UploadHandler struct {
	storage  *services.StorageService
	maxBytes int64
}

func NewUploadHandler(storage *services.StorageService, maxBytes int64) *UploadHandler {
	return &UploadHandler{storage: storage, maxBytes: maxBytes}
}

// ListMedia godoc
// @Summary     List uploaded media
// @Description Returns every uploaded file, most recently modified first
// @Tags        media
// @Produce     json
// @Success     200 {array}  models.MediaItem
// @Failure     401 {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/media [get]
func (h *UploadHandler) ListMedia(c *gin.Context) {
	items, err := h.storage.List(c.Request.Context())
	if err != nil {
		respondError(c, "list_media", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Upload godoc
// @Summary     Upload an image
// @Description Accepts one image (jpg, jpeg, png, webp, gif, avif) in the "file" field.
// @Description The stored file gets a server-generated name; the client file name is only used for its extension.
// @Tags        media
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Image file"
// @Success     200  {object} models.UploadResponse
// @Failure     400  {object} models.ErrorResponse
// @Failure     401  {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	reader, err := c.Request.MultipartReader()
	if err != nil {
		respondError(c, "upload", models.ErrNoFileUploaded)
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			respondError(c, "upload", models.ErrNoFileUploaded)
			return
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, "upload", &models.UploadRejectedError{Reason: "file too large"})
				return
			}
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Malformed multipart body", Message: err.Error()})
			return
		}
		if part.FormName() != uploadFieldName || part.FileName() == "" {
			part.Close()
			continue
		}

		item, err := h.storage.Upload(c.Request.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			respondError(c, "upload", err)
			return
		}
		c.JSON(http.StatusOK, models.UploadResponse{OK: true, Item: item})
		return
	}
}

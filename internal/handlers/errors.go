package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/logging"
	"github.com/harry7799/heng-studio/internal/models"
)

const maxJSONBodyBytes = 1 << 20

// respondError maps service errors onto HTTP statuses. Anything unrecognized
// is logged and reported as a 500.
func respondError(c *gin.Context, operation string, err error) {
	var (
		vErr      *models.ValidationError
		rejectErr *models.UploadRejectedError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid payload", Issues: vErr.Issues})
	case errors.As(err, &rejectErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid file", Message: rejectErr.Reason})
	case errors.As(err, &maxErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Request body too large"})
	case errors.Is(err, models.ErrNoFileUploaded):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, models.ErrStaleManifest):
		c.JSON(http.StatusPreconditionFailed, models.ErrorResponse{Error: "Gallery changed since it was loaded", Message: err.Error()})
	default:
		logging.NewLogger(c.Request.Context()).LogError(operation, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBodyBytes)
	return io.ReadAll(c.Request.Body)
}

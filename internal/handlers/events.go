package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/realtime"
)

const (
	defaultEventLimit = 20
	maxEventLimit     = 100
)

var eventChannels = map[string]string{
	"projects": realtime.ProjectsChannel,
	"gallery":  realtime.GalleryChannel,
	"media":    realtime.MediaChannel,
}

type EventsHandler struct {
	publisher *realtime.Publisher
}

func NewEventsHandler(publisher *realtime.Publisher) *EventsHandler {
	return &EventsHandler{publisher: publisher}
}

// RecentEvents godoc
// @Summary     Recent change events
// @Description Returns the latest events published on a channel, newest first. Empty when Redis is not configured.
// @Tags        events
// @Produce     json
// @Param       channel path     string true  "projects, gallery or media"
// @Param       limit   query    int    false "Number of events (1-100, default 20)"
// @Success     200     {array}  realtime.Event
// @Failure     400     {object} models.ErrorResponse
// @Failure     401     {object} models.ErrorResponse
// @Failure     404     {object} models.ErrorResponse
// @Security    AdminToken
// @Router      /api/events/{channel} [get]
func (h *EventsHandler) RecentEvents(c *gin.Context) {
	channel, ok := eventChannels[c.Param("channel")]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Unknown event channel"})
		return
	}

	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventLimit {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	events, err := h.publisher.Recent(c.Request.Context(), channel, int64(limit))
	if err != nil {
		respondError(c, "recent_events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

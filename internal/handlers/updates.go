package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/alx-polly/backend/internal/notify"
	"github.com/alx-polly/backend/internal/repo"
	"github.com/gin-gonic/gin"
)

type UpdatesHandler struct {
	broker    *notify.Broker
	snapshots SnapshotProvider
}

func NewUpdatesHandler(broker *notify.Broker, snapshots SnapshotProvider) *UpdatesHandler {
	return &UpdatesHandler{broker: broker, snapshots: snapshots}
}

// Stream serves the SSE feed for a poll: one "poll" event with the full
// updated payload per recorded vote. The subscription is dropped when the
// client disconnects; that is the only cancellation path.
func (h *UpdatesHandler) Stream(c *gin.Context) {
	pollID := c.Param("id")

	if _, err := h.snapshots.Snapshot(c.Request.Context(), pollID); err != nil {
		if errors.Is(err, repo.ErrPollNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open stream"})
		return
	}

	ch, cancel := h.broker.Subscribe(pollID)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case update, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("poll", update)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

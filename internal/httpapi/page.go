package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleIndex renders the counters and the task list as HTML.
func (h *handler) HandleIndex(c *gin.Context) {
	logger := h.requestLogger(c)

	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	stats, err := h.tasks.Stats(c.Request.Context())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to count tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Stats": stats,
		"Tasks": tasks,
	})
}

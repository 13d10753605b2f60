package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smart-tasks/internal/model"
	"smart-tasks/internal/server"
	"smart-tasks/internal/service"
)

// TaskService is the storage-backed capability the handlers depend on.
type TaskService interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, input service.TaskInput) (*model.Task, error)
	Update(ctx context.Context, id uint, input service.TaskUpdate) error
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (service.Stats, error)
}

type handler struct {
	logger zerolog.Logger
	tasks  TaskService
	// strictNotFound turns update/delete of a missing id into a 404.
	strictNotFound bool
}

func newHandler(logger zerolog.Logger, tasks TaskService, strictNotFound bool) *handler {
	return &handler{
		logger:         logger,
		tasks:          tasks,
		strictNotFound: strictNotFound,
	}
}

func (h *handler) requestLogger(c *gin.Context) zerolog.Logger {
	return h.logger.With().
		Str("request_id", server.RequestIDFrom(c)).
		Logger()
}

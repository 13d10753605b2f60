package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smart-tasks/internal/model"
	"smart-tasks/internal/service"
)

type taskResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   int     `json:"completed"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	Category    *string `json:"category"`
	CreatedAt   string  `json:"created_at"`
}

func newTaskResponse(task *model.Task) taskResponse {
	completed := 0
	if task.Completed {
		completed = 1
	}
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   completed,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Category:    task.Category,
		CreatedAt:   task.CreatedAt,
	}
}

// completedFlag accepts both JSON booleans and the 0/1 integers the list
// endpoint returns, so a listed record can be sent back as is.
type completedFlag bool

func (f *completedFlag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return fmt.Errorf("invalid completed value: %s", data)
	}
	return nil
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Category    *string `json:"category,omitempty"`
}

type updateTaskRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Completed   *completedFlag `json:"completed" binding:"required"`
	Priority    *string        `json:"priority,omitempty"`
	DueDate     *string        `json:"due_date,omitempty"`
	Category    *string        `json:"category,omitempty"`
}

func (h *handler) HandleGetTasks(c *gin.Context) {
	logger := h.requestLogger(c)

	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]taskResponse, len(tasks))
	for i := range tasks {
		response[i] = newTaskResponse(&tasks[i])
	}

	logger.Debug().
		Int("count", len(tasks)).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, response)
}

func (h *handler) HandleCreateTask(c *gin.Context) {
	logger := h.requestLogger(c)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Category:    req.Category,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create task")
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			abort(c, newBadRequestError(service.ErrTitleRequired.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	logger.Info().
		Uint("task_id", task.ID).
		Msg("created task")
	c.JSON(http.StatusOK, gin.H{"id": task.ID, "success": true})
}

func (h *handler) HandleUpdateTask(c *gin.Context) {
	logger := h.requestLogger(c)

	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err := h.tasks.Update(c.Request.Context(), taskID, service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   bool(*req.Completed),
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Category:    req.Category,
	})
	if err != nil && !h.ignorableNotFound(c, taskID, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) HandleDeleteTask(c *gin.Context) {
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.Delete(c.Request.Context(), taskID)
	if err != nil && !h.ignorableNotFound(c, taskID, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) HandleGetStats(c *gin.Context) {
	logger := h.requestLogger(c)

	stats, err := h.tasks.Stats(c.Request.Context())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to count tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) taskIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		logger := h.requestLogger(c)
		logger.Error().
			Str("id", raw).
			Msg("invalid task id")
		abort(c, newBadRequestError(errInvalidTaskID.Error()))
		return 0, false
	}
	return uint(id), true
}

// ignorableNotFound reports whether err is a missing task that should still
// be answered with success. Any other outcome aborts the request.
func (h *handler) ignorableNotFound(c *gin.Context, taskID uint, err error) bool {
	logger := h.requestLogger(c)

	switch {
	case errors.Is(err, service.ErrTitleRequired):
		abort(c, newBadRequestError(service.ErrTitleRequired.Error()))
		return false
	case errors.Is(err, service.ErrTaskNotFound):
		if h.strictNotFound {
			abort(c, newNotFoundError(service.ErrTaskNotFound.Error()))
			return false
		}
		logger.Warn().
			Uint("task_id", taskID).
			Msg("task not found, answering success")
		return true
	default:
		logger.Error().
			Err(err).
			Uint("task_id", taskID).
			Msg("failed to modify task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return false
	}
}

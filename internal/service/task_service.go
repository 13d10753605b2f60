package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smart-tasks/internal/model"
	"smart-tasks/internal/repository"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTaskNotFound  = repository.ErrTaskNotFound
)

// CreatedAtLayout is the format of Task.CreatedAt.
const CreatedAtLayout = time.DateTime

// TaskInput represents data required to create a task.
// Nil pointers mean the field was not supplied.
type TaskInput struct {
	Title       string
	Description *string
	Priority    *string
	DueDate     *string
	Category    *string
}

// TaskUpdate is a full replacement of a task's mutable fields.
type TaskUpdate struct {
	Title       string
	Description *string
	Completed   bool
	Priority    *string
	DueDate     *string
	Category    *string
}

// Stats holds the aggregate counters. Each value comes from its own query.
type Stats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	logger   zerolog.Logger
	taskRepo *repository.TaskRepository
	now      func() time.Time
}

func NewTaskService(logger zerolog.Logger, taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{
		logger:   logger,
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task := model.Task{
		Title:       title,
		Description: valueOr(input.Description, ""),
		Priority:    priorityOrDefault(input.Priority),
		DueDate:     input.DueDate,
		Category:    input.Category,
		CreatedAt:   s.now().UTC().Format(CreatedAtLayout),
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Uint("task_id", task.ID).
		Msg("created task")
	return &task, nil
}

// Update overwrites all mutable fields of the task. Missing optional
// fields are reset to their defaults.
func (s *TaskService) Update(ctx context.Context, id uint, input TaskUpdate) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrTitleRequired
	}

	task := model.Task{
		ID:          id,
		Title:       title,
		Description: valueOr(input.Description, ""),
		Completed:   input.Completed,
		Priority:    priorityOrDefault(input.Priority),
		DueDate:     input.DueDate,
		Category:    input.Category,
	}

	if err := s.taskRepo.Update(ctx, &task); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			s.logger.Warn().
				Uint("task_id", id).
				Msg("task to update not found")
			return err
		}
		s.logger.Error().
			Err(err).
			Uint("task_id", id).
			Msg("failed to update task")
		return err
	}

	s.logger.Info().
		Uint("task_id", id).
		Msg("updated task")
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			s.logger.Warn().
				Uint("task_id", id).
				Msg("task to delete not found")
			return err
		}
		s.logger.Error().
			Err(err).
			Uint("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Uint("task_id", id).
		Msg("deleted task")
	return nil
}

// Stats runs the three counting queries independently. Under concurrent
// writes Total may differ from Completed+Pending.
func (s *TaskService) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.Total, err = s.taskRepo.Count(ctx); err != nil {
		return Stats{}, err
	}
	if stats.Completed, err = s.taskRepo.CountByCompleted(ctx, true); err != nil {
		return Stats{}, err
	}
	if stats.Pending, err = s.taskRepo.CountByCompleted(ctx, false); err != nil {
		return Stats{}, err
	}

	s.logger.Debug().
		Int64("total", stats.Total).
		Int64("completed", stats.Completed).
		Int64("pending", stats.Pending).
		Msg("counted tasks")
	return stats, nil
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func priorityOrDefault(p *string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return model.PriorityMedium
	}
	return strings.TrimSpace(*p)
}

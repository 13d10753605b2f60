package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"smart-tasks/internal/model"
)

// ReportService builds human-readable summaries for periodic notifications.
type ReportService struct {
	tasks *TaskService
}

func NewReportService(tasks *TaskService) *ReportService {
	return &ReportService{tasks: tasks}
}

// Summary renders the counters and the pending tasks as plain text.
func (s *ReportService) Summary(ctx context.Context, now time.Time) (string, error) {
	stats, err := s.tasks.Stats(ctx)
	if err != nil {
		return "", err
	}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return "", err
	}

	var pending []model.Task
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	sortPending(pending)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Task summary %s\n", now.Format("02.01.2006")))
	builder.WriteString(fmt.Sprintf("Total: %d, completed: %d, pending: %d\n\n",
		stats.Total, stats.Completed, stats.Pending))

	builder.WriteString("Pending tasks\n")
	if len(pending) == 0 {
		builder.WriteString("- nothing left to do\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// sortPending orders by priority, then by due date with undated tasks last.
// List order (newest first) is kept for ties.
func sortPending(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := priorityRank(tasks[i].Priority), priorityRank(tasks[j].Priority)
		if ri != rj {
			return ri < rj
		}
		di, iok := dueDate(tasks[i])
		dj, jok := dueDate(tasks[j])
		switch {
		case !iok:
			return false
		case !jok:
			return true
		default:
			return di < dj
		}
	})
}

// dueDate returns the trimmed due date; a nil or blank value is undated.
func dueDate(task model.Task) (string, bool) {
	if task.DueDate == nil {
		return "", false
	}
	due := strings.TrimSpace(*task.DueDate)
	return due, due != ""
}

func priorityRank(p string) int {
	switch strings.ToLower(p) {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	case model.PriorityLow:
		return 2
	default:
		return 3
	}
}

func formatTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("- [%s] %s", task.Priority, normalizeTitle(task.Title)))

	if task.Category != nil {
		if trimmed := strings.TrimSpace(*task.Category); trimmed != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", trimmed))
		}
	}

	if due, ok := dueDate(task); ok {
		sb.WriteString(fmt.Sprintf(", due %s", due))
		// Due dates are free text; only plain dates get an overdue marker.
		if d, err := time.ParseInLocation(time.DateOnly, due, now.Location()); err == nil && now.After(d.AddDate(0, 0, 1)) {
			sb.WriteString(" (overdue)")
		}
	}

	if desc := strings.TrimSpace(task.Description); desc != "" {
		sb.WriteString(fmt.Sprintf("\n  %s", normalizeTitle(desc)))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func normalizeTitle(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}

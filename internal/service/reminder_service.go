package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewReminderService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

// DailySummary renders today's task list in canonical order as an HTML
// message.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	today := dates.DateOnly(now)
	tasks, err := s.taskRepo.ListByDate(ctx, user.ID, today)
	if err != nil {
		return "", err
	}

	categories, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	catNames := make(map[uint]string)
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	tasks = OrderByPriority(tasks)

	done := 0
	for _, task := range tasks {
		if task.IsCompleted {
			done++
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Today's plan</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", dates.Format(today)))

	if len(tasks) == 0 {
		builder.WriteString("Nothing scheduled. Enjoy the free day!")
		return builder.String(), nil
	}

	builder.WriteString(fmt.Sprintf("Progress: <b>%d / %d</b> done\n\n", done, len(tasks)))
	for _, task := range tasks {
		builder.WriteString(formatTaskLine(task, catNames))
	}

	return strings.TrimSpace(builder.String()), nil
}

func priorityIcon(priority string) string {
	switch priority {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	case model.PriorityLow:
		return "🟢"
	default:
		return "⚪️"
	}
}

func formatTaskLine(task model.Task, catNames map[uint]string) string {
	var sb strings.Builder

	if task.IsCompleted {
		sb.WriteString("✅ ")
	} else {
		sb.WriteString(priorityIcon(task.Priority) + " ")
	}
	sb.WriteString(html.EscapeString(strings.TrimSpace(task.Title)))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok {
			trimmed := strings.TrimSpace(name)
			if trimmed != "" {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
			}
		}
	}

	if task.RoutineID != nil {
		sb.WriteString(" ♻️")
	}

	if task.Memo != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Memo))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

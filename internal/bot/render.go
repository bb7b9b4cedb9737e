package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
)

const (
	btnSkip     = "⏭ Skip"
	btnCancel   = "⏪ Cancel"
	btnEveryDay = "📆 Every day"
	btnHigh     = "🔴 High"
	btnMedium   = "🟡 Medium"
	btnLow      = "🟢 Low"
	btnToday    = "Today"
	btnTomorrow = "Tomorrow"
	btnNextWeek = "In a week"
)

var weekdayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

func escape(s string) string {
	return html.EscapeString(s)
}

func isSkipInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "skip" || t == "-" || strings.EqualFold(text, btnSkip) || strings.HasSuffix(t, "skip")
}

func isCancelInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "cancel" || strings.EqualFold(text, btnCancel) || strings.HasSuffix(t, "cancel")
}

func isEveryDayInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "every day" || t == "everyday" || t == "daily" || strings.EqualFold(text, btnEveryDay) || strings.HasSuffix(t, "every day")
}

func parsePriority(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == model.PriorityHigh || strings.EqualFold(text, btnHigh) || strings.HasSuffix(t, "high"):
		return model.PriorityHigh, true
	case t == model.PriorityMedium || strings.EqualFold(text, btnMedium) || strings.HasSuffix(t, "medium"):
		return model.PriorityMedium, true
	case t == model.PriorityLow || strings.EqualFold(text, btnLow) || strings.HasSuffix(t, "low"):
		return model.PriorityLow, true
	default:
		return "", false
	}
}

// parseDateChoice accepts the keyboard shortcuts or an explicit YYYY-MM-DD.
func parseDateChoice(text string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(btnToday), "today":
		return dates.Today(), nil
	case strings.ToLower(btnTomorrow), "tomorrow":
		return dates.Today().AddDate(0, 0, 1), nil
	case strings.ToLower(btnNextWeek), "in a week", "next week":
		return dates.Today().AddDate(0, 0, 7), nil
	default:
		return dates.Parse(strings.TrimSpace(text))
	}
}

// parseWeekdays reads a comma-separated weekday list like "mon,wed,fri".
func parseWeekdays(text string) ([]int, error) {
	parts := strings.Split(text, ",")
	seen := make(map[int]bool)
	var days []int
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no weekdays given")
	}
	return days, nil
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

func dayHeading(date time.Time) string {
	switch {
	case date.Equal(dates.Today()):
		return "Today, " + dates.Format(date)
	case date.Equal(dates.Today().AddDate(0, 0, 1)):
		return "Tomorrow, " + dates.Format(date)
	default:
		return date.Weekday().String() + ", " + dates.Format(date)
	}
}

func renderTaskLine(task model.Task, catNames map[uint]string) string {
	var sb strings.Builder

	if task.IsCompleted {
		sb.WriteString("✅ ")
	} else {
		sb.WriteString(priorityIcon(task.Priority) + " ")
	}
	sb.WriteString(fmt.Sprintf("#%d %s", task.ID, escape(strings.TrimSpace(task.Title))))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok && strings.TrimSpace(name) != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(strings.TrimSpace(name))))
		}
	}
	if task.RoutineID != nil {
		sb.WriteString(" ♻️")
	}
	if task.Memo != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", escape(strings.TrimSpace(task.Memo))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func renderRoutineLine(routine model.Routine) string {
	var sb strings.Builder

	if routine.IsActive {
		sb.WriteString("▶️ ")
	} else {
		sb.WriteString("⏸ ")
	}
	sb.WriteString(fmt.Sprintf("#%d %s · %s", routine.ID, escape(strings.TrimSpace(routine.Title)), describeSchedule(routine)))
	if routine.Memo != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", escape(strings.TrimSpace(routine.Memo))))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func describeSchedule(routine model.Routine) string {
	var sb strings.Builder
	if len(routine.DaysOfWeek) == 0 {
		sb.WriteString("every day")
	} else {
		short := [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
		names := make([]string, 0, len(routine.DaysOfWeek))
		for _, day := range routine.DaysOfWeek {
			if day >= 0 && day <= 6 {
				names = append(names, short[day])
			}
		}
		sb.WriteString(strings.Join(names, "/"))
	}
	if routine.HasTime && routine.Time != nil {
		clock := *routine.Time
		if len(clock) >= 5 {
			clock = clock[:5]
		}
		sb.WriteString(" at " + clock)
	}
	return sb.String()
}

func renderWishItemLine(item model.WishItem) string {
	var sb strings.Builder

	if item.IsCompleted {
		sb.WriteString("🌟 ")
	} else {
		sb.WriteString("✨ ")
	}
	sb.WriteString(fmt.Sprintf("#%d %s", item.ID, escape(strings.TrimSpace(item.Title))))
	if item.Reason != "" {
		sb.WriteString(fmt.Sprintf("\n   💭 %s", escape(strings.TrimSpace(item.Reason))))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func taskButtonRow(task model.Task) []tgbotapi.InlineKeyboardButton {
	toggleLabel := fmt.Sprintf("✅ #%d", task.ID)
	if task.IsCompleted {
		toggleLabel = fmt.Sprintf("↩️ #%d", task.ID)
	}
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(toggleLabel, fmt.Sprintf("%s%d", cbCompletePrefix, task.ID)),
		tgbotapi.NewInlineKeyboardButtonData("📆 Tomorrow", fmt.Sprintf("%s%d", cbTomorrowPrefix, task.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, task.ID)),
	}
}

func routineButtonRow(routine model.Routine) []tgbotapi.InlineKeyboardButton {
	toggleLabel := fmt.Sprintf("⏸ #%d", routine.ID)
	if !routine.IsActive {
		toggleLabel = fmt.Sprintf("▶️ #%d", routine.ID)
	}
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(toggleLabel, fmt.Sprintf("%s%d", cbRoutineTogglePfx, routine.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbRoutineDeletePfx, routine.ID)),
	}
}

func wishButtonRow(item model.WishItem) []tgbotapi.InlineKeyboardButton {
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🎯 #%d To task", item.ID), fmt.Sprintf("%s%d", cbWishConvertPrefix, item.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🌟", fmt.Sprintf("%s%d", cbWishTogglePrefix, item.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbWishDeletePrefix, item.ID)),
	}
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnHigh),
			tgbotapi.NewKeyboardButton(btnMedium),
			tgbotapi.NewKeyboardButton(btnLow),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func dateKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
			tgbotapi.NewKeyboardButton(btnTomorrow),
			tgbotapi.NewKeyboardButton(btnNextWeek),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func weekdayKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnEveryDay),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func categoryKeyboard(names []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	row := make([]tgbotapi.KeyboardButton, 0, 2)
	for _, name := range names {
		row = append(row, tgbotapi.NewKeyboardButton(name))
		if len(row) == 2 {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancel),
	))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskdesk/internal/dates"
)

func (b *Bot) startTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{kind: convTask, stage: stageTaskTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) startRoutineConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{kind: convRoutine, stage: stageRoutineTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "♻️ New routine.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	switch state.kind {
	case convTask:
		return b.handleTaskConversation(ctx, msg, state)
	case convRoutine:
		return b.handleRoutineConversation(ctx, msg, state)
	case convConvert:
		return b.handleConvertConversation(ctx, msg, state)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Try again from /help.")
	}
}

func (b *Bot) handleTaskConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageTaskTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty. What is the task called?", cancelKeyboard())
		}
		state.task.Title = text
		state.stage = stageTaskMemo
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a memo (or tap Skip).", skipKeyboard())

	case stageTaskMemo:
		if !isSkipInput(text) {
			state.task.Memo = text
		}
		state.stage = stageTaskCategory
		return b.askCategory(ctx, msg, "🏷 Pick a category, type a new one, or Skip.")

	case stageTaskCategory:
		if !isSkipInput(text) {
			id, err := b.resolveCategory(ctx, msg, text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("Could not use that category: %s", escape(err.Error())), skipKeyboard())
			}
			state.task.CategoryID = id
		}
		state.stage = stageTaskPriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚡️ How urgent is it?", priorityKeyboard())

	case stageTaskPriority:
		priority, ok := parsePriority(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Tap High, Medium or Low.", priorityKeyboard())
		}
		state.task.Priority = priority
		state.stage = stageTaskDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📆 Which day? Tap a shortcut or send <code>2025-11-30</code>.", dateKeyboard())

	case stageTaskDate:
		date, err := parseDateChoice(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that date. Use the buttons or <code>2025-11-30</code>.", dateKeyboard())
		}
		state.task.TaskDate = date

		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		task, err := b.taskSvc.CreateTask(ctx, user, state.task)
		b.clearConversation(msg.From.ID)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
		}

		log.Printf("[info] task created id=%d user=%d date=%s", task.ID, user.ID, dates.Format(task.TaskDate))
		if err := b.sendWithReplyMarkup(msg.Chat.ID,
			fmt.Sprintf("✅ Saved “%s” for %s.", escape(task.Title), dayHeading(task.TaskDate)),
			tgbotapi.NewRemoveKeyboard(true)); err != nil {
			return err
		}

		tasks, err := b.plannerSvc.OpenDay(ctx, user, task.TaskDate)
		if err != nil {
			return nil
		}
		return b.sendDayView(ctx, msg.Chat.ID, user, task.TaskDate, tasks)

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Start over with /newtask.")
	}
}

func (b *Bot) handleRoutineConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageRoutineTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty. What is the routine called?", cancelKeyboard())
		}
		state.routine.Title = text
		state.stage = stageRoutineMemo
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a memo (or tap Skip).", skipKeyboard())

	case stageRoutineMemo:
		if !isSkipInput(text) {
			state.routine.Memo = text
		}
		state.stage = stageRoutinePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚡️ Priority of the generated tasks?", priorityKeyboard())

	case stageRoutinePriority:
		priority, ok := parsePriority(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Tap High, Medium or Low.", priorityKeyboard())
		}
		state.routine.Priority = priority
		state.stage = stageRoutineDays
		return b.sendWithReplyMarkup(msg.Chat.ID,
			"📆 On which weekdays? Send e.g. <code>mon,wed,fri</code> or tap Every day.",
			weekdayKeyboard())

	case stageRoutineDays:
		if !isEveryDayInput(text) {
			days, err := parseWeekdays(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that. Send e.g. <code>mon,wed,fri</code> or tap Every day.", weekdayKeyboard())
			}
			state.routine.DaysOfWeek = days
		}
		state.stage = stageRoutineTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ A fixed time of day? Send <code>07:30</code> or Skip.", skipKeyboard())

	case stageRoutineTime:
		if !isSkipInput(text) {
			state.routine.HasTime = true
			state.routine.Time = text
		}

		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		routine, err := b.routineSvc.CreateRoutine(ctx, user, state.routine)
		b.clearConversation(msg.From.ID)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the routine: %s", escape(err.Error())))
		}

		log.Printf("[info] routine created id=%d user=%d", routine.ID, user.ID)
		return b.sendWithReplyMarkup(msg.Chat.ID,
			fmt.Sprintf("♻️ Routine “%s” saved (%s). It appears on your day view automatically.",
				escape(routine.Title), describeSchedule(*routine)),
			tgbotapi.NewRemoveKeyboard(true))

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Start over with /newroutine.")
	}
}

func (b *Bot) handleConvertConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageConvertDate:
		date, err := parseDateChoice(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Use the buttons or send <code>2025-11-30</code>.", dateKeyboard())
		}
		state.convert.TaskDate = date
		state.stage = stageConvertPriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "⚡️ Priority for the new task?", priorityKeyboard())

	case stageConvertPriority:
		priority, ok := parsePriority(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Tap High, Medium or Low.", priorityKeyboard())
		}
		state.convert.Priority = priority

		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		task, err := b.wishlistSvc.ConvertToTask(ctx, user, state.convertItem, state.convert)
		b.clearConversation(msg.From.ID)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not convert the wish: %s", escape(err.Error())))
		}

		log.Printf("[info] wish item %d converted to task %d user=%d", state.convertItem, task.ID, user.ID)
		return b.sendWithReplyMarkup(msg.Chat.ID,
			fmt.Sprintf("🎯 “%s” is now on %s. The wish stays in your list.", escape(task.Title), dayHeading(task.TaskDate)),
			tgbotapi.NewRemoveKeyboard(true))

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset.")
	}
}

// askCategory shows existing categories as a reply keyboard.
func (b *Bot) askCategory(ctx context.Context, msg *tgbotapi.Message, prompt string) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		log.Printf("list categories: %v", err)
	}

	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, prompt, categoryKeyboard(names))
}

// resolveCategory maps a typed name to an existing category or creates it.
func (b *Bot) resolveCategory(ctx context.Context, msg *tgbotapi.Message, name string) (*uint, error) {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return nil, err
	}

	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			id := cat.ID
			return &id, nil
		}
	}

	category, err := b.categorySvc.Create(ctx, user, name, "")
	if err != nil {
		return nil, err
	}
	id := category.ID
	return &id, nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return err
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		id, err := parseCallbackID(data, cbCompletePrefix)
		if err != nil {
			return err
		}
		task, err := b.taskSvc.ToggleComplete(ctx, user, id)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not update the task: %s", escape(err.Error())))
		}
		if task.IsCompleted {
			return b.sendText(chatID, fmt.Sprintf("✅ Done: “%s”.", escape(task.Title)))
		}
		return b.sendText(chatID, fmt.Sprintf("↩️ Back to open: “%s”.", escape(task.Title)))

	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseCallbackID(data, cbDeletePrefix)
		if err != nil {
			return err
		}
		if err := b.taskSvc.DeleteTask(ctx, user, id); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not delete: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "🗑 Task deleted.")

	case strings.HasPrefix(data, cbTomorrowPrefix):
		id, err := parseCallbackID(data, cbTomorrowPrefix)
		if err != nil {
			return err
		}
		tomorrow := dates.Today().AddDate(0, 0, 1)
		task, err := b.taskSvc.MoveToDate(ctx, user, id, tomorrow)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not move the task: %s", escape(err.Error())))
		}
		return b.sendText(chatID, fmt.Sprintf("📆 “%s” moved to tomorrow.", escape(task.Title)))

	case strings.HasPrefix(data, cbRoutineTogglePfx):
		id, err := parseCallbackID(data, cbRoutineTogglePfx)
		if err != nil {
			return err
		}
		routine, err := b.routineSvc.GetRoutine(ctx, user, id)
		if err != nil {
			return b.sendText(chatID, "Routine not found.")
		}
		if err := b.routineSvc.ToggleActive(ctx, user, id, !routine.IsActive); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not update the routine: %s", escape(err.Error())))
		}
		if routine.IsActive {
			return b.sendText(chatID, fmt.Sprintf("⏸ Routine “%s” paused.", escape(routine.Title)))
		}
		return b.sendText(chatID, fmt.Sprintf("▶️ Routine “%s” resumed.", escape(routine.Title)))

	case strings.HasPrefix(data, cbRoutineDeletePfx):
		id, err := parseCallbackID(data, cbRoutineDeletePfx)
		if err != nil {
			return err
		}
		if err := b.routineSvc.DeleteRoutine(ctx, user, id); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not delete the routine: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "🗑 Routine deleted. Tasks it already created are kept.")

	case strings.HasPrefix(data, cbWishTogglePrefix):
		id, err := parseCallbackID(data, cbWishTogglePrefix)
		if err != nil {
			return err
		}
		item, err := b.wishlistSvc.ToggleItem(ctx, user, id)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not update the wish: %s", escape(err.Error())))
		}
		if item.IsCompleted {
			return b.sendText(chatID, fmt.Sprintf("🌟 Fulfilled: “%s”.", escape(item.Title)))
		}
		return b.sendText(chatID, fmt.Sprintf("↩️ Back on the list: “%s”.", escape(item.Title)))

	case strings.HasPrefix(data, cbWishDeletePrefix):
		id, err := parseCallbackID(data, cbWishDeletePrefix)
		if err != nil {
			return err
		}
		if err := b.wishlistSvc.DeleteItem(ctx, user, id); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not delete the wish: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "🗑 Wish deleted.")

	case strings.HasPrefix(data, cbWishConvertPrefix):
		id, err := parseCallbackID(data, cbWishConvertPrefix)
		if err != nil {
			return err
		}
		b.setConversation(cb.From.ID, &conversationState{
			kind:        convConvert,
			stage:       stageConvertDate,
			convertItem: id,
		})
		return b.sendWithReplyMarkup(chatID, "🎯 Which day should it land on?", dateKeyboard())

	default:
		return nil
	}
}

func parseCallbackID(data, prefix string) (uint, error) {
	return parseIDArgument(strings.TrimPrefix(data, prefix))
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
)

type conversationKind int

const (
	convNone conversationKind = iota
	convTask
	convRoutine
	convConvert
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTaskTitle
	stageTaskMemo
	stageTaskCategory
	stageTaskPriority
	stageTaskDate
	stageRoutineTitle
	stageRoutineMemo
	stageRoutinePriority
	stageRoutineDays
	stageRoutineTime
	stageConvertDate
	stageConvertPriority
)

const (
	cbCompletePrefix    = "complete:"
	cbDeletePrefix      = "delete:"
	cbTomorrowPrefix    = "tomorrow:"
	cbRoutineTogglePfx  = "rtoggle:"
	cbRoutineDeletePfx  = "rdelete:"
	cbWishTogglePrefix  = "wtoggle:"
	cbWishDeletePrefix  = "wdelete:"
	cbWishConvertPrefix = "wconvert:"
)

type conversationState struct {
	kind        conversationKind
	stage       conversationStage
	task        service.TaskInput
	routine     service.RoutineInput
	convertItem uint
	convert     service.ConvertInput
}

// Bot aggregates the Telegram API with the planner services. Every command
// and callback is a "view load" or "mutation handler" over them.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	plannerSvc    *service.PlannerService
	taskSvc       *service.TaskService
	routineSvc    *service.RoutineService
	categorySvc   *service.CategoryService
	wishlistSvc   *service.WishlistService
	reminderSvc   *service.ReminderService
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(
	token string,
	userRepo *repository.UserRepository,
	plannerSvc *service.PlannerService,
	taskSvc *service.TaskService,
	routineSvc *service.RoutineService,
	categorySvc *service.CategoryService,
	wishlistSvc *service.WishlistService,
	reminderSvc *service.ReminderService,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		plannerSvc:    plannerSvc,
		taskSvc:       taskSvc,
		routineSvc:    routineSvc,
		categorySvc:   categorySvc,
		wishlistSvc:   wishlistSvc,
		reminderSvc:   reminderSvc,
		conversations: make(map[int64]*conversationState),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled. Nothing was saved.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		b.clearConversation(msg.From.ID)
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Try /today to see your day or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.handleDay(ctx, msg, dates.Today())
	case "tomorrow":
		return b.handleDay(ctx, msg, dates.Today().AddDate(0, 0, 1))
	case "week":
		return b.handleWeek(ctx, msg)
	case "newtask":
		return b.startTaskConversation(ctx, msg)
	case "newroutine":
		return b.startRoutineConversation(ctx, msg)
	case "routines":
		return b.handleRoutines(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "newcategory":
		return b.handleNewCategory(ctx, msg)
	case "wishlist":
		return b.handleWishlist(ctx, msg)
	case "wish":
		return b.handleWish(ctx, msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "delete":
		return b.handleDeleteTask(ctx, msg)
	case "search":
		return b.handleSearch(ctx, msg)
	case "notify", "settings":
		return b.handleNotify(ctx, msg)
	case "cancel":
		return b.sendText(msg.Chat.ID, "Nothing to cancel.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	// First contact also seeds the default wish list.
	if _, err := b.wishlistSvc.EnsureDefaultList(ctx, user); err != nil {
		log.Printf("ensure default wish list: %v", err)
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your daily tasks, routines and wishlist in one place.</b>\n\n"+
			"• /today — today's list (routines appear automatically)\n"+
			"• /newtask — add a task\n"+
			"• /newroutine — add a recurring routine\n"+
			"• /wishlist — your wishlist\n"+
			"• /help — everything else",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /today, /tomorrow — day view\n" +
		"• /week — week view (manual order)\n" +
		"• /newtask — add a task step by step\n" +
		"• /complete &lt;id&gt;, /delete &lt;id&gt; — by task number\n" +
		"• /newroutine — recurring routine with weekday schedule\n" +
		"• /routines — list, pause or delete routines\n" +
		"• /categories, /newcategory &lt;name&gt; — manage categories\n" +
		"• /wishlist, /wish &lt;title&gt; — wishlist; convert items into tasks\n" +
		"• /search &lt;text&gt; — find tasks by title or memo\n" +
		"• /notify on|off|HH:MM — daily summary settings\n" +
		"• /cancel — abort the current dialog"
	return b.sendText(msg.Chat.ID, text)
}

// handleDay is the view-load path: open the date (carry-over + routine
// generation happen inside for today) and render the ordered list.
func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message, date time.Time) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	tasks, err := b.plannerSvc.OpenDay(ctx, user, date)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}

	return b.sendDayView(ctx, msg.Chat.ID, user, date, tasks)
}

func (b *Bot) sendDayView(ctx context.Context, chatID int64, user *model.User, date time.Time, tasks []model.Task) error {
	catNames, err := b.categoryNames(ctx, user)
	if err != nil {
		log.Printf("list categories: %v", err)
	}

	if len(tasks) == 0 {
		return b.sendText(chatID, fmt.Sprintf("🗓 <b>%s</b>\n\nNo tasks. Add one with /newtask.", dayHeading(date)))
	}

	done := 0
	for _, task := range tasks {
		if task.IsCompleted {
			done++
		}
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🗓 <b>%s</b> · %d / %d done\n\n", dayHeading(date), done, len(tasks)))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(renderTaskLine(task, catNames))
		buttons = append(buttons, taskButtonRow(task))
	}

	reply := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	week, buckets, err := b.plannerSvc.OpenWeek(ctx, user, dates.Today())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load the week: %s", escape(err.Error())))
	}

	catNames, err := b.categoryNames(ctx, user)
	if err != nil {
		log.Printf("list categories: %v", err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📅 <b>Week %s – %s</b>\n\n", dates.Format(week[0]), dates.Format(week[6])))
	for _, day := range week {
		bucket := buckets[dates.Format(day)]
		builder.WriteString(fmt.Sprintf("<b>%s %s</b>\n", day.Weekday().String()[:3], dates.Format(day)))
		if len(bucket) == 0 {
			builder.WriteString("– nothing\n")
		}
		for _, task := range bucket {
			builder.WriteString(renderTaskLine(task, catNames))
		}
		builder.WriteByte('\n')
	}

	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseIDArgument(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give me a task number: /complete 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.ToggleComplete(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "Task not found.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	if task.IsCompleted {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Done: “%s”.", escape(task.Title)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ Back to open: “%s”.", escape(task.Title)))
}

func (b *Bot) handleDeleteTask(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseIDArgument(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give me a task number: /delete 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not delete: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "🗑 Task deleted.")
}

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) error {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		return b.sendText(msg.Chat.ID, "What should I search for? /search groceries")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	tasks, err := b.taskSvc.Search(ctx, user, query)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Search failed: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("No tasks matching “%s”.", escape(query)))
	}

	catNames, err := b.categoryNames(ctx, user)
	if err != nil {
		log.Printf("list categories: %v", err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🔍 <b>Matches for “%s”</b>\n\n", escape(query)))
	for _, task := range tasks {
		builder.WriteString(fmt.Sprintf("%s · %s", dates.Format(task.TaskDate), renderTaskLine(task, catNames)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleRoutines(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	routines, err := b.routineSvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load routines: %s", escape(err.Error())))
	}
	if len(routines) == 0 {
		return b.sendText(msg.Chat.ID, "No routines yet. Create one with /newroutine.")
	}

	var builder strings.Builder
	builder.WriteString("♻️ <b>Routines</b>\nPaused routines stop generating tasks; existing tasks stay.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, routine := range routines {
		builder.WriteString(renderRoutineLine(routine))
		buttons = append(buttons, routineButtonRow(routine))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet. Add one: /newcategory Health")
	}

	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", escape(strings.TrimSpace(cat.Name))))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleNewCategory(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Name the category: /newcategory Health")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	category, err := b.categorySvc.Create(ctx, user, name, "")
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not create category: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📂 Category “%s” created.", escape(category.Name)))
}

func (b *Bot) handleWishlist(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	list, err := b.wishlistSvc.EnsureDefaultList(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load the wishlist: %s", escape(err.Error())))
	}

	items, err := b.wishlistSvc.Items(ctx, user, list.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load wish items: %s", escape(err.Error())))
	}
	if len(items) == 0 {
		return b.sendText(msg.Chat.ID, "✨ The wishlist is empty. Add something: /wish Learn the ukulele")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("✨ <b>%s</b>\n“To task” puts an item on your day list; it stays here too.\n\n", escape(list.Title)))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, item := range items {
		builder.WriteString(renderWishItemLine(item))
		buttons = append(buttons, wishButtonRow(item))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleWish(ctx context.Context, msg *tgbotapi.Message) error {
	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		return b.sendText(msg.Chat.ID, "What do you wish for? /wish Learn the ukulele")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	list, err := b.wishlistSvc.EnsureDefaultList(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load the wishlist: %s", escape(err.Error())))
	}

	item, err := b.wishlistSvc.CreateItem(ctx, user, service.WishItemInput{WishListID: list.ID, Title: title})
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not add the wish: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✨ Added “%s” to %s.", escape(item.Title), escape(list.Title)))
}

func (b *Bot) handleNotify(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	switch {
	case arg == "":
		state := "off"
		if user.NotificationEnabled {
			state = "on, at " + user.NotificationTime
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🔔 Daily summary is <b>%s</b>.\nUse /notify on, /notify off or /notify 09:30.", state))
	case arg == "on":
		err = b.userRepo.UpdateNotificationSettings(ctx, user.ID, true, user.NotificationTime)
	case arg == "off":
		err = b.userRepo.UpdateNotificationSettings(ctx, user.ID, false, user.NotificationTime)
	default:
		if _, parseErr := time.Parse("15:04", arg); parseErr != nil {
			return b.sendText(msg.Chat.ID, "Use /notify on, /notify off or a time like /notify 09:30.")
		}
		err = b.userRepo.UpdateNotificationSettings(ctx, user.ID, true, arg)
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save settings: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "🔔 Notification settings saved.")
}

// SendScheduledReminders delivers the daily summary to every user whose
// notification clock matches now's HH:MM. Called once a minute by cron.
func (b *Bot) SendScheduledReminders(ctx context.Context, now time.Time) error {
	users, err := b.userRepo.ListNotifiable(ctx, now.Format("15:04"))
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) categoryNames(ctx context.Context, user *model.User) (map[uint]string, error) {
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func parseIDArgument(arg string) (uint, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, fmt.Errorf("empty id")
	}
	id64, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", arg, err)
	}
	return uint(id64), nil
}

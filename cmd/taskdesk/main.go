package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/internal/bot"
	"taskdesk/internal/config"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Timezone, err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	wishListRepo := repository.NewWishListRepository(db)
	wishItemRepo := repository.NewWishItemRepository(db)

	taskSvc := service.NewTaskService(taskRepo)
	routineSvc := service.NewRoutineService(routineRepo, taskRepo)
	plannerSvc := service.NewPlannerService(taskSvc, routineSvc)
	categorySvc := service.NewCategoryService(categoryRepo)
	wishlistSvc := service.NewWishlistService(wishListRepo, wishItemRepo, taskRepo)
	reminderSvc := service.NewReminderService(taskRepo, categoryRepo)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, plannerSvc, taskSvc, routineSvc, categorySvc, wishlistSvc, reminderSvc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(loc)
	if _, err := scheduler.ScheduleEveryMinute(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendScheduledReminders(jobCtx, time.Now().In(loc)); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("reminders: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule reminders: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Taskdesk bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pill_reminder_bot/internal/app"
	"pill_reminder_bot/internal/domain/pill"
	"pill_reminder_bot/internal/infra/config"
	idb "pill_reminder_bot/internal/infra/database"
	"pill_reminder_bot/internal/infra/logger"
	"pill_reminder_bot/internal/infra/scheduler"
	"pill_reminder_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	cycleRepo := idb.NewPostgresCycleRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	log.Info("Repositories initialized.")

	clock := pill.SystemClock{}

	// Initialize Services
	cycleService := app.NewCycleService(cycleRepo, settingsRepo, clock,
		logger.Get().WithField("component", "cycle_service"))
	settingsService := app.NewSettingsService(settingsRepo)
	log.Info("Cycle and settings services initialized.")

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Get().WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(map[string]interface{}{
					"message": c.Text(),
					"sender":  c.Sender().ID,
					"chat":    c.Chat().ID,
				})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	telegramClient := telegram.NewTelebotAdapter(bot)

	// Initialize ReminderService and its scheduler
	reminderService := app.NewReminderService(
		cycleRepo,
		settingsRepo,
		telegramClient,
		clock,
		logger.Get().WithField("component", "reminder_service"),
		time.Duration(cfg.DueWindowSeconds)*time.Second,
		time.Duration(cfg.OverdueWindowSeconds)*time.Second,
	)
	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecDueCheck,
		cfg.CronSpecOverdueCheck,
		cfg.CronSpecDailyRollover,
	)
	reminderScheduler.Start()

	// Register Handlers
	handlerCtx := context.Background()
	handlerLogger := logger.Get().WithField("component", "telegram")
	telegram.RegisterBotCommands(handlerCtx, bot, cycleService, handlerLogger)
	telegram.RegisterPillHandlers(handlerCtx, bot, cycleService, settingsService, handlerLogger)
	telegram.RegisterTakeResponseHandlers(handlerCtx, bot, cycleService)
	log.Info("Telegram handlers registered.")

	log.Info("Application setup complete. Bot and scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	reminderScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully.")
}

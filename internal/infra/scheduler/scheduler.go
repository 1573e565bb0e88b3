package scheduler

import (
	"context"
	"time"

	"pill_reminder_bot/internal/app" // For ReminderService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler drives the reminder sweeps on cron schedules: a
// frequent due check at each chat's pill time, a coarser overdue check,
// and a daily rollover for cycle completion.
type ReminderScheduler struct {
	cronEngine            *cron.Cron
	reminderService       app.ReminderService
	logger                *logrus.Entry
	cronSpecDueCheck      string
	cronSpecOverdueCheck  string
	cronSpecDailyRollover string
}

func NewReminderScheduler(
	reminderService app.ReminderService,
	logger *logrus.Entry,
	cronSpecDueCheck string, // e.g., "* * * * *" (every minute)
	cronSpecOverdueCheck string, // e.g., "*/5 * * * *" (every 5 minutes)
	cronSpecDailyRollover string, // e.g., "0 9 * * *" (9 AM daily)
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:            cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reminderService:       reminderService,
		logger:                logger,
		cronSpecDueCheck:      cronSpecDueCheck,
		cronSpecOverdueCheck:  cronSpecOverdueCheck,
		cronSpecDailyRollover: cronSpecDailyRollover,
	}
}

func (s *ReminderScheduler) Start() {
	s.logger.Info("Starting reminder scheduler...")

	// Job for on-time reminders at each chat's scheduled minute
	_, err := s.cronEngine.AddFunc(s.cronSpecDueCheck, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.reminderService.ProcessDueReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Error during due reminder processing")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add due reminder cron job")
	}

	// Job for nudging chats past their delay threshold
	_, err = s.cronEngine.AddFunc(s.cronSpecOverdueCheck, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.reminderService.ProcessOverdueReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Error during overdue reminder processing")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add overdue reminder cron job")
	}

	// Daily job announcing cycle completion
	_, err = s.cronEngine.AddFunc(s.cronSpecDailyRollover, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute) // Longer timeout for the full sweep
		defer cancel()
		if err := s.reminderService.ProcessDailyRollover(ctx); err != nil {
			s.logger.WithError(err).Error("Error during daily rollover processing")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add daily rollover cron job")
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started with jobs")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops new runs, waits for running jobs
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder scheduler gracefully stopped")
}

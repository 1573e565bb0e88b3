package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pill_reminder_bot/internal/app"
	"pill_reminder_bot/internal/domain/pill"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterPillHandlers registers the cycle and settings commands.
func RegisterPillHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cycleService *app.CycleService,
	settingsService *app.SettingsService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/newcycle", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/newcycle",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		args := c.Args()
		// Expected format: /newcycle <takingDays> <breakDays> [YYYY-MM-DD]
		if len(args) < 2 || len(args) > 3 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Invalid format. Use: /newcycle <takingDays> <breakDays> [YYYY-MM-DD]")
		}

		takingDays, err := strconv.Atoi(args[0])
		if err != nil || takingDays <= 0 {
			return c.Send("Error: taking days must be a positive number.")
		}
		breakDays, err := strconv.Atoi(args[1])
		if err != nil || breakDays < 0 {
			return c.Send("Error: break days must be zero or a positive number.")
		}

		startDate := time.Now()
		if len(args) == 3 {
			startDate, err = time.ParseInLocation("2006-01-02", args[2], time.Local)
			if err != nil {
				handlerLogger.WithField("arg", args[2]).Warn("Invalid start date format")
				return c.Send("Error: the start date must look like 2025-01-31.")
			}
		}

		info := pill.PillInfo{TakingDays: takingDays, BreakDays: breakDays}
		cycle, err := cycleService.StartCycle(ctx, c.Chat().ID, info, startDate)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to start cycle")
			return c.Send("Something went wrong while starting the cycle. Please try again later.")
		}

		handlerLogger.WithFields(logrus.Fields{
			"cycle_id":     cycle.ID,
			"cycle_number": cycle.CycleNumber,
		}).Info("Cycle started successfully")
		return c.Send(fmt.Sprintf("Cycle %d started: %d taking days + %d break days from %s, pill time %s.",
			cycle.CycleNumber, cycle.TakingDays, cycle.BreakDays,
			cycle.StartDate.Format("2006-01-02"), cycle.ScheduledTime))
	})

	b.Handle("/take", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/take",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		cycle, changed, err := cycleService.TakePill(ctx, c.Chat().ID)
		if err != nil {
			if err == app.ErrNoActiveCycle {
				return c.Send("No active cycle yet. Use /newcycle to set up your regimen.")
			}
			handlerLogger.WithError(err).Error("Failed to record pill")
			return c.Send("Something went wrong while recording the pill. Please try again later.")
		}
		if !changed {
			return c.Send("Nothing to record: today's pill is already taken or today has no scheduled dose.")
		}

		msg, err := cycleService.AdvisoryMessage(ctx, c.Chat().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build advisory after take")
			return c.Send("Recorded. Keep it up!")
		}
		handlerLogger.WithField("cycle_id", cycle.ID).Info("Pill recorded via command")
		return c.Send("Recorded! " + msg.Text)
	})

	b.Handle("/status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/status",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		msg, err := cycleService.AdvisoryMessage(ctx, c.Chat().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to build advisory")
			return c.Send("Something went wrong while checking your cycle. Please try again later.")
		}
		return c.Send(msg.Text)
	})

	b.Handle("/calendar", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/calendar",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		cells, err := cycleService.Calendar(ctx, c.Chat().ID)
		if err != nil {
			if err == app.ErrNoActiveCycle {
				return c.Send("No active cycle yet. Use /newcycle to set up your regimen.")
			}
			handlerLogger.WithError(err).Error("Failed to build calendar")
			return c.Send("Something went wrong while building the calendar. Please try again later.")
		}

		var response strings.Builder
		response.WriteString("Current cycle:\n")
		for _, cell := range cells {
			response.WriteString(fmt.Sprintf("Day %2d  %s  %s\n",
				cell.CycleDay, cell.Date.Format("Mon 02 Jan"), statusLabel(cell.Status)))
		}
		return c.Send(response.String())
	})

	b.Handle("/stats", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/stats",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		stats, err := cycleService.AdherenceReport(ctx, c.Chat().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to compute adherence report")
			return c.Send("Something went wrong while computing statistics. Please try again later.")
		}
		if stats.Total == 0 {
			return c.Send("No dose history yet. Statistics will appear once your cycle is underway.")
		}

		return c.Send(fmt.Sprintf(
			"Adherence over %d doses:\nOn time: %d (%.0f%%)\nDelayed or early: %d (%.0f%%)\nMissed or doubled: %d (%.0f%%)",
			stats.Total,
			stats.OnTime, stats.OnTimePercent,
			stats.Delayed, stats.DelayedPercent,
			stats.MissedOrDouble, stats.MissedOrDoublePercent))
	})

	b.Handle("/restart", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/restart",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		cycle, err := cycleService.RestartCycle(ctx, c.Chat().ID)
		if err != nil {
			switch err {
			case app.ErrNoActiveCycle:
				return c.Send("No active cycle yet. Use /newcycle to set up your regimen.")
			case app.ErrCycleNotCompleted:
				return c.Send("Your current cycle is still running. /restart becomes available once it finishes.")
			default:
				handlerLogger.WithError(err).Error("Failed to restart cycle")
				return c.Send("Something went wrong while restarting the cycle. Please try again later.")
			}
		}

		handlerLogger.WithField("cycle_number", cycle.CycleNumber).Info("Cycle restarted")
		return c.Send(fmt.Sprintf("Cycle %d started today. Keep it up!", cycle.CycleNumber))
	})

	b.Handle("/settings", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/settings",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		args := c.Args()
		chatID := c.Chat().ID
		if len(args) == 0 {
			st := settingsService.Get(ctx, chatID)
			notify := "off"
			if st.NotificationsEnabled {
				notify = "on"
			}
			return c.Send(fmt.Sprintf(
				"Pill time: %s\nReminders: %s\nLate window: %d minutes\n\nChange with /settings time HH:mm, /settings notify on|off or /settings window <minutes>.",
				st.ScheduledTime, notify, st.DelayThresholdMinutes))
		}

		switch strings.ToLower(args[0]) {
		case "time":
			if len(args) != 2 {
				return c.Send("Use: /settings time HH:mm")
			}
			st, err := settingsService.UpdateSchedule(ctx, chatID, args[1])
			if err != nil {
				if err == app.ErrInvalidScheduledTime {
					return c.Send("Error: the time must look like 09:00.")
				}
				handlerLogger.WithError(err).Error("Failed to update schedule")
				return c.Send("Something went wrong while saving the schedule. Please try again later.")
			}
			return c.Send(fmt.Sprintf("Pill time set to %s. It applies from your next cycle.", st.ScheduledTime))
		case "notify":
			if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
				return c.Send("Use: /settings notify on|off")
			}
			st, err := settingsService.SetNotifications(ctx, chatID, args[1] == "on")
			if err != nil {
				handlerLogger.WithError(err).Error("Failed to toggle notifications")
				return c.Send("Something went wrong while saving the setting. Please try again later.")
			}
			if st.NotificationsEnabled {
				return c.Send("Reminders are on.")
			}
			return c.Send("Reminders are off.")
		case "window":
			if len(args) != 2 {
				return c.Send("Use: /settings window <minutes>")
			}
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return c.Send("Error: the window must be a number of minutes.")
			}
			st, err := settingsService.UpdateDelayThreshold(ctx, chatID, minutes)
			if err != nil {
				if err == app.ErrInvalidDelayThreshold {
					return c.Send("Error: the window must be between 30 and 720 minutes.")
				}
				handlerLogger.WithError(err).Error("Failed to update delay threshold")
				return c.Send("Something went wrong while saving the setting. Please try again later.")
			}
			return c.Send(fmt.Sprintf("Late window set to %d minutes.", st.DelayThresholdMinutes))
		default:
			return c.Send("Unknown setting. Use time, notify or window.")
		}
	})
}

// statusLabel renders a status for the text calendar.
func statusLabel(s pill.PillStatus) string {
	switch s {
	case pill.StatusTaken, pill.StatusTodayTaken:
		return "taken"
	case pill.StatusTakenDelayed, pill.StatusTodayTakenDelayed:
		return "taken late"
	case pill.StatusTakenTooEarly, pill.StatusTodayTakenTooEarly:
		return "taken early"
	case pill.StatusTakenDouble:
		return "double dose"
	case pill.StatusMissed:
		return "missed"
	case pill.StatusTodayNotTaken:
		return "due today"
	case pill.StatusTodayDelayed, pill.StatusTodayDelayedCritical:
		return "overdue"
	case pill.StatusScheduled:
		return "upcoming"
	case pill.StatusRest:
		return "break"
	}
	return string(s)
}

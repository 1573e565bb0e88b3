// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"

	"pill_reminder_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cycleService *app.CycleService,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /start command")

		msg, err := cycleService.AdvisoryMessage(ctx, c.Chat().ID)
		if err != nil {
			logCtx.WithError(err).Error("Error building advisory for /start command")
			return c.Send("Something went wrong while checking your cycle. Please try again later.")
		}
		return c.Send("Hi! I track your daily medication cycle and remind you when it's pill time.\n\n" +
			msg.Text + "\n\nUse /help for the full command list.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString("Available commands:\n\n")
		helpText.WriteString("`/newcycle <takingDays> <breakDays> [YYYY-MM-DD]`\n - Start a regimen, e.g. /newcycle 21 7. The start date defaults to today.\n\n")
		helpText.WriteString("`/take`\n - Record today's pill as taken.\n\n")
		helpText.WriteString("`/status`\n - Show today's advisory message.\n\n")
		helpText.WriteString("`/calendar`\n - Show the current cycle day by day.\n\n")
		helpText.WriteString("`/stats`\n - Show adherence statistics across all cycles.\n\n")
		helpText.WriteString("`/restart`\n - Begin the next cycle once the current one is complete.\n\n")
		helpText.WriteString("`/settings [time HH:mm | notify on|off | window <minutes>]`\n - Show or change reminder settings.\n\n")
		helpText.WriteString("`/help`\n - Show this message.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

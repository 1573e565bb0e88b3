// internal/infra/telegram/take_response_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"pill_reminder_bot/internal/app"

	"gopkg.in/telebot.v3"
)

// RegisterTakeResponseHandlers wires the inline "I took it" button sent
// with reminders. The tap always applies to the chat's current cycle:
// even a press on an old reminder means "I took today's pill", and the
// engine's idempotency guard absorbs double taps.
func RegisterTakeResponseHandlers(ctx context.Context, b *telebot.Bot, cycleService *app.CycleService) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := strings.TrimPrefix(c.Callback().Data, "\f")

		if !strings.HasPrefix(data, "take_") {
			// Fallback for callbacks this handler does not own.
			c.Bot().OnError(fmt.Errorf("unhandled callback data: %s", data), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}

		_, changed, err := cycleService.TakePill(ctx, c.Chat().ID)
		if err != nil {
			if err == app.ErrNoActiveCycle {
				return c.Respond(&telebot.CallbackResponse{Text: "No active cycle anymore."})
			}
			c.Bot().OnError(fmt.Errorf("error recording pill from callback: %w", err), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}
		if !changed {
			return c.Respond(&telebot.CallbackResponse{Text: "Already recorded for today."})
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Recorded. Well done!"})
	})
}

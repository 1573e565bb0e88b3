// internal/domain/settings/settings.go
package settings

import "time"

// Defaults applied when a chat has not saved settings yet, and fallen
// back to when the settings store cannot be read.
const (
	DefaultScheduledTime         = "09:00"
	DefaultDelayThresholdMinutes = 120
	DefaultNotificationMessage   = "Time for your pill!"
)

// UserSettings holds a chat's reminder preferences. ScheduledTime is a
// clock time in "HH:mm" form; DelayThresholdMinutes is the late window
// fed into dose classification.
type UserSettings struct {
	ChatID                int64
	ScheduledTime         string
	NotificationsEnabled  bool
	DelayThresholdMinutes int
	NotificationMessage   string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Default returns the settings used before a chat configures anything.
func Default(chatID int64) *UserSettings {
	return &UserSettings{
		ChatID:                chatID,
		ScheduledTime:         DefaultScheduledTime,
		NotificationsEnabled:  true,
		DelayThresholdMinutes: DefaultDelayThresholdMinutes,
		NotificationMessage:   DefaultNotificationMessage,
	}
}

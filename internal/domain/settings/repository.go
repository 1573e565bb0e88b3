package settings

import "context"

// Repository defines the operations for persisting and retrieving user
// reminder settings.
type Repository interface {
	Fetch(ctx context.Context, chatID int64) (*UserSettings, error)
	Save(ctx context.Context, s *UserSettings) error
	// ListNotificationEnabled returns the settings of every chat with
	// reminders switched on, for the scheduler's sweep.
	ListNotificationEnabled(ctx context.Context) ([]*UserSettings, error)
}

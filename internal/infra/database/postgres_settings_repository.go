// internal/infra/database/postgres_settings_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"pill_reminder_bot/internal/domain/settings"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrSettingsNotFound = fmt.Errorf("user settings not found")

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Fetch(ctx context.Context, chatID int64) (*settings.UserSettings, error) {
	query := `SELECT chat_id, scheduled_time, notifications_enabled, delay_threshold_minutes, notification_message, created_at, updated_at
               FROM user_settings WHERE chat_id = $1`
	s := &settings.UserSettings{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&s.ChatID, &s.ScheduledTime, &s.NotificationsEnabled, &s.DelayThresholdMinutes, &s.NotificationMessage, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting settings for chat %d: %w", chatID, err)
	}
	return s, nil
}

// Save upserts the chat's settings row.
func (r *PostgresSettingsRepository) Save(ctx context.Context, s *settings.UserSettings) error {
	query := `INSERT INTO user_settings (chat_id, scheduled_time, notifications_enabled, delay_threshold_minutes, notification_message)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (chat_id) DO UPDATE
               SET scheduled_time = EXCLUDED.scheduled_time,
                   notifications_enabled = EXCLUDED.notifications_enabled,
                   delay_threshold_minutes = EXCLUDED.delay_threshold_minutes,
                   notification_message = EXCLUDED.notification_message,
                   updated_at = NOW()
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ChatID, s.ScheduledTime, s.NotificationsEnabled, s.DelayThresholdMinutes, s.NotificationMessage).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving settings for chat %d: %w", s.ChatID, err)
	}
	return nil
}

func (r *PostgresSettingsRepository) ListNotificationEnabled(ctx context.Context) ([]*settings.UserSettings, error) {
	query := `SELECT chat_id, scheduled_time, notifications_enabled, delay_threshold_minutes, notification_message, created_at, updated_at
               FROM user_settings WHERE notifications_enabled = TRUE ORDER BY chat_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing notification-enabled settings: %w", err)
	}
	defer rows.Close()

	list := make([]*settings.UserSettings, 0)
	for rows.Next() {
		s := &settings.UserSettings{}
		if err := rows.Scan(&s.ChatID, &s.ScheduledTime, &s.NotificationsEnabled, &s.DelayThresholdMinutes, &s.NotificationMessage, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning settings row: %w", err)
		}
		list = append(list, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings rows: %w", err)
	}
	return list, nil
}

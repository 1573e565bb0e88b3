package app

import (
	"context"
	"fmt"

	"pill_reminder_bot/internal/domain/pill"
	"pill_reminder_bot/internal/domain/settings"
)

// Custom application-level errors for the settings service
var ErrInvalidScheduledTime = fmt.Errorf("scheduled time must be in HH:mm form")
var ErrInvalidDelayThreshold = fmt.Errorf("delay threshold must be between 30 and 720 minutes")

type SettingsService struct {
	settingsRepo settings.Repository
}

func NewSettingsService(sr settings.Repository) *SettingsService {
	return &SettingsService{settingsRepo: sr}
}

// Get returns the chat's settings, falling back to defaults when no row
// exists or the store cannot be read.
func (s *SettingsService) Get(ctx context.Context, chatID int64) *settings.UserSettings {
	return s.fetchOrDefault(ctx, chatID)
}

// UpdateSchedule validates and persists a new daily reminder time.
func (s *SettingsService) UpdateSchedule(ctx context.Context, chatID int64, scheduledTime string) (*settings.UserSettings, error) {
	if _, _, err := pill.ParseTimeOfDay(scheduledTime); err != nil {
		return nil, ErrInvalidScheduledTime
	}

	st := s.fetchOrDefault(ctx, chatID)
	st.ScheduledTime = scheduledTime
	if err := s.settingsRepo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save schedule for chat %d: %w", chatID, err)
	}
	return st, nil
}

// SetNotifications toggles reminder delivery for the chat.
func (s *SettingsService) SetNotifications(ctx context.Context, chatID int64, enabled bool) (*settings.UserSettings, error) {
	st := s.fetchOrDefault(ctx, chatID)
	st.NotificationsEnabled = enabled
	if err := s.settingsRepo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save notification flag for chat %d: %w", chatID, err)
	}
	return st, nil
}

// UpdateDelayThreshold changes the late window used by dose
// classification. The fixed 2-hour too-early guard is not affected.
func (s *SettingsService) UpdateDelayThreshold(ctx context.Context, chatID int64, minutes int) (*settings.UserSettings, error) {
	if minutes < 30 || minutes > 720 {
		return nil, ErrInvalidDelayThreshold
	}

	st := s.fetchOrDefault(ctx, chatID)
	st.DelayThresholdMinutes = minutes
	if err := s.settingsRepo.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save delay threshold for chat %d: %w", chatID, err)
	}
	return st, nil
}

// fetchOrDefault degrades both a missing row and a read failure to the
// default settings, per the recovery policy for the settings store.
func (s *SettingsService) fetchOrDefault(ctx context.Context, chatID int64) *settings.UserSettings {
	st, err := s.settingsRepo.Fetch(ctx, chatID)
	if err != nil {
		return settings.Default(chatID)
	}
	return st
}

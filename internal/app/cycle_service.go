// internal/app/cycle_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"pill_reminder_bot/internal/domain/pill"
	"pill_reminder_bot/internal/domain/settings"
	idb "pill_reminder_bot/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the cycle service
var ErrNoActiveCycle = fmt.Errorf("no active pill cycle for this chat")
var ErrCycleNotCompleted = fmt.Errorf("current cycle has not finished yet")

// CycleService orchestrates the adherence engine against the stores. It
// never reimplements engine logic: every decision about statuses,
// messages or day arithmetic happens inside the pill package on value
// snapshots.
type CycleService struct {
	cycleRepo    pill.Repository
	settingsRepo settings.Repository
	clock        pill.Clock
	logger       *logrus.Entry
}

func NewCycleService(
	cr pill.Repository,
	sr settings.Repository,
	clock pill.Clock,
	logger *logrus.Entry,
) *CycleService {
	return &CycleService{
		cycleRepo:    cr,
		settingsRepo: sr,
		clock:        clock,
		logger:       logger,
	}
}

// StartCycle generates and persists a fresh cycle for the chat. The
// cycle number continues from the chat's latest cycle when one exists.
func (s *CycleService) StartCycle(ctx context.Context, chatID int64, info pill.PillInfo, startDate time.Time) (*pill.Cycle, error) {
	st := s.settingsOrDefault(ctx, chatID)

	cycleNumber := 1
	current, err := s.cycleRepo.FetchCurrentCycle(ctx, chatID)
	if err == nil {
		cycleNumber = current.CycleNumber + 1
	} else if err != idb.ErrCycleNotFound {
		return nil, fmt.Errorf("failed to check current cycle for chat %d: %w", chatID, err)
	}

	c, err := pill.NewCycle(info, cycleNumber, startDate, st.ScheduledTime, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate cycle for chat %d: %w", chatID, err)
	}

	if err := s.cycleRepo.SaveCycle(ctx, chatID, &c); err != nil {
		return nil, fmt.Errorf("failed to save cycle for chat %d: %w", chatID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"chat_id":      chatID,
		"cycle_id":     c.ID,
		"cycle_number": c.CycleNumber,
		"total_days":   c.TotalDays(),
	}).Info("New pill cycle started")
	return &c, nil
}

// RestartCycle begins the next run of the chat's current regimen,
// starting today. The current cycle must have run its course.
func (s *CycleService) RestartCycle(ctx context.Context, chatID int64) (*pill.Cycle, error) {
	current, err := s.cycleRepo.FetchCurrentCycle(ctx, chatID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("failed to fetch current cycle for chat %d: %w", chatID, err)
	}
	if !current.IsCycleCompleted(s.clock.Now()) {
		return nil, ErrCycleNotCompleted
	}

	info := pill.PillInfo{TakingDays: current.TakingDays, BreakDays: current.BreakDays}
	return s.StartCycle(ctx, chatID, info, s.clock.Now())
}

// TakePill records today's dose on the chat's current cycle. The bool
// result reports whether anything changed: a repeated take on the same
// day is a no-op by engine contract.
func (s *CycleService) TakePill(ctx context.Context, chatID int64) (*pill.Cycle, bool, error) {
	current, err := s.cycleRepo.FetchCurrentCycle(ctx, chatID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, false, ErrNoActiveCycle
		}
		return nil, false, fmt.Errorf("failed to fetch current cycle for chat %d: %w", chatID, err)
	}

	st := s.settingsOrDefault(ctx, chatID)
	now := s.clock.Now()
	updated := pill.TakePill(*current, st.DelayThresholdMinutes, now)

	idx := updated.RecordForDay(now)
	changed := idx >= 0 && !current.Records[idx].Status.IsTaken()
	if !changed {
		return current, false, nil
	}

	if err := s.cycleRepo.UpdateRecord(ctx, updated.ID, updated.Records[idx]); err != nil {
		return nil, false, fmt.Errorf("failed to persist taken record for chat %d: %w", chatID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"chat_id":   chatID,
		"cycle_id":  updated.ID,
		"cycle_day": updated.Records[idx].CycleDay,
		"status":    updated.Records[idx].Status,
	}).Info("Pill recorded as taken")
	return &updated, true, nil
}

// EditRecord applies a manual history edit to one record of a cycle.
// An out-of-range index leaves the cycle unchanged, mirroring the
// engine's no-op contract.
func (s *CycleService) EditRecord(ctx context.Context, cycleID uuid.UUID, index int, status pill.PillStatus, memo *pill.RecordMemo, takenAt *time.Time) (*pill.Cycle, error) {
	c, err := s.cycleRepo.FetchCycle(ctx, cycleID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("failed to fetch cycle %s: %w", cycleID, err)
	}

	updated := pill.UpdateRecordStatus(*c, index, status, memo, takenAt, s.clock.Now())
	if index < 0 || index >= len(updated.Records) {
		return c, nil
	}

	if err := s.cycleRepo.UpdateRecord(ctx, cycleID, updated.Records[index]); err != nil {
		return nil, fmt.Errorf("failed to persist edited record for cycle %s: %w", cycleID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"cycle_id":  cycleID,
		"cycle_day": updated.Records[index].CycleDay,
		"status":    status,
	}).Info("Day record edited")
	return &updated, nil
}

// AdvisoryMessage evaluates the rule chain for the chat's current
// cycle. A chat without a cycle gets a neutral onboarding message
// rather than an error.
func (s *CycleService) AdvisoryMessage(ctx context.Context, chatID int64) (pill.Message, error) {
	current, err := s.cycleRepo.FetchCurrentCycle(ctx, chatID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return pill.Message{
				Text:               "No active cycle yet. Use /newcycle to set up your regimen.",
				CharacterImageKey:  pill.CharacterCalm,
				IconKey:            pill.IconCalendar,
				BackgroundImageKey: pill.BackgroundDay,
			}, nil
		}
		return pill.Message{}, fmt.Errorf("failed to fetch current cycle for chat %d: %w", chatID, err)
	}

	st := s.settingsOrDefault(ctx, chatID)
	return pill.Advise(*current, s.clock.Now(), st.DelayThresholdMinutes), nil
}

// Calendar returns the per-day cell models of the chat's current cycle.
func (s *CycleService) Calendar(ctx context.Context, chatID int64) ([]pill.CalendarCell, error) {
	current, err := s.cycleRepo.FetchCurrentCycle(ctx, chatID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("failed to fetch current cycle for chat %d: %w", chatID, err)
	}
	st := s.settingsOrDefault(ctx, chatID)
	return pill.BuildCalendarCells(*current, st.DelayThresholdMinutes, s.clock.Now()), nil
}

// AdherenceReport aggregates dose outcomes across every cycle the chat
// has recorded. A fetch failure degrades to an empty cycle list.
func (s *CycleService) AdherenceReport(ctx context.Context, chatID int64) (pill.AdherenceStats, error) {
	all, err := s.cycleRepo.FetchAllCycles(ctx, chatID)
	if err != nil {
		s.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to fetch cycles for report, using empty history")
		all = nil
	}
	cycles := make([]pill.Cycle, 0, len(all))
	for _, c := range all {
		cycles = append(cycles, *c)
	}
	st := s.settingsOrDefault(ctx, chatID)
	return pill.ComputeAdherenceStats(cycles, st.DelayThresholdMinutes, s.clock), nil
}

// settingsOrDefault reads the chat's settings, falling back to the
// defaults when the row is missing or the store fails.
func (s *CycleService) settingsOrDefault(ctx context.Context, chatID int64) *settings.UserSettings {
	st, err := s.settingsRepo.Fetch(ctx, chatID)
	if err != nil {
		if err != idb.ErrSettingsNotFound {
			s.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to fetch settings, falling back to defaults")
		}
		return settings.Default(chatID)
	}
	return st
}

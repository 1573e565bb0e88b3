package app

import (
	"context"
	"testing"
	"time"

	"pill_reminder_bot/internal/domain/pill"
	"pill_reminder_bot/internal/domain/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 42

var testPillInfo = pill.PillInfo{Name: "Test 21+7", TakingDays: 21, BreakDays: 7}

func newTestCycleService(clock *fakeClock) (*CycleService, *fakeCycleRepo, *fakeSettingsRepo) {
	cr := newFakeCycleRepo()
	sr := newFakeSettingsRepo()
	return NewCycleService(cr, sr, clock, testLogger()), cr, sr
}

func TestStartCycleNumbering(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, repo, _ := newTestCycleService(clock)
	ctx := context.Background()

	first, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, first.CycleNumber)

	second, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, second.CycleNumber)

	assert.Len(t, repo.cycles[testChatID], 2)
}

func TestStartCycleUsesConfiguredScheduleTime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, _, sr := newTestCycleService(clock)
	ctx := context.Background()

	st := settings.Default(testChatID)
	st.ScheduledTime = "21:30"
	require.NoError(t, sr.Save(ctx, st))

	c, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 21, c.Records[0].ScheduledAt.Hour())
	assert.Equal(t, 30, c.Records[0].ScheduledAt.Minute())
}

func TestTakePillPersistsOnce(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, repo, _ := newTestCycleService(clock)
	ctx := context.Background()

	_, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)

	clock.advance(90 * time.Minute) // 09:30, past the default 09:00

	c, changed, err := svc.TakePill(ctx, testChatID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, pill.StatusTodayTaken, c.Records[0].Status)
	require.Len(t, repo.updatedRecs, 1)
	assert.Equal(t, 1, repo.updatedRecs[0].CycleDay)

	// Second take on the same day changes nothing.
	_, changed, err = svc.TakePill(ctx, testChatID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, repo.updatedRecs, 1)
}

func TestTakePillWithoutCycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, _, _ := newTestCycleService(clock)

	_, _, err := svc.TakePill(context.Background(), testChatID)
	assert.ErrorIs(t, err, ErrNoActiveCycle)
}

func TestRestartCycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, _, _ := newTestCycleService(clock)
	ctx := context.Background()

	_, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)

	_, err = svc.RestartCycle(ctx, testChatID)
	assert.ErrorIs(t, err, ErrCycleNotCompleted)

	clock.advance(27 * 24 * time.Hour) // day 28, the final day

	next, err := svc.RestartCycle(ctx, testChatID)
	require.NoError(t, err)
	assert.Equal(t, 2, next.CycleNumber)
	assert.Equal(t, pill.StartOfDay(clock.Now()), next.StartDate)
	assert.Equal(t, 21, next.TakingDays)
	assert.Equal(t, 7, next.BreakDays)
}

func TestEditRecord(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	svc, repo, _ := newTestCycleService(clock)
	ctx := context.Background()

	c, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now().AddDate(0, 0, -5))
	require.NoError(t, err)

	memo := &pill.RecordMemo{Note: "felt dizzy"}
	updated, err := svc.EditRecord(ctx, c.ID, 2, pill.StatusMissed, memo, nil)
	require.NoError(t, err)
	assert.Equal(t, pill.StatusMissed, updated.Records[2].Status)
	require.NotNil(t, updated.Records[2].Memo)
	assert.Equal(t, "felt dizzy", updated.Records[2].Memo.Note)
	assert.Len(t, repo.updatedRecs, 1)

	// Out-of-range index is a no-op.
	same, err := svc.EditRecord(ctx, c.ID, 99, pill.StatusMissed, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, pill.StatusMissed, same.Records[2].Status)
	assert.Len(t, repo.updatedRecs, 1)
}

func TestAdvisoryMessageWithoutCycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, _, _ := newTestCycleService(clock)

	m, err := svc.AdvisoryMessage(context.Background(), testChatID)
	require.NoError(t, err)
	assert.Contains(t, m.Text, "/newcycle")
}

func TestAdvisoryMessageForActiveCycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, _, _ := newTestCycleService(clock)
	ctx := context.Background()

	_, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)

	m, err := svc.AdvisoryMessage(ctx, testChatID)
	require.NoError(t, err)
	assert.Equal(t, "Today's pill is scheduled for 09:00.", m.Text)
}

func TestCalendar(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, _, _ := newTestCycleService(clock)
	ctx := context.Background()

	_, err := svc.Calendar(ctx, testChatID)
	assert.ErrorIs(t, err, ErrNoActiveCycle)

	_, err = svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now())
	require.NoError(t, err)

	cells, err := svc.Calendar(ctx, testChatID)
	require.NoError(t, err)
	assert.Len(t, cells, 28)
}

func TestAdherenceReportDegradesOnFetchFailure(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)}
	svc, repo, _ := newTestCycleService(clock)
	repo.fetchAllErr = assert.AnError

	stats, err := svc.AdherenceReport(context.Background(), testChatID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestAdherenceReport(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	svc, _, _ := newTestCycleService(clock)
	ctx := context.Background()

	_, err := svc.StartCycle(ctx, testChatID, testPillInfo, clock.Now().AddDate(0, 0, -5))
	require.NoError(t, err)

	stats, err := svc.AdherenceReport(ctx, testChatID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.OnTime) // generated backfill counts as on time
	assert.Equal(t, 5, stats.Total)
}

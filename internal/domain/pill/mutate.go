// internal/domain/pill/mutate.go
package pill

import (
	"database/sql"
	"time"
)

// TakePill marks the record scheduled on now's calendar day as taken,
// classifying the delay against the configured threshold. The input is
// returned unchanged when no record matches the day or when that record
// is already in the taken family, so a second tap on the same day is a
// no-op.
func TakePill(c Cycle, delayThresholdMinutes int, now time.Time) Cycle {
	idx := c.RecordForDay(now)
	if idx < 0 {
		return c
	}
	rec := c.Records[idx]
	if rec.Status.IsTaken() {
		return c
	}

	out := c.clone()
	status := Classify(rec.ScheduledAt, now, delayThresholdMinutes)
	out.Records[idx].Status = status.AdjustedForDate(rec.ScheduledAt, now)
	out.Records[idx].TakenAt = sql.NullTime{Time: now, Valid: true}
	out.Records[idx].UpdatedAt = now
	return out
}

// UpdateRecordStatus overwrites one record's status from a manual
// history edit. An out-of-range index is a no-op. The taken timestamp
// resolves in precedence order: an explicit takenAt wins; otherwise a
// taken-family status keeps the existing timestamp or falls back to
// now; any other status clears it. A nil memo leaves the memo
// unchanged.
func UpdateRecordStatus(c Cycle, index int, status PillStatus, memo *RecordMemo, takenAt *time.Time, now time.Time) Cycle {
	if index < 0 || index >= len(c.Records) {
		return c
	}

	out := c.clone()
	rec := &out.Records[index]
	rec.Status = status
	switch {
	case takenAt != nil:
		rec.TakenAt = sql.NullTime{Time: *takenAt, Valid: true}
	case status.IsTaken():
		if !rec.TakenAt.Valid {
			rec.TakenAt = sql.NullTime{Time: now, Valid: true}
		}
	default:
		rec.TakenAt = sql.NullTime{}
	}
	if memo != nil {
		rec.Memo = memo
	}
	rec.UpdatedAt = now
	return out
}

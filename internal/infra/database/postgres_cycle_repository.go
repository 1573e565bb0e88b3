// internal/infra/database/postgres_cycle_repository.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"pill_reminder_bot/internal/domain/pill"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors specific to cycle repository
var ErrCycleNotFound = fmt.Errorf("pill cycle not found")
var ErrRecordNotFound = fmt.Errorf("day record not found")
var ErrDuplicateCycleDay = fmt.Errorf("duplicate day record (cycle_id, cycle_day)")

type PostgresCycleRepository struct {
	db *sql.DB
}

func NewPostgresCycleRepository(db *sql.DB) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db}
}

// SaveCycle persists a cycle snapshot and all of its day records in one
// transaction.
func (r *PostgresCycleRepository) SaveCycle(ctx context.Context, chatID int64, c *pill.Cycle) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for cycle save: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	cycleQuery := `INSERT INTO pill_cycles (id, chat_id, cycle_number, start_date, taking_days, break_days, scheduled_time, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = txn.ExecContext(ctx, cycleQuery,
		c.ID, chatID, c.CycleNumber, c.StartDate, c.TakingDays, c.BreakDays, c.ScheduledTime, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating pill cycle: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO pill_day_records (id, cycle_id, cycle_day, status, scheduled_at, taken_at, memo, created_at, updated_at)
                                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for record bulk insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range c.Records {
		memo, err := marshalMemo(rec.Memo)
		if err != nil {
			return fmt.Errorf("error serializing memo for cycle day %d: %w", rec.CycleDay, err)
		}
		_, err = stmt.ExecContext(ctx, rec.ID, c.ID, rec.CycleDay, rec.Status, rec.ScheduledAt, rec.TakenAt, memo, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			if strings.Contains(err.Error(), "cycle_day_unique") {
				return fmt.Errorf("error in record bulk insert (cycle %s, day %d): %w", c.ID, rec.CycleDay, ErrDuplicateCycleDay)
			}
			return fmt.Errorf("error inserting day record (cycle %s, day %d): %w", c.ID, rec.CycleDay, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresCycleRepository) FetchCycle(ctx context.Context, id uuid.UUID) (*pill.Cycle, error) {
	query := `SELECT id, cycle_number, start_date, taking_days, break_days, scheduled_time, created_at
               FROM pill_cycles WHERE id = $1`
	c := pill.Cycle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CycleNumber, &c.StartDate, &c.TakingDays, &c.BreakDays, &c.ScheduledTime, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting pill cycle by ID: %w", err)
	}
	if err := r.loadRecords(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCycleRepository) FetchCurrentCycle(ctx context.Context, chatID int64) (*pill.Cycle, error) {
	query := `SELECT id, cycle_number, start_date, taking_days, break_days, scheduled_time, created_at
               FROM pill_cycles WHERE chat_id = $1 ORDER BY created_at DESC LIMIT 1`
	c := pill.Cycle{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&c.ID, &c.CycleNumber, &c.StartDate, &c.TakingDays, &c.BreakDays, &c.ScheduledTime, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting current pill cycle: %w", err)
	}
	if err := r.loadRecords(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCycleRepository) FetchAllCycles(ctx context.Context, chatID int64) ([]*pill.Cycle, error) {
	query := `SELECT id, cycle_number, start_date, taking_days, break_days, scheduled_time, created_at
               FROM pill_cycles WHERE chat_id = $1 ORDER BY cycle_number, created_at`
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("error querying cycles for chat: %w", err)
	}
	defer rows.Close()

	cycles := make([]*pill.Cycle, 0)
	for rows.Next() {
		c := pill.Cycle{}
		if err := rows.Scan(&c.ID, &c.CycleNumber, &c.StartDate, &c.TakingDays, &c.BreakDays, &c.ScheduledTime, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning cycle row: %w", err)
		}
		cycles = append(cycles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}

	for _, c := range cycles {
		if err := r.loadRecords(ctx, c); err != nil {
			return nil, err
		}
	}
	return cycles, nil
}

func (r *PostgresCycleRepository) UpdateRecord(ctx context.Context, cycleID uuid.UUID, rec pill.DayRecord) error {
	memo, err := marshalMemo(rec.Memo)
	if err != nil {
		return fmt.Errorf("error serializing memo for record %s: %w", rec.ID, err)
	}
	query := `UPDATE pill_day_records
               SET status = $1, taken_at = $2, memo = $3, updated_at = $4
               WHERE id = $5 AND cycle_id = $6
               RETURNING updated_at`
	err = r.db.QueryRowContext(ctx, query, rec.Status, rec.TakenAt, memo, rec.UpdatedAt, rec.ID, cycleID).Scan(&rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRecordNotFound
		}
		return fmt.Errorf("error updating day record: %w", err)
	}
	return nil
}

func (r *PostgresCycleRepository) loadRecords(ctx context.Context, c *pill.Cycle) error {
	query := `SELECT id, cycle_day, status, scheduled_at, taken_at, memo, created_at, updated_at
               FROM pill_day_records WHERE cycle_id = $1 ORDER BY cycle_day`
	rows, err := r.db.QueryContext(ctx, query, c.ID)
	if err != nil {
		return fmt.Errorf("error querying day records for cycle %s: %w", c.ID, err)
	}
	defer rows.Close()

	records := make([]pill.DayRecord, 0, c.TotalDays())
	for rows.Next() {
		rec := pill.DayRecord{}
		var memo sql.NullString
		if err := rows.Scan(&rec.ID, &rec.CycleDay, &rec.Status, &rec.ScheduledAt, &rec.TakenAt, &memo, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("error scanning day record row: %w", err)
		}
		rec.Memo, err = unmarshalMemo(memo)
		if err != nil {
			return fmt.Errorf("error deserializing memo for record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating day record rows: %w", err)
	}
	c.Records = records
	return nil
}

func marshalMemo(memo *pill.RecordMemo) (sql.NullString, error) {
	if memo == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(memo)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalMemo(memo sql.NullString) (*pill.RecordMemo, error) {
	if !memo.Valid || memo.String == "" {
		return nil, nil
	}
	out := &pill.RecordMemo{}
	if err := json.Unmarshal([]byte(memo.String), out); err != nil {
		return nil, err
	}
	return out, nil
}

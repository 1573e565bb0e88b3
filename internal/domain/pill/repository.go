// internal/domain/pill/repository.go
package pill

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for cycles and their day
// records. The engine only ever produces and consumes value snapshots;
// storage, transactions and any UI refresh triggers belong to the
// implementation and its callers.
type Repository interface {
	// FetchCurrentCycle returns the most recently created cycle for a
	// chat, or ErrCycleNotFound from the implementation when none exists.
	FetchCurrentCycle(ctx context.Context, chatID int64) (*Cycle, error)
	FetchCycle(ctx context.Context, id uuid.UUID) (*Cycle, error)
	FetchAllCycles(ctx context.Context, chatID int64) ([]*Cycle, error)
	// SaveCycle persists a full cycle snapshot together with all of its
	// day records.
	SaveCycle(ctx context.Context, chatID int64, c *Cycle) error
	// UpdateRecord persists a single mutated day record of an existing
	// cycle.
	UpdateRecord(ctx context.Context, cycleID uuid.UUID, rec DayRecord) error
}

package repository

import (
	"context"
	"fmt"

	"studio-booking/internal/data/entity"
	"studio-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DecrementResult reports the outcome of the binding capacity check.
type DecrementResult struct {
	Success   bool
	Remaining int
}

type SlotRepository interface {
	Create(ctx context.Context, slot *entity.Slot) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	FindActiveUpcoming(ctx context.Context, activity string, limit, offset int) ([]*entity.Slot, error)
	CountActiveUpcoming(ctx context.Context, activity string) (int64, error)
	FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Slot, error)
	CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error)

	// TryDecrement claims one seat as a single conditional update. It is
	// the only binding availability check in the system; every other check
	// is advisory. Flips the slot to full in the same statement when the
	// last seat goes.
	TryDecrement(ctx context.Context, id uuid.UUID) (DecrementResult, error)

	// IncrementCapacity releases one seat, clamped at capacity_total by the
	// WHERE clause. A full slot becomes active again; cancelled and
	// completed slots keep their lifecycle state.
	IncrementCapacity(ctx context.Context, id uuid.UUID) error

	// Cancel marks a slot cancelled. Idempotent: cancelling twice is a no-op.
	Cancel(ctx context.Context, id uuid.UUID) error
}

type slotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotRepository(db database.PgxIface, log *zap.Logger) SlotRepository {
	return &slotRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot")),
	}
}

const slotColumns = `id, provider_id, activity, starts_at, duration_minutes, price_cents, capacity_total, capacity_left, status, created_at, updated_at`

func scanSlot(row pgx.Row) (*entity.Slot, error) {
	var slot entity.Slot
	err := row.Scan(
		&slot.ID,
		&slot.ProviderID,
		&slot.Activity,
		&slot.StartsAt,
		&slot.DurationMinutes,
		&slot.PriceCents,
		&slot.CapacityTotal,
		&slot.CapacityLeft,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) Create(ctx context.Context, slot *entity.Slot) error {
	query := `
		INSERT INTO slots (id, provider_id, activity, starts_at, duration_minutes, price_cents, capacity_total, capacity_left, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		slot.ID,
		slot.ProviderID,
		slot.Activity,
		slot.StartsAt,
		slot.DurationMinutes,
		slot.PriceCents,
		slot.CapacityTotal,
		slot.CapacityLeft,
		slot.Status,
		slot.CreatedAt,
		slot.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create slot",
			zap.Error(err),
			zap.String("provider_id", slot.ProviderID.String()),
			zap.String("activity", slot.Activity),
		)
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

func (r *slotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot by ID",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return nil, fmt.Errorf("find slot by ID %s: %w", id.String(), err)
	}

	return slot, nil
}

func (r *slotRepository) FindActiveUpcoming(ctx context.Context, activity string, limit, offset int) ([]*entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status IN ('active', 'full')
		  AND starts_at > NOW()
		  AND ($1 = '' OR activity = $1)
		ORDER BY starts_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, activity, limit, offset)
	if err != nil {
		r.log.Error("Failed to find upcoming slots",
			zap.Error(err),
			zap.String("activity", activity),
		)
		return nil, fmt.Errorf("find upcoming slots: %w", err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan slot row", zap.Error(err))
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

func (r *slotRepository) CountActiveUpcoming(ctx context.Context, activity string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM slots
		WHERE status IN ('active', 'full') AND starts_at > NOW()
		  AND ($1 = '' OR activity = $1)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, activity).Scan(&count); err != nil {
		r.log.Error("Failed to count upcoming slots", zap.Error(err))
		return 0, fmt.Errorf("count upcoming slots: %w", err)
	}

	return count, nil
}

func (r *slotRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE provider_id = $1
		ORDER BY starts_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, providerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find slots by provider",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return nil, fmt.Errorf("find slots by provider %s: %w", providerID.String(), err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			r.log.Error("Failed to scan slot row", zap.Error(err))
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

func (r *slotRepository) CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM slots WHERE provider_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&count); err != nil {
		r.log.Error("Failed to count slots by provider",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return 0, fmt.Errorf("count slots by provider %s: %w", providerID.String(), err)
	}

	return count, nil
}

func (r *slotRepository) TryDecrement(ctx context.Context, id uuid.UUID) (DecrementResult, error) {
	// Single conditional update, linearizable at the storage layer. Two
	// concurrent callers racing for the last seat serialize on the row
	// lock; the loser matches zero rows.
	query := `
		UPDATE slots
		SET capacity_left = capacity_left - 1,
		    status = CASE WHEN capacity_left - 1 = 0 THEN 'full' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND capacity_left > 0
		RETURNING capacity_left
	`

	var remaining int
	err := r.db.QueryRow(ctx, query, id).Scan(&remaining)
	if err == pgx.ErrNoRows {
		// Sold out, cancelled, or gone. All of them mean no seat.
		return DecrementResult{Success: false}, nil
	}
	if err != nil {
		r.log.Error("Failed to decrement slot capacity",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return DecrementResult{}, fmt.Errorf("decrement slot %s: %w", id.String(), err)
	}

	return DecrementResult{Success: true, Remaining: remaining}, nil
}

func (r *slotRepository) IncrementCapacity(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE slots
		SET capacity_left = capacity_left + 1,
		    status = CASE WHEN status = 'full' THEN 'active' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND capacity_left < capacity_total
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment slot capacity",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return fmt.Errorf("increment slot %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		// Already at capacity_total or slot gone; nothing to release.
		r.log.Warn("Increment matched no rows",
			zap.String("slot_id", id.String()),
		)
	}

	return nil
}

func (r *slotRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE slots
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('active', 'full')
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to cancel slot",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return fmt.Errorf("cancel slot %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		// Already cancelled or completed; cancelling twice is a no-op.
		return nil
	}

	r.log.Info("Slot cancelled", zap.String("slot_id", id.String()))
	return nil
}

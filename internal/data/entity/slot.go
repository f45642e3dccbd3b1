package entity

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	// SlotStatusActive means the slot is on sale.
	SlotStatusActive SlotStatus = "active"
	// SlotStatusFull is set atomically when capacity_left reaches 0.
	SlotStatusFull SlotStatus = "full"
	// SlotStatusCancelled is set by the owner and is never reverted.
	SlotStatusCancelled SlotStatus = "cancelled"
	// SlotStatusCompleted is set once the class has taken place.
	SlotStatusCompleted SlotStatus = "completed"
)

// Slot is one sellable class occurrence. CapacityLeft is mutated only
// through SlotRepository.TryDecrement and IncrementCapacity, never by a
// read-modify-write from call sites.
type Slot struct {
	Base
	ProviderID      uuid.UUID  `db:"provider_id"`
	Activity        string     `db:"activity"`
	StartsAt        time.Time  `db:"starts_at"`
	DurationMinutes int        `db:"duration_minutes"`
	PriceCents      int64      `db:"price_cents"`
	CapacityTotal   int        `db:"capacity_total"`
	CapacityLeft    int        `db:"capacity_left"`
	Status          SlotStatus `db:"status"`
}

// Bookable reports whether the advisory availability check passes. The
// binding check is the atomic decrement at reconciliation time.
func (s *Slot) Bookable() bool {
	return s.Status == SlotStatusActive && s.CapacityLeft > 0
}

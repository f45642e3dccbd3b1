package response

import (
	"time"

	"studio-booking/internal/data/entity"
)

type SlotResponse struct {
	ID              string    `json:"id"`
	Activity        string    `json:"activity"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	CapacityTotal   int       `json:"capacity_total"`
	CapacityLeft    int       `json:"capacity_left"`
	Status          string    `json:"status"`
}

// OwnerSlotResponse adds the dashboard figures: confirmed paid seats and
// the gross/net revenue split after platform commission.
type OwnerSlotResponse struct {
	SlotResponse
	ConfirmedSeats    int64 `json:"confirmed_seats"`
	GrossRevenueCents int64 `json:"gross_revenue_cents"`
	NetRevenueCents   int64 `json:"net_revenue_cents"`
}

func SlotToResponse(slot *entity.Slot) SlotResponse {
	return SlotResponse{
		ID:              slot.ID.String(),
		Activity:        slot.Activity,
		StartsAt:        slot.StartsAt,
		DurationMinutes: slot.DurationMinutes,
		PriceCents:      slot.PriceCents,
		CapacityTotal:   slot.CapacityTotal,
		CapacityLeft:    slot.CapacityLeft,
		Status:          string(slot.Status),
	}
}

package response

import (
	"time"

	"studio-booking/internal/data/entity"
)

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// ConfirmationResponse backs the post-payment confirmation view, looked up
// by checkout session reference.
type ConfirmationResponse struct {
	ReservationID   string    `json:"reservation_id"`
	Status          string    `json:"status"`
	BuyerName       string    `json:"buyer_name"`
	BuyerEmail      string    `json:"buyer_email"`
	AmountPaidCents int64     `json:"amount_paid_cents"`
	Activity        string    `json:"activity"`
	StartsAt        time.Time `json:"starts_at"`
}

func ReservationToConfirmation(res *entity.Reservation, slot *entity.Slot) *ConfirmationResponse {
	resp := &ConfirmationResponse{
		ReservationID:   res.ID.String(),
		Status:          string(res.Status),
		BuyerName:       res.BuyerName,
		BuyerEmail:      res.BuyerEmail,
		AmountPaidCents: res.AmountPaidCents,
	}
	if slot != nil {
		resp.Activity = slot.Activity
		resp.StartsAt = slot.StartsAt
	}
	return resp
}

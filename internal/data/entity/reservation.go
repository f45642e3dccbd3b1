package entity

import (
	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// Reservation is one paid claim on one seat of a Slot. PaymentReference is
// the gateway transaction id and is unique: the row exists iff the
// corresponding capacity decrement succeeded, and the uniqueness constraint
// is the idempotency barrier for redelivered payment events.
type Reservation struct {
	Base
	SlotID            uuid.UUID         `db:"slot_id"`
	BuyerName         string            `db:"buyer_name"`
	BuyerEmail        string            `db:"buyer_email"`
	BuyerPhone        string            `db:"buyer_phone"`
	PaymentReference  string            `db:"payment_reference"`
	CheckoutSessionID string            `db:"checkout_session_id"`
	AmountPaidCents   int64             `db:"amount_paid_cents"`
	Status            ReservationStatus `db:"status"`
}

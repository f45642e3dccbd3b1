// Package notify dispatches buyer notifications. The engine publishes a
// message to a durable queue and moves on; a background consumer turns
// messages into email. Notification failure never gates a reconciliation
// outcome.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindConfirmation  Kind = "confirmation"
	KindPaymentFailed Kind = "payment_failed"
	KindRefund        Kind = "refund"
)

// Message carries everything the consumer needs without querying the
// primary database.
type Message struct {
	Kind          Kind      `json:"kind"`
	To            string    `json:"to"`
	BuyerName     string    `json:"buyer_name"`
	Activity      string    `json:"activity"`
	StartsAt      time.Time `json:"starts_at"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	ReservationID string    `json:"reservation_id"`
	Reason        string    `json:"reason,omitempty"`
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

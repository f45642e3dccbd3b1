// Package gateway adapts the hosted payment provider. The rest of the
// system only sees the PaymentGateway interface and the normalized
// PaymentEvent; everything Stripe-specific stays behind it.
package gateway

import "context"

type EventKind string

const (
	// EventCompleted carries a captured payment for one seat.
	EventCompleted EventKind = "completed"
	// EventFailed carries a payment that was declined or never captured.
	EventFailed EventKind = "failed"
	// EventRefunded carries a refund applied to a captured payment.
	EventRefunded EventKind = "refunded"
	// EventIgnored covers verified event types the engine does not consume.
	EventIgnored EventKind = "ignored"
)

// CheckoutMetadata is round-tripped through the gateway verbatim: set when
// the session is opened, returned inside the completion event.
type CheckoutMetadata struct {
	SlotID     string
	BuyerName  string
	BuyerEmail string
	BuyerPhone string
}

// PaymentEvent is the normalized form of a verified webhook payload.
// Delivery is at-least-once and unordered across kinds.
type PaymentEvent struct {
	Kind              EventKind
	PaymentReference  string
	CheckoutSessionID string
	AmountTotalCents  int64
	AmountRefunded    int64
	FailureReason     string
	Metadata          CheckoutMetadata
}

// CheckoutSessionRequest opens a hosted payment page for a single seat.
type CheckoutSessionRequest struct {
	AmountCents int64
	Currency    string
	ProductName string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    CheckoutMetadata
}

type CheckoutSession struct {
	ID  string
	URL string
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)

	// IssueRefund reverses a captured payment. Used by the reconciliation
	// engine as the compensation when capacity is gone after payment.
	IssueRefund(ctx context.Context, paymentReference, reason string) error

	// VerifyEvent checks the webhook signature and normalizes the payload.
	// Unverified payloads are rejected before any processing.
	VerifyEvent(payload []byte, signature string) (*PaymentEvent, error)
}

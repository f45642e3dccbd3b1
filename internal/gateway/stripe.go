package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/refund"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

type stripeGateway struct {
	webhookSecret string
	log           *zap.Logger
}

// NewStripeGateway configures the Stripe SDK and returns the adapter.
// CallTimeout bounds every outbound call; webhook verification is local.
func NewStripeGateway(cfg utils.GatewayConfig, log *zap.Logger) PaymentGateway {
	stripe.Key = cfg.SecretKey
	stripe.SetHTTPClient(&http.Client{Timeout: cfg.CallTimeout})

	return &stripeGateway{
		webhookSecret: cfg.WebhookSecret,
		log:           log.With(zap.String("gateway", "stripe")),
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.Metadata.BuyerEmail),
	}
	params.Context = ctx
	params.AddMetadata("slot_id", req.Metadata.SlotID)
	params.AddMetadata("buyer_name", req.Metadata.BuyerName)
	params.AddMetadata("buyer_email", req.Metadata.BuyerEmail)
	params.AddMetadata("buyer_phone", req.Metadata.BuyerPhone)

	sess, err := session.New(params)
	if err != nil {
		g.log.Error("Failed to create checkout session",
			zap.Error(err),
			zap.String("slot_id", req.Metadata.SlotID),
		)
		return nil, fmt.Errorf("create checkout session: %w", apperrors.ErrGateway)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *stripeGateway) IssueRefund(ctx context.Context, paymentReference, reason string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentReference),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.AddMetadata("reason", reason)

	if _, err := refund.New(params); err != nil {
		g.log.Error("Failed to issue refund",
			zap.Error(err),
			zap.String("payment_reference", paymentReference),
			zap.String("reason", reason),
		)
		return fmt.Errorf("issue refund for %s: %w", paymentReference, apperrors.ErrGateway)
	}

	return nil
}

func (g *stripeGateway) VerifyEvent(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.log.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("verify webhook signature: %w", apperrors.ErrValidation)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session event: %w", err)
		}

		var paymentRef string
		if sess.PaymentIntent != nil {
			paymentRef = sess.PaymentIntent.ID
		}

		return &PaymentEvent{
			Kind:              EventCompleted,
			PaymentReference:  paymentRef,
			CheckoutSessionID: sess.ID,
			AmountTotalCents:  sess.AmountTotal,
			Metadata: CheckoutMetadata{
				SlotID:     sess.Metadata["slot_id"],
				BuyerName:  sess.Metadata["buyer_name"],
				BuyerEmail: sess.Metadata["buyer_email"],
				BuyerPhone: sess.Metadata["buyer_phone"],
			},
		}, nil

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("decode payment intent event: %w", err)
		}

		reason := "payment declined"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			reason = intent.LastPaymentError.Msg
		}

		return &PaymentEvent{
			Kind:             EventFailed,
			PaymentReference: intent.ID,
			FailureReason:    reason,
		}, nil

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("decode charge event: %w", err)
		}

		var paymentRef string
		if charge.PaymentIntent != nil {
			paymentRef = charge.PaymentIntent.ID
		}

		return &PaymentEvent{
			Kind:             EventRefunded,
			PaymentReference: paymentRef,
			AmountRefunded:   charge.AmountRefunded,
		}, nil

	default:
		return &PaymentEvent{Kind: EventIgnored}, nil
	}
}

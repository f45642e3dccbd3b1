package adaptor

import (
	"errors"
	"io"
	"net/http"

	"studio-booking/internal/gateway"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

// maxWebhookBody bounds the payload read before signature verification.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	service usecase.ReconcileService
	gateway gateway.PaymentGateway
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.ReconcileService, gw gateway.PaymentGateway, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		gateway: gw,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleEvent handles POST /api/webhooks/stripe. It acknowledges with 200
// once an event is durably applied (or recognized as already applied) and
// with 5xx when processing must be retried by redelivery. Unverified
// payloads are rejected with 400 before any processing.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Unreadable payload", nil)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		utils.ResponseBadRequest(w, "Missing signature", nil)
		return
	}

	event, err := h.gateway.VerifyEvent(body, signature)
	if err != nil {
		h.log.Warn("Rejected unverified webhook payload", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid signature", nil)
		return
	}

	switch event.Kind {
	case gateway.EventCompleted:
		err = h.service.HandleCompleted(r.Context(), event)
	case gateway.EventFailed:
		err = h.service.HandleFailed(r.Context(), event)
	case gateway.EventRefunded:
		err = h.service.HandleRefunded(r.Context(), event)
	default:
		utils.ResponseSuccess(w, "ignored", nil)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			// Malformed but correctly signed event; redelivery cannot fix it.
			h.log.Error("Discarding malformed payment event",
				zap.Error(err),
				zap.String("kind", string(event.Kind)),
			)
			utils.ResponseBadRequest(w, "Malformed event", nil)

		case errors.Is(err, apperrors.ErrFatal):
			// Already escalated by the engine. 500 keeps the gateway
			// redelivering, which retries the refund.
			utils.ResponseInternalError(w, "Reconciliation failed")

		default:
			h.log.Error("Failed to process payment event, awaiting redelivery",
				zap.Error(err),
				zap.String("kind", string(event.Kind)),
				zap.String("payment_reference", event.PaymentReference),
			)
			utils.ResponseInternalError(w, "Processing failed")
		}
		return
	}

	utils.ResponseSuccess(w, "received", nil)
}

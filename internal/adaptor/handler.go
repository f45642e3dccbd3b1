package adaptor

import (
	"errors"
	"net/http"

	"studio-booking/internal/gateway"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Slot     *SlotHandler
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
}

func NewHandler(service *usecase.Service, gw gateway.PaymentGateway, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Slot:     NewSlotHandler(service.Slot, log),
		Checkout: NewCheckoutHandler(service.Checkout, log),
		Webhook:  NewWebhookHandler(service.Reconcile, gw, log),
	}
}

// writeServiceError maps the sentinel taxonomy to HTTP status codes.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		log.Warn(operation+" rejected: validation", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, apperrors.ErrNotFound):
		log.Warn(operation+" rejected: not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, apperrors.ErrUnavailable):
		log.Info(operation+" rejected: unavailable", zap.Error(err))
		utils.ResponseConflict(w, "This class is no longer available")

	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn(operation+" rejected: unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, "Invalid credentials")

	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn(operation+" rejected: forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "Not allowed")

	case errors.Is(err, apperrors.ErrGateway):
		log.Error(operation+" failed at payment gateway", zap.Error(err))
		utils.ResponseInternalError(w, "Payment provider error, please retry")

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

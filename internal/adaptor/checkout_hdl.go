package adaptor

import (
	"encoding/json"
	"net/http"

	"studio-booking/internal/dto/request"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service usecase.CheckoutService
	log     *zap.Logger
}

func NewCheckoutHandler(service usecase.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkout")),
	}
}

// Initiate handles POST /api/checkout (public, rate limited)
func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	checkout, err := h.service.Initiate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "initiate checkout")
		return
	}

	utils.ResponseCreated(w, "success", checkout)
}

// Confirm handles GET /api/confirmation?session_id= (public)
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "session_id is required", nil)
		return
	}

	confirmation, err := h.service.Confirm(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.log, err, "confirm reservation")
		return
	}

	utils.ResponseSuccess(w, "success", confirmation)
}

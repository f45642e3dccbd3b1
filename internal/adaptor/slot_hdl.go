package adaptor

import (
	"encoding/json"
	"net/http"

	"studio-booking/internal/dto/request"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SlotHandler struct {
	service usecase.SlotService
	log     *zap.Logger
}

func NewSlotHandler(service usecase.SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log.With(zap.String("handler", "slot")),
	}
}

// BrowseSlots handles GET /api/slots (public)
func (h *SlotHandler) BrowseSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.BrowseSlotsRequest{
		Activity: query.Get("activity"),
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
	}

	slots, err := h.service.BrowseSlots(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "browse slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}

// GetSlot handles GET /api/slots/{id} (public)
func (h *SlotHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "id")
	if slotID == "" {
		utils.ResponseBadRequest(w, "Slot ID is required", nil)
		return
	}

	slot, err := h.service.GetSlot(r.Context(), slotID)
	if err != nil {
		writeServiceError(w, h.log, err, "get slot")
		return
	}

	utils.ResponseSuccess(w, "success", slot)
}

// CreateSlot handles POST /api/studio/slots (owner)
func (h *SlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	providerID, ok := utils.GetProviderIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	slot, err := h.service.CreateSlot(r.Context(), providerID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create slot")
		return
	}

	utils.ResponseCreated(w, "success", slot)
}

// CancelSlot handles PUT /api/studio/slots/{id}/cancel (owner)
func (h *SlotHandler) CancelSlot(w http.ResponseWriter, r *http.Request) {
	providerID, ok := utils.GetProviderIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	slotID := chi.URLParam(r, "id")
	if slotID == "" {
		utils.ResponseBadRequest(w, "Slot ID is required", nil)
		return
	}

	if err := h.service.CancelSlot(r.Context(), providerID, slotID); err != nil {
		writeServiceError(w, h.log, err, "cancel slot")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// ListOwnerSlots handles GET /api/studio/slots (owner)
func (h *SlotHandler) ListOwnerSlots(w http.ResponseWriter, r *http.Request) {
	providerID, ok := utils.GetProviderIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 20),
	}

	slots, err := h.service.ListOwnerSlots(r.Context(), providerID, req)
	if err != nil {
		writeServiceError(w, h.log, err, "list owner slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}

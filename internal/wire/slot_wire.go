package wire

import (
	"studio-booking/internal/adaptor"
	"studio-booking/pkg/middleware"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSlot(
	r chi.Router,
	slotHandler *adaptor.SlotHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/slots - browse upcoming classes
	r.Get("/api/slots", slotHandler.BrowseSlots)

	// GET /api/slots/{id} - class detail for the booking page
	r.Get("/api/slots/{id}", slotHandler.GetSlot)

	// ==================== OWNER ROUTES (require auth) ====================
	r.Route("/api/studio/slots", func(r chi.Router) {
		r.Use(middleware.AuthProvider(config.JWT, log))

		// POST /api/studio/slots - create a class occurrence
		r.Post("/", slotHandler.CreateSlot)

		// GET /api/studio/slots - dashboard listing with revenue split
		r.Get("/", slotHandler.ListOwnerSlots)

		// PUT /api/studio/slots/{id}/cancel - stop selling future capacity
		r.Put("/{id}/cancel", slotHandler.CancelSlot)
	})
}

package wire

import (
	"studio-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// POST /api/webhooks/stripe - signed payment events (public; the
	// signature check inside the handler is the authentication)
	r.Post("/api/webhooks/stripe", webhookHandler.HandleEvent)
}

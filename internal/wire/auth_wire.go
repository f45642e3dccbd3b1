package wire

import (
	"studio-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// POST /api/studio/login - provider login (public)
	r.Post("/api/studio/login", authHandler.Login)
}

package wire

import (
	"studio-booking/internal/adaptor"
	"studio-booking/pkg/middleware"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func wireCheckout(
	r chi.Router,
	checkoutHandler *adaptor.CheckoutHandler,
	rdb *redis.Client,
	config *utils.Config,
	log *zap.Logger,
) {
	// POST /api/checkout - open a payment session (public, rate limited)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(config.Redis, rdb, log))
		r.Post("/api/checkout", checkoutHandler.Initiate)
	})

	// GET /api/confirmation - post-payment confirmation lookup (public)
	r.Get("/api/confirmation", checkoutHandler.Confirm)
}

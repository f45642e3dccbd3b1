// internal/wire/wire.go
package wire

import (
	"net/http"

	"studio-booking/internal/adaptor"
	"studio-booking/internal/data/repository"
	"studio-booking/internal/gateway"
	"studio-booking/internal/notify"
	"studio-booking/internal/usecase"
	"studio-booking/pkg/middleware"
	"studio-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies
func Wiring(
	repo *repository.Repository,
	gw gateway.PaymentGateway,
	notifier notify.Notifier,
	rdb *redis.Client,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, gw, notifier, config, logger)
	handler := adaptor.NewHandler(service, gw, logger)

	router := setupRouter(handler, rdb, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	rdb *redis.Client,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireCheckout(r, handler.Checkout, rdb, config, logger)
	wireWebhook(r, handler.Webhook)
	wireSlot(r, handler.Slot, config, logger)
	wireAuth(r, handler.Auth)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

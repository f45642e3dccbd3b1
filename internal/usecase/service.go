package usecase

import (
	"studio-booking/internal/data/repository"
	"studio-booking/internal/gateway"
	"studio-booking/internal/notify"
	"studio-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	Slot      SlotService
	Checkout  CheckoutService
	Reconcile ReconcileService
}

func NewService(
	repo *repository.Repository,
	gw gateway.PaymentGateway,
	notifier notify.Notifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(repo, config, log),
		Slot:      NewSlotService(repo, log),
		Checkout:  NewCheckoutService(repo, gw, config, log),
		Reconcile: NewReconcileService(repo, gw, notifier, config, log),
	}
}

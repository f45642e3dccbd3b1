package usecase

import (
	"context"
	"fmt"

	"studio-booking/internal/data/repository"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/dto/response"
	"studio-booking/internal/gateway"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutService interface {
	// Initiate validates a purchase intent against current availability
	// and opens a payment session. The availability check here is advisory
	// only: it rejects obviously doomed attempts but reserves nothing. The
	// binding check is the atomic decrement at reconciliation time.
	Initiate(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error)

	// Confirm looks a reservation up by checkout session reference for the
	// post-payment confirmation view.
	Confirm(ctx context.Context, sessionID string) (*response.ConfirmationResponse, error)
}

type checkoutService struct {
	repo    *repository.Repository
	gateway gateway.PaymentGateway
	config  *utils.Config
	log     *zap.Logger
}

func NewCheckoutService(repo *repository.Repository, gw gateway.PaymentGateway, config *utils.Config, log *zap.Logger) CheckoutService {
	return &checkoutService{
		repo:    repo,
		gateway: gw,
		config:  config,
		log:     log.With(zap.String("service", "checkout")),
	}
}

func (s *checkoutService) Initiate(ctx context.Context, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, utils.FormatValidationErrors(errs))
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot ID %s: %w", req.SlotID, apperrors.ErrValidation)
	}

	slot, err := s.repo.Slot.FindByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("find slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", req.SlotID, apperrors.ErrNotFound)
	}

	if !slot.Bookable() {
		s.log.Info("Checkout rejected at advisory check",
			zap.String("slot_id", req.SlotID),
			zap.String("status", string(slot.Status)),
			zap.Int("capacity_left", slot.CapacityLeft),
		)
		return nil, fmt.Errorf("slot %s: %w", req.SlotID, apperrors.ErrUnavailable)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutSessionRequest{
		AmountCents: slot.PriceCents,
		Currency:    s.config.Gateway.Currency,
		ProductName: slot.Activity,
		Description: slot.StartsAt.Format("Monday 2 January at 15:04"),
		SuccessURL:  s.config.App.BaseURL + "/confirmation?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.config.App.BaseURL + "/slots/" + req.SlotID,
		Metadata: gateway.CheckoutMetadata{
			SlotID:     req.SlotID,
			BuyerName:  req.BuyerName,
			BuyerEmail: req.BuyerEmail,
			BuyerPhone: req.BuyerPhone,
		},
	})
	if err != nil {
		s.log.Error("Failed to open checkout session",
			zap.Error(err),
			zap.String("slot_id", req.SlotID),
		)
		return nil, fmt.Errorf("open checkout session: %w", err)
	}

	s.log.Info("Checkout session opened",
		zap.String("slot_id", req.SlotID),
		zap.String("session_id", session.ID),
		zap.Int64("amount_cents", slot.PriceCents),
	)

	return &response.CheckoutResponse{CheckoutURL: session.URL}, nil
}

func (s *checkoutService) Confirm(ctx context.Context, sessionID string) (*response.ConfirmationResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required: %w", apperrors.ErrValidation)
	}

	reservation, err := s.repo.Reservation.FindByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if reservation == nil {
		// The webhook may simply not have arrived yet.
		return nil, fmt.Errorf("reservation for session %s: %w", sessionID, apperrors.ErrNotFound)
	}

	slot, err := s.repo.Slot.FindByID(ctx, reservation.SlotID)
	if err != nil {
		return nil, fmt.Errorf("find slot: %w", err)
	}

	return response.ReservationToConfirmation(reservation, slot), nil
}

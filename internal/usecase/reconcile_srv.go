package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/internal/gateway"
	"studio-booking/internal/notify"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcileService translates asynchronous payment outcomes into durable
// inventory and reservation state. Every handler is safe under concurrent
// invocation, at-least-once delivery, and arbitrary ordering across event
// kinds: the capacity decrement is a single atomic statement at the storage
// layer and the payment_reference uniqueness constraint is the idempotency
// barrier for reservation creation.
type ReconcileService interface {
	HandleCompleted(ctx context.Context, event *gateway.PaymentEvent) error
	HandleFailed(ctx context.Context, event *gateway.PaymentEvent) error
	HandleRefunded(ctx context.Context, event *gateway.PaymentEvent) error
}

type reconcileService struct {
	repo     *repository.Repository
	gateway  gateway.PaymentGateway
	notifier notify.Notifier
	config   *utils.Config
	log      *zap.Logger

	// retryDelay spaces refund attempts; shortened in tests.
	retryDelay time.Duration
}

func NewReconcileService(
	repo *repository.Repository,
	gw gateway.PaymentGateway,
	notifier notify.Notifier,
	config *utils.Config,
	log *zap.Logger,
) ReconcileService {
	return &reconcileService{
		repo:       repo,
		gateway:    gw,
		notifier:   notifier,
		config:     config,
		log:        log.With(zap.String("service", "reconcile")),
		retryDelay: 500 * time.Millisecond,
	}
}

func (s *reconcileService) HandleCompleted(ctx context.Context, event *gateway.PaymentEvent) error {
	if event.PaymentReference == "" {
		return fmt.Errorf("completed event without payment reference: %w", apperrors.ErrValidation)
	}

	slotID, err := uuid.Parse(event.Metadata.SlotID)
	if err != nil {
		return fmt.Errorf("completed event with bad slot id %q: %w", event.Metadata.SlotID, apperrors.ErrValidation)
	}

	// Cheap pre-check for redelivery. The insert below still guards the
	// race between two concurrent deliveries of the same event.
	existing, err := s.repo.Reservation.FindByPaymentReference(ctx, event.PaymentReference)
	if err != nil {
		return fmt.Errorf("lookup reservation: %w", err)
	}
	if existing != nil {
		s.log.Info("Completed event already handled",
			zap.String("payment_reference", event.PaymentReference),
			zap.String("reservation_id", existing.ID.String()),
		)
		return nil
	}

	// The binding check. Everything before this point was advisory.
	dec, err := s.repo.Slot.TryDecrement(ctx, slotID)
	if err != nil {
		return fmt.Errorf("decrement slot: %w", err)
	}

	if !dec.Success {
		return s.compensate(ctx, event, slotID)
	}

	now := time.Now()
	reservation := &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SlotID:            slotID,
		BuyerName:         event.Metadata.BuyerName,
		BuyerEmail:        event.Metadata.BuyerEmail,
		BuyerPhone:        event.Metadata.BuyerPhone,
		PaymentReference:  event.PaymentReference,
		CheckoutSessionID: event.CheckoutSessionID,
		AmountPaidCents:   event.AmountTotalCents,
		Status:            entity.ReservationStatusConfirmed,
	}

	if err := s.repo.Reservation.Create(ctx, reservation); err != nil {
		// Whatever the cause, the seat claimed above must not leak: a
		// reservation exists iff its decrement stuck.
		if incErr := s.repo.Slot.IncrementCapacity(ctx, slotID); incErr != nil {
			s.log.Error("Failed to release seat after insert failure",
				zap.Error(incErr),
				zap.String("slot_id", slotID.String()),
				zap.String("payment_reference", event.PaymentReference),
			)
		}

		if errors.Is(err, apperrors.ErrDuplicateReservation) {
			// Concurrent redelivery won the insert between our pre-check
			// and now. Already handled; not an error.
			s.log.Info("Duplicate completed event detected on insert",
				zap.String("payment_reference", event.PaymentReference),
			)
			return nil
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	s.log.Info("Reservation confirmed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("slot_id", slotID.String()),
		zap.String("payment_reference", event.PaymentReference),
		zap.Int64("amount_cents", event.AmountTotalCents),
		zap.Int("capacity_left", dec.Remaining),
	)

	s.dispatch(ctx, notify.Message{
		Kind:          notify.KindConfirmation,
		To:            reservation.BuyerEmail,
		BuyerName:     reservation.BuyerName,
		AmountCents:   reservation.AmountPaidCents,
		Currency:      s.config.Gateway.Currency,
		ReservationID: reservation.ID.String(),
	}, slotID)

	return nil
}

// compensate refunds a captured payment for which no seat could be claimed.
// No reservation is ever created on this path, whatever happens to the
// refund itself.
func (s *reconcileService) compensate(ctx context.Context, event *gateway.PaymentEvent, slotID uuid.UUID) error {
	s.log.Warn("Capacity exhausted after payment, issuing compensating refund",
		zap.String("slot_id", slotID.String()),
		zap.String("payment_reference", event.PaymentReference),
	)

	attempts := s.config.Gateway.RefundAttempts
	if attempts < 1 {
		attempts = 1
	}

	var refundErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		refundErr = s.gateway.IssueRefund(ctx, event.PaymentReference, "no seats left")
		if refundErr == nil {
			break
		}
		if attempt < attempts {
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}
	}

	if refundErr != nil {
		// A buyer has been charged for a seat that does not exist and the
		// refund could not be issued. This must reach an operator.
		s.log.Error("Compensating refund failed, manual reconciliation required",
			zap.Error(refundErr),
			zap.String("slot_id", slotID.String()),
			zap.String("payment_reference", event.PaymentReference),
			zap.Int64("amount_cents", event.AmountTotalCents),
			zap.String("buyer_email", event.Metadata.BuyerEmail),
		)
		return fmt.Errorf("refund %s after exhausted capacity: %w", event.PaymentReference, apperrors.ErrFatal)
	}

	s.log.Info("Compensating refund issued",
		zap.String("payment_reference", event.PaymentReference),
	)

	s.dispatch(ctx, notify.Message{
		Kind:        notify.KindRefund,
		To:          event.Metadata.BuyerEmail,
		BuyerName:   event.Metadata.BuyerName,
		AmountCents: event.AmountTotalCents,
		Currency:    s.config.Gateway.Currency,
		Reason:      "class is fully booked",
	}, slotID)

	return nil
}

func (s *reconcileService) HandleFailed(ctx context.Context, event *gateway.PaymentEvent) error {
	return s.reverse(ctx, event, notify.KindPaymentFailed)
}

func (s *reconcileService) HandleRefunded(ctx context.Context, event *gateway.PaymentEvent) error {
	return s.reverse(ctx, event, notify.KindRefund)
}

// reverse is the shared reversal routine for Failed and Refunded events,
// parameterized only by the notification kind.
func (s *reconcileService) reverse(ctx context.Context, event *gateway.PaymentEvent, kind notify.Kind) error {
	if event.PaymentReference == "" {
		return fmt.Errorf("reversal event without payment reference: %w", apperrors.ErrValidation)
	}

	reservation, err := s.repo.Reservation.FindByPaymentReference(ctx, event.PaymentReference)
	if err != nil {
		return fmt.Errorf("lookup reservation: %w", err)
	}
	if reservation == nil {
		// Common case for Failed: payment never captured, nothing was
		// decremented. Also covers a reversal arriving before its
		// Completed; logged so a reordering gateway is visible.
		s.log.Warn("Reversal event with no matching reservation, nothing to reverse",
			zap.String("payment_reference", event.PaymentReference),
			zap.String("kind", string(kind)),
		)
		return nil
	}

	if reservation.Status == entity.ReservationStatusCancelled {
		s.log.Info("Reversal already applied",
			zap.String("payment_reference", event.PaymentReference),
		)
		return nil
	}

	// A partial refund is a goodwill credit, not a cancellation: the buyer
	// keeps the seat.
	if kind == notify.KindRefund && event.AmountRefunded > 0 && event.AmountRefunded < reservation.AmountPaidCents {
		s.log.Info("Partial refund, seat retained",
			zap.String("payment_reference", event.PaymentReference),
			zap.Int64("amount_refunded", event.AmountRefunded),
			zap.Int64("amount_paid", reservation.AmountPaidCents),
		)
		return nil
	}

	// Conditional flip; only the caller that wins it releases the seat, so
	// concurrent Failed and Refunded for one reference increment once.
	applied, err := s.repo.Reservation.MarkCancelled(ctx, reservation.ID)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if !applied {
		s.log.Info("Reversal raced with another delivery, already applied",
			zap.String("payment_reference", event.PaymentReference),
		)
		return nil
	}

	if err := s.repo.Slot.IncrementCapacity(ctx, reservation.SlotID); err != nil {
		// The reservation is already cancelled, so a redelivery would
		// no-op and never retry this increment. Escalate.
		s.log.Error("Failed to release seat after reversal, manual reconciliation required",
			zap.Error(err),
			zap.String("slot_id", reservation.SlotID.String()),
			zap.String("payment_reference", event.PaymentReference),
		)
		return fmt.Errorf("release seat for %s: %w", event.PaymentReference, apperrors.ErrFatal)
	}

	s.log.Info("Reservation reversed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("slot_id", reservation.SlotID.String()),
		zap.String("payment_reference", event.PaymentReference),
		zap.String("kind", string(kind)),
	)

	s.dispatch(ctx, notify.Message{
		Kind:          kind,
		To:            reservation.BuyerEmail,
		BuyerName:     reservation.BuyerName,
		AmountCents:   reservation.AmountPaidCents,
		Currency:      s.config.Gateway.Currency,
		ReservationID: reservation.ID.String(),
		Reason:        event.FailureReason,
	}, reservation.SlotID)

	return nil
}

// dispatch sends a notification with a bounded timeout. Failures are
// logged, never propagated: notification must not gate the transactional
// outcome.
func (s *reconcileService) dispatch(ctx context.Context, msg notify.Message, slotID uuid.UUID) {
	if msg.To == "" {
		return
	}

	if slot, err := s.repo.Slot.FindByID(ctx, slotID); err == nil && slot != nil {
		msg.Activity = slot.Activity
		msg.StartsAt = slot.StartsAt
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.notifier.Send(sendCtx, msg); err != nil {
		s.log.Warn("Notification dispatch failed",
			zap.Error(err),
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
		)
	}
}

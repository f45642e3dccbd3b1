package repository

import (
	"context"
	"errors"
	"fmt"

	"studio-booking/internal/data/entity"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// SlotStats aggregates confirmed reservations for the owner dashboard.
type SlotStats struct {
	ConfirmedSeats int64
	GrossCents     int64
}

type ReservationRepository interface {
	// Create inserts the reservation. A unique violation on
	// payment_reference returns apperrors.ErrDuplicateReservation so the
	// caller can treat redelivery as already handled.
	Create(ctx context.Context, reservation *entity.Reservation) error
	FindByPaymentReference(ctx context.Context, paymentReference string) (*entity.Reservation, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*entity.Reservation, error)
	FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*entity.Reservation, error)

	// MarkCancelled flips status to cancelled only if it is not already
	// cancelled, and reports whether this call performed the transition.
	// The conditional update is what makes concurrent reversals of the
	// same payment reference increment capacity exactly once.
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)

	StatsBySlotID(ctx context.Context, slotID uuid.UUID) (SlotStats, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, slot_id, buyer_name, buyer_email, buyer_phone, payment_reference, checkout_session_id, amount_paid_cents, status, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID,
		&res.SlotID,
		&res.BuyerName,
		&res.BuyerEmail,
		&res.BuyerPhone,
		&res.PaymentReference,
		&res.CheckoutSessionID,
		&res.AmountPaidCents,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) Create(ctx context.Context, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, slot_id, buyer_name, buyer_email, buyer_phone, payment_reference, checkout_session_id, amount_paid_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		reservation.ID,
		reservation.SlotID,
		reservation.BuyerName,
		reservation.BuyerEmail,
		reservation.BuyerPhone,
		reservation.PaymentReference,
		reservation.CheckoutSessionID,
		reservation.AmountPaidCents,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// payment_reference unique index: the idempotency barrier.
			return fmt.Errorf("reservation for %s: %w", reservation.PaymentReference, apperrors.ErrDuplicateReservation)
		}

		r.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("payment_reference", reservation.PaymentReference),
			zap.String("slot_id", reservation.SlotID.String()),
		)
		return fmt.Errorf("create reservation %s: %w", reservation.PaymentReference, err)
	}

	return nil
}

func (r *reservationRepository) FindByPaymentReference(ctx context.Context, paymentReference string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE payment_reference = $1`

	res, err := scanReservation(r.db.QueryRow(ctx, query, paymentReference))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by payment reference",
			zap.Error(err),
			zap.String("payment_reference", paymentReference),
		)
		return nil, fmt.Errorf("find reservation by payment reference %s: %w", paymentReference, err)
	}

	return res, nil
}

func (r *reservationRepository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE checkout_session_id = $1`

	res, err := scanReservation(r.db.QueryRow(ctx, query, sessionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by checkout session",
			zap.Error(err),
			zap.String("checkout_session_id", sessionID),
		)
		return nil, fmt.Errorf("find reservation by checkout session %s: %w", sessionID, err)
	}

	return res, nil
}

func (r *reservationRepository) FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE slot_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, slotID)
	if err != nil {
		r.log.Error("Failed to find reservations by slot",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
		)
		return nil, fmt.Errorf("find reservations by slot %s: %w", slotID.String(), err)
	}
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

func (r *reservationRepository) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status != 'cancelled'
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to cancel reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return false, fmt.Errorf("cancel reservation %s: %w", id.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *reservationRepository) StatsBySlotID(ctx context.Context, slotID uuid.UUID) (SlotStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount_paid_cents), 0)
		FROM reservations
		WHERE slot_id = $1 AND status = 'confirmed'
	`

	var stats SlotStats
	if err := r.db.QueryRow(ctx, query, slotID).Scan(&stats.ConfirmedSeats, &stats.GrossCents); err != nil {
		r.log.Error("Failed to aggregate reservations for slot",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
		)
		return SlotStats{}, fmt.Errorf("aggregate reservations for slot %s: %w", slotID.String(), err)
	}

	return stats, nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/data/repository"
	"studio-booking/internal/dto/request"
	"studio-booking/internal/dto/response"
	"studio-booking/pkg/apperrors"
	"studio-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SlotService interface {
	// Public browse endpoints
	BrowseSlots(ctx context.Context, req *request.BrowseSlotsRequest) (*response.PaginatedResponse[response.SlotResponse], error)
	GetSlot(ctx context.Context, slotID string) (*response.SlotResponse, error)

	// Owner endpoints
	CreateSlot(ctx context.Context, providerID uuid.UUID, req *request.CreateSlotRequest) (*response.SlotResponse, error)
	CancelSlot(ctx context.Context, providerID uuid.UUID, slotID string) error
	ListOwnerSlots(ctx context.Context, providerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OwnerSlotResponse], error)
}

type slotService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSlotService(repo *repository.Repository, log *zap.Logger) SlotService {
	return &slotService{
		repo: repo,
		log:  log.With(zap.String("service", "slot")),
	}
}

func (s *slotService) BrowseSlots(ctx context.Context, req *request.BrowseSlotsRequest) (*response.PaginatedResponse[response.SlotResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	slots, err := s.repo.Slot.FindActiveUpcoming(ctx, req.Activity, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("browse slots: %w", err)
	}

	total, err := s.repo.Slot.CountActiveUpcoming(ctx, req.Activity)
	if err != nil {
		return nil, fmt.Errorf("count slots: %w", err)
	}

	slotResponses := make([]response.SlotResponse, len(slots))
	for i, slot := range slots {
		slotResponses[i] = response.SlotToResponse(slot)
	}

	return response.NewPaginatedResponse(slotResponses, req.Page, req.PerPage, total), nil
}

func (s *slotService) GetSlot(ctx context.Context, slotID string) (*response.SlotResponse, error) {
	id, err := uuid.Parse(slotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot ID %s: %w", slotID, apperrors.ErrValidation)
	}

	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", slotID, apperrors.ErrNotFound)
	}

	resp := response.SlotToResponse(slot)
	return &resp, nil
}

func (s *slotService) CreateSlot(ctx context.Context, providerID uuid.UUID, req *request.CreateSlotRequest) (*response.SlotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create slot validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, utils.FormatValidationErrors(errs))
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid starts_at %s: %w", req.StartsAt, apperrors.ErrValidation)
	}
	if startsAt.Before(time.Now()) {
		return nil, fmt.Errorf("starts_at must be in the future: %w", apperrors.ErrValidation)
	}

	now := time.Now()
	slot := &entity.Slot{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID:      providerID,
		Activity:        req.Activity,
		StartsAt:        startsAt,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		CapacityTotal:   req.CapacityTotal,
		CapacityLeft:    req.CapacityTotal,
		Status:          entity.SlotStatusActive,
	}

	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.log.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("provider_id", providerID.String()),
		zap.String("activity", slot.Activity),
		zap.Int("capacity_total", slot.CapacityTotal),
	)

	resp := response.SlotToResponse(slot)
	return &resp, nil
}

func (s *slotService) CancelSlot(ctx context.Context, providerID uuid.UUID, slotID string) error {
	id, err := uuid.Parse(slotID)
	if err != nil {
		return fmt.Errorf("invalid slot ID %s: %w", slotID, apperrors.ErrValidation)
	}

	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find slot: %w", err)
	}
	if slot == nil {
		return fmt.Errorf("slot %s: %w", slotID, apperrors.ErrNotFound)
	}

	if slot.ProviderID != providerID {
		return fmt.Errorf("slot %s not owned by provider: %w", slotID, apperrors.ErrForbidden)
	}

	// Cancels future capacity only; existing reservations are untouched.
	if err := s.repo.Slot.Cancel(ctx, id); err != nil {
		return fmt.Errorf("cancel slot %s: %w", slotID, err)
	}

	return nil
}

func (s *slotService) ListOwnerSlots(ctx context.Context, providerID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OwnerSlotResponse], error) {
	provider, err := s.repo.Provider.FindByID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %s: %w", providerID.String(), apperrors.ErrNotFound)
	}

	limit := req.Limit()
	offset := req.Offset()

	slots, err := s.repo.Slot.FindByProviderID(ctx, providerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list owner slots: %w", err)
	}

	total, err := s.repo.Slot.CountByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("count owner slots: %w", err)
	}

	slotResponses := make([]response.OwnerSlotResponse, len(slots))
	for i, slot := range slots {
		stats, err := s.repo.Reservation.StatsBySlotID(ctx, slot.ID)
		if err != nil {
			return nil, fmt.Errorf("slot stats for %s: %w", slot.ID.String(), err)
		}

		commission := stats.GrossCents * int64(provider.CommissionBps) / 10000

		slotResponses[i] = response.OwnerSlotResponse{
			SlotResponse:      response.SlotToResponse(slot),
			ConfirmedSeats:    stats.ConfirmedSeats,
			GrossRevenueCents: stats.GrossCents,
			NetRevenueCents:   stats.GrossCents - commission,
		}
	}

	return response.NewPaginatedResponse(slotResponses, req.Page, req.PerPage, total), nil
}

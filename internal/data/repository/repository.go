package repository

import (
	"studio-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Slot        SlotRepository
	Reservation ReservationRepository
	Provider    ProviderRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Slot:        NewSlotRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Provider:    NewProviderRepository(db, log),
	}
}

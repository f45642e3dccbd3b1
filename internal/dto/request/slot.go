package request

type CreateSlotRequest struct {
	Activity        string `json:"activity" validate:"required,min=2,max=50"`
	StartsAt        string `json:"starts_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=15,max=480"`
	PriceCents      int64  `json:"price_cents" validate:"required,min=100"`
	CapacityTotal   int    `json:"capacity_total" validate:"required,min=1,max=500"`
}

type BrowseSlotsRequest struct {
	Activity string `json:"activity" validate:"omitempty,min=2,max=50"`
	PaginatedRequest
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
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

// In-memory repositories backing the service tests. TryDecrement,
// IncrementCapacity and MarkCancelled hold the mutex for the whole
// read-check-write, matching the atomicity the SQL statements provide.

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*entity.Slot

	decrementErr error
	incrementErr error

	incrementCalls int
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID]*entity.Slot)}
}

func (f *fakeSlotRepo) add(slot *entity.Slot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot.ID] = slot
}

func (f *fakeSlotRepo) get(id uuid.UUID) entity.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.slots[id]
}

func (f *fakeSlotRepo) Create(ctx context.Context, slot *entity.Slot) error {
	f.add(slot)
	return nil
}

func (f *fakeSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[id]
	if !ok {
		return nil, nil
	}
	copied := *slot
	return &copied, nil
}

func (f *fakeSlotRepo) FindActiveUpcoming(ctx context.Context, activity string, limit, offset int) ([]*entity.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Slot
	for _, slot := range f.slots {
		if (slot.Status == entity.SlotStatusActive || slot.Status == entity.SlotStatusFull) &&
			slot.StartsAt.After(time.Now()) &&
			(activity == "" || slot.Activity == activity) {
			copied := *slot
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) CountActiveUpcoming(ctx context.Context, activity string) (int64, error) {
	slots, _ := f.FindActiveUpcoming(ctx, activity, 0, 0)
	return int64(len(slots)), nil
}

func (f *fakeSlotRepo) FindByProviderID(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Slot
	for _, slot := range f.slots {
		if slot.ProviderID == providerID {
			copied := *slot
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) CountByProviderID(ctx context.Context, providerID uuid.UUID) (int64, error) {
	slots, _ := f.FindByProviderID(ctx, providerID, 0, 0)
	return int64(len(slots)), nil
}

func (f *fakeSlotRepo) TryDecrement(ctx context.Context, id uuid.UUID) (repository.DecrementResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.decrementErr != nil {
		return repository.DecrementResult{}, f.decrementErr
	}

	slot, ok := f.slots[id]
	if !ok || slot.Status != entity.SlotStatusActive || slot.CapacityLeft <= 0 {
		return repository.DecrementResult{Success: false}, nil
	}

	slot.CapacityLeft--
	if slot.CapacityLeft == 0 {
		slot.Status = entity.SlotStatusFull
	}
	return repository.DecrementResult{Success: true, Remaining: slot.CapacityLeft}, nil
}

func (f *fakeSlotRepo) IncrementCapacity(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.incrementErr != nil {
		return f.incrementErr
	}

	slot, ok := f.slots[id]
	if !ok || slot.CapacityLeft >= slot.CapacityTotal {
		return nil
	}

	f.incrementCalls++
	slot.CapacityLeft++
	if slot.Status == entity.SlotStatusFull {
		slot.Status = entity.SlotStatusActive
	}
	return nil
}

func (f *fakeSlotRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[id]
	if !ok {
		return nil
	}
	if slot.Status == entity.SlotStatusActive || slot.Status == entity.SlotStatusFull {
		slot.Status = entity.SlotStatusCancelled
	}
	return nil
}

type fakeReservationRepo struct {
	mu    sync.Mutex
	byRef map[string]*entity.Reservation

	createErr error
	// findNil makes FindByPaymentReference report no match, forcing the
	// caller past the pre-check onto the insert path.
	findNil bool
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{byRef: make(map[string]*entity.Reservation)}
}

func (f *fakeReservationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byRef)
}

func (f *fakeReservationRepo) get(ref string) entity.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byRef[ref]
}

func (f *fakeReservationRepo) Create(ctx context.Context, reservation *entity.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byRef[reservation.PaymentReference]; exists {
		return fmt.Errorf("reservation for %s: %w", reservation.PaymentReference, apperrors.ErrDuplicateReservation)
	}

	copied := *reservation
	f.byRef[reservation.PaymentReference] = &copied
	return nil
}

func (f *fakeReservationRepo) FindByPaymentReference(ctx context.Context, paymentReference string) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findNil {
		return nil, nil
	}
	res, ok := f.byRef[paymentReference]
	if !ok {
		return nil, nil
	}
	copied := *res
	return &copied, nil
}

func (f *fakeReservationRepo) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, res := range f.byRef {
		if res.CheckoutSessionID == sessionID {
			copied := *res
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeReservationRepo) FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Reservation
	for _, res := range f.byRef {
		if res.SlotID == slotID {
			copied := *res
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, res := range f.byRef {
		if res.ID == id {
			if res.Status == entity.ReservationStatusCancelled {
				return false, nil
			}
			res.Status = entity.ReservationStatusCancelled
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) StatsBySlotID(ctx context.Context, slotID uuid.UUID) (repository.SlotStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats repository.SlotStats
	for _, res := range f.byRef {
		if res.SlotID == slotID && res.Status == entity.ReservationStatusConfirmed {
			stats.ConfirmedSeats++
			stats.GrossCents += res.AmountPaidCents
		}
	}
	return stats, nil
}

type fakeProviderRepo struct {
	mu        sync.Mutex
	providers map[uuid.UUID]*entity.Provider
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{providers: make(map[uuid.UUID]*entity.Provider)}
}

func (f *fakeProviderRepo) Create(ctx context.Context, provider *entity.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[provider.ID] = provider
	return nil
}

func (f *fakeProviderRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	provider, ok := f.providers[id]
	if !ok {
		return nil, nil
	}
	copied := *provider
	return &copied, nil
}

func (f *fakeProviderRepo) FindByEmail(ctx context.Context, email string) (*entity.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, provider := range f.providers {
		if provider.Email == email {
			copied := *provider
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeGateway struct {
	mu sync.Mutex

	session    *gateway.CheckoutSession
	sessionErr error
	lastReq    gateway.CheckoutSessionRequest

	// failRefunds makes the first N refund calls fail.
	failRefunds int
	refundCalls int
	refunded    []string
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutSessionRequest) (*gateway.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session != nil {
		return f.session, nil
	}
	return &gateway.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

func (f *fakeGateway) IssueRefund(ctx context.Context, paymentReference, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refundCalls++
	if f.refundCalls <= f.failRefunds {
		return errors.New("gateway unreachable")
	}
	f.refunded = append(f.refunded, paymentReference)
	return nil
}

func (f *fakeGateway) VerifyEvent(payload []byte, signature string) (*gateway.PaymentEvent, error) {
	return nil, errors.New("not used")
}

func (f *fakeGateway) refundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.refunded)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	sendErr  error
}

func (f *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeNotifier) byKind(kind notify.Kind) []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Message
	for _, msg := range f.messages {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

type fixture struct {
	slots        *fakeSlotRepo
	reservations *fakeReservationRepo
	providers    *fakeProviderRepo
	gateway      *fakeGateway
	notifier     *fakeNotifier
	repo         *repository.Repository
	config       *utils.Config
}

func newFixture() *fixture {
	slots := newFakeSlotRepo()
	reservations := newFakeReservationRepo()
	providers := newFakeProviderRepo()

	return &fixture{
		slots:        slots,
		reservations: reservations,
		providers:    providers,
		gateway:      &fakeGateway{},
		notifier:     &fakeNotifier{},
		repo: &repository.Repository{
			Slot:        slots,
			Reservation: reservations,
			Provider:    providers,
		},
		config: &utils.Config{
			App: utils.AppConfig{BaseURL: "https://booking.example"},
			Gateway: utils.GatewayConfig{
				Currency:       "eur",
				RefundAttempts: 3,
			},
			JWT: utils.JWTConfig{
				Secret:      "test-secret",
				ExpiryHours: 24,
			},
		},
	}
}

func (fx *fixture) reconcile() ReconcileService {
	svc := NewReconcileService(fx.repo, fx.gateway, fx.notifier, fx.config, zap.NewNop())
	svc.(*reconcileService).retryDelay = time.Millisecond
	return svc
}

func (fx *fixture) checkout() CheckoutService {
	return NewCheckoutService(fx.repo, fx.gateway, fx.config, zap.NewNop())
}

func (fx *fixture) slotService() SlotService {
	return NewSlotService(fx.repo, zap.NewNop())
}

func (fx *fixture) auth() AuthService {
	return NewAuthService(fx.repo, fx.config, zap.NewNop())
}

func (fx *fixture) addSlot(capacity int) *entity.Slot {
	now := time.Now()
	slot := &entity.Slot{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProviderID:      uuid.New(),
		Activity:        "yoga",
		StartsAt:        now.Add(48 * time.Hour),
		DurationMinutes: 60,
		PriceCents:      2500,
		CapacityTotal:   capacity,
		CapacityLeft:    capacity,
		Status:          entity.SlotStatusActive,
	}
	fx.slots.add(slot)
	return slot
}

func completedEvent(slotID uuid.UUID, ref string) *gateway.PaymentEvent {
	return &gateway.PaymentEvent{
		Kind:              gateway.EventCompleted,
		PaymentReference:  ref,
		CheckoutSessionID: "cs_" + ref,
		AmountTotalCents:  2500,
		Metadata: gateway.CheckoutMetadata{
			SlotID:     slotID.String(),
			BuyerName:  "Ada Buyer",
			BuyerEmail: "ada@example.com",
			BuyerPhone: "0612345678",
		},
	}
}

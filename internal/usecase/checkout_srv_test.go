package usecase

import (
	"context"
	"errors"
	"testing"

	"studio-booking/internal/data/entity"
	"studio-booking/internal/dto/request"
	"studio-booking/pkg/apperrors"
)

func validCheckoutRequest(slotID string) *request.CheckoutRequest {
	return &request.CheckoutRequest{
		SlotID:     slotID,
		BuyerName:  "Ada Buyer",
		BuyerEmail: "ada@example.com",
		BuyerPhone: "0612345678",
	}
}

func TestInitiateOpensSession(t *testing.T) {
	fx := newFixture()
	slot := fx.addSlot(5)
	svc := fx.checkout()

	resp, err := svc.Initiate(context.Background(), validCheckoutRequest(slot.ID.String()))
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if resp.CheckoutURL != "https://pay.example/cs_test" {
		t.Errorf("checkout_url = %s", resp.CheckoutURL)
	}

	req := fx.gateway.lastReq
	if req.AmountCents != slot.PriceCents {
		t.Errorf("amount = %d, want %d", req.AmountCents, slot.PriceCents)
	}
	if req.Metadata.SlotID != slot.ID.String() {
		t.Errorf("metadata slot_id = %s, want %s", req.Metadata.SlotID, slot.ID)
	}
	if req.Metadata.BuyerEmail != "ada@example.com" {
		t.Errorf("metadata buyer_email = %s", req.Metadata.BuyerEmail)
	}
	if req.SuccessURL != "https://booking.example/confirmation?session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("success_url = %s", req.SuccessURL)
	}
}

func TestInitiateRejectsUnavailableSlot(t *testing.T) {
	fx := newFixture()
	slot := fx.addSlot(1)
	svc := fx.checkout()

	fx.slots.mu.Lock()
	fx.slots.slots[slot.ID].CapacityLeft = 0
	fx.slots.slots[slot.ID].Status = entity.SlotStatusFull
	fx.slots.mu.Unlock()

	_, err := svc.Initiate(context.Background(), validCheckoutRequest(slot.ID.String()))
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestInitiateRejectsCancelledSlot(t *testing.T) {
	fx := newFixture()
	slot := fx.addSlot(5)
	svc := fx.checkout()

	fx.slots.mu.Lock()
	fx.slots.slots[slot.ID].Status = entity.SlotStatusCancelled
	fx.slots.mu.Unlock()

	_, err := svc.Initiate(context.Background(), validCheckoutRequest(slot.ID.String()))
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestInitiateUnknownSlot(t *testing.T) {
	fx := newFixture()
	svc := fx.checkout()

	_, err := svc.Initiate(context.Background(), validCheckoutRequest("2b1b3f60-6f1f-4a8e-9a7c-0f0f0f0f0f0f"))
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInitiateValidation(t *testing.T) {
	fx := newFixture()
	slot := fx.addSlot(5)
	svc := fx.checkout()

	req := validCheckoutRequest(slot.ID.String())
	req.BuyerEmail = "not-an-email"

	_, err := svc.Initiate(context.Background(), req)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestInitiateGatewayFailure(t *testing.T) {
	fx := newFixture()
	slot := fx.addSlot(5)
	fx.gateway.sessionErr = errors.New("gateway timeout")
	svc := fx.checkout()

	_, err := svc.Initiate(context.Background(), validCheckoutRequest(slot.ID.String()))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestConfirmReturnsReservation(t *testing.T) {
	fx := newFixture()
	slot := fx.addSlot(5)
	svc := fx.checkout()

	if err := fx.reconcile().HandleCompleted(context.Background(), completedEvent(slot.ID, "pi_conf")); err != nil {
		t.Fatalf("HandleCompleted: %v", err)
	}

	resp, err := svc.Confirm(context.Background(), "cs_pi_conf")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if resp.Status != "confirmed" {
		t.Errorf("status = %s, want confirmed", resp.Status)
	}
	if resp.Activity != "yoga" {
		t.Errorf("activity = %s, want yoga", resp.Activity)
	}
	if resp.AmountPaidCents != 2500 {
		t.Errorf("amount_paid_cents = %d, want 2500", resp.AmountPaidCents)
	}
}

func TestConfirmBeforeWebhookArrives(t *testing.T) {
	fx := newFixture()
	svc := fx.checkout()

	_, err := svc.Confirm(context.Background(), "cs_unknown")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestConfirmRequiresSessionID(t *testing.T) {
	fx := newFixture()
	svc := fx.checkout()

	_, err := svc.Confirm(context.Background(), "")
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

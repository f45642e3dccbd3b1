package adaptor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studio-booking/internal/gateway"
	"studio-booking/pkg/apperrors"

	"go.uber.org/zap"
)

type stubVerifier struct {
	event     *gateway.PaymentEvent
	verifyErr error
}

func (s *stubVerifier) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutSessionRequest) (*gateway.CheckoutSession, error) {
	return nil, errors.New("not used")
}

func (s *stubVerifier) IssueRefund(ctx context.Context, paymentReference, reason string) error {
	return errors.New("not used")
}

func (s *stubVerifier) VerifyEvent(payload []byte, signature string) (*gateway.PaymentEvent, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.event, nil
}

type stubReconciler struct {
	handled []gateway.EventKind
	err     error
}

func (s *stubReconciler) HandleCompleted(ctx context.Context, event *gateway.PaymentEvent) error {
	s.handled = append(s.handled, gateway.EventCompleted)
	return s.err
}

func (s *stubReconciler) HandleFailed(ctx context.Context, event *gateway.PaymentEvent) error {
	s.handled = append(s.handled, gateway.EventFailed)
	return s.err
}

func (s *stubReconciler) HandleRefunded(ctx context.Context, event *gateway.PaymentEvent) error {
	s.handled = append(s.handled, gateway.EventRefunded)
	return s.err
}

func postWebhook(handler *WebhookHandler, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.HandleEvent(rec, req)
	return rec
}

func TestHandleEventMissingSignature(t *testing.T) {
	reconciler := &stubReconciler{}
	handler := NewWebhookHandler(reconciler, &stubVerifier{}, zap.NewNop())

	rec := postWebhook(handler, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(reconciler.handled) != 0 {
		t.Errorf("handled = %v, want none", reconciler.handled)
	}
}

func TestHandleEventBadSignature(t *testing.T) {
	reconciler := &stubReconciler{}
	verifier := &stubVerifier{verifyErr: errors.New("signature mismatch")}
	handler := NewWebhookHandler(reconciler, verifier, zap.NewNop())

	rec := postWebhook(handler, "t=1,v1=bad")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(reconciler.handled) != 0 {
		t.Errorf("handled = %v, want none", reconciler.handled)
	}
}

func TestHandleEventDispatchesByKind(t *testing.T) {
	for _, kind := range []gateway.EventKind{gateway.EventCompleted, gateway.EventFailed, gateway.EventRefunded} {
		reconciler := &stubReconciler{}
		verifier := &stubVerifier{event: &gateway.PaymentEvent{Kind: kind, PaymentReference: "pi_1"}}
		handler := NewWebhookHandler(reconciler, verifier, zap.NewNop())

		rec := postWebhook(handler, "t=1,v1=ok")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", kind, rec.Code)
		}
		if len(reconciler.handled) != 1 || reconciler.handled[0] != kind {
			t.Errorf("%s: handled = %v", kind, reconciler.handled)
		}
	}
}

func TestHandleEventIgnoredKindAcknowledged(t *testing.T) {
	reconciler := &stubReconciler{}
	verifier := &stubVerifier{event: &gateway.PaymentEvent{Kind: gateway.EventIgnored}}
	handler := NewWebhookHandler(reconciler, verifier, zap.NewNop())

	rec := postWebhook(handler, "t=1,v1=ok")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if len(reconciler.handled) != 0 {
		t.Errorf("handled = %v, want none", reconciler.handled)
	}
}

func TestHandleEventErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		// A malformed event is acknowledged as a client error: redelivery
		// would carry the same payload.
		{"validation", fmt.Errorf("bad slot id: %w", apperrors.ErrValidation), http.StatusBadRequest},
		// Fatal and transient errors keep the gateway redelivering.
		{"fatal", fmt.Errorf("refund failed: %w", apperrors.ErrFatal), http.StatusInternalServerError},
		{"transient", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reconciler := &stubReconciler{err: tc.err}
			verifier := &stubVerifier{event: &gateway.PaymentEvent{Kind: gateway.EventCompleted, PaymentReference: "pi_1"}}
			handler := NewWebhookHandler(reconciler, verifier, zap.NewNop())

			rec := postWebhook(handler, "t=1,v1=ok")
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gebeyalink/storefront/internal/marketplace"
	paymentsvc "github.com/gebeyalink/storefront/internal/payments"
	"github.com/gebeyalink/storefront/pkg/enums"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
)

type stubDispatcher struct {
	telebirrFn func(ctx context.Context, sessionID, phone string) (*paymentsvc.TelebirrResult, error)
	gatewayFn  func(ctx context.Context, sessionID string) (*paymentsvc.GatewayResult, error)
	transferFn func(ctx context.Context, sessionID string, proof marketplace.BankTransferProof) (*paymentsvc.BankTransferResult, error)
	codFn      func(ctx context.Context, sessionID string) (*marketplace.Order, error)
	completeFn func(ctx context.Context, sessionID, orderID string) (*marketplace.Order, error)
	refreshFn  func(ctx context.Context, sessionID string) (*marketplace.Order, error)
}

func (s stubDispatcher) PayWithTelebirr(ctx context.Context, sessionID, phone string) (*paymentsvc.TelebirrResult, error) {
	if s.telebirrFn != nil {
		return s.telebirrFn(ctx, sessionID, phone)
	}
	return &paymentsvc.TelebirrResult{}, nil
}

func (s stubDispatcher) PayWithGateway(ctx context.Context, sessionID string) (*paymentsvc.GatewayResult, error) {
	if s.gatewayFn != nil {
		return s.gatewayFn(ctx, sessionID)
	}
	return &paymentsvc.GatewayResult{}, nil
}

func (s stubDispatcher) SubmitBankTransfer(ctx context.Context, sessionID string, proof marketplace.BankTransferProof) (*paymentsvc.BankTransferResult, error) {
	if s.transferFn != nil {
		return s.transferFn(ctx, sessionID, proof)
	}
	return &paymentsvc.BankTransferResult{}, nil
}

func (s stubDispatcher) ConfirmCashOnDelivery(ctx context.Context, sessionID string) (*marketplace.Order, error) {
	if s.codFn != nil {
		return s.codFn(ctx, sessionID)
	}
	return &marketplace.Order{}, nil
}

func (s stubDispatcher) Complete(ctx context.Context, sessionID, orderID string) (*marketplace.Order, error) {
	if s.completeFn != nil {
		return s.completeFn(ctx, sessionID, orderID)
	}
	return &marketplace.Order{}, nil
}

func (s stubDispatcher) RefreshOrder(ctx context.Context, sessionID string) (*marketplace.Order, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, sessionID)
	}
	return &marketplace.Order{}, nil
}

func TestPaymentTelebirrForwardsPhone(t *testing.T) {
	var gotPhone string
	d := stubDispatcher{
		telebirrFn: func(_ context.Context, sessionID, phone string) (*paymentsvc.TelebirrResult, error) {
			if sessionID != "sess-1" {
				t.Fatalf("unexpected session %q", sessionID)
			}
			gotPhone = phone
			return &paymentsvc.TelebirrResult{Reference: "tb-123", DeepLink: "telebirr://pay/tb-123"}, nil
		},
	}

	handler := PaymentTelebirr(d, testLogger())
	body := strings.NewReader(`{"phone":"+251911223344"}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/", body), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotPhone != "+251911223344" {
		t.Fatalf("unexpected phone %q", gotPhone)
	}
	var envelope struct {
		Data paymentsvc.TelebirrResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Reference != "tb-123" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestPaymentTelebirrBodyOptional(t *testing.T) {
	var gotPhone string
	d := stubDispatcher{
		telebirrFn: func(_ context.Context, _, phone string) (*paymentsvc.TelebirrResult, error) {
			gotPhone = phone
			return &paymentsvc.TelebirrResult{}, nil
		},
	}

	handler := PaymentTelebirr(d, testLogger())
	req := withSession(httptest.NewRequest(http.MethodPost, "/", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotPhone != "" {
		t.Fatalf("expected empty phone, got %q", gotPhone)
	}
}

func TestPaymentGatewayReturnsRedirect(t *testing.T) {
	d := stubDispatcher{
		gatewayFn: func(_ context.Context, _ string) (*paymentsvc.GatewayResult, error) {
			return &paymentsvc.GatewayResult{CheckoutURL: "https://checkout.chapa.co/pay/xyz"}, nil
		},
	}

	handler := PaymentGateway(d, testLogger())
	req := withSession(httptest.NewRequest(http.MethodPost, "/", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data paymentsvc.GatewayResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CheckoutURL != "https://checkout.chapa.co/pay/xyz" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestPaymentBankTransferRejectsIncompleteProof(t *testing.T) {
	called := false
	d := stubDispatcher{
		transferFn: func(context.Context, string, marketplace.BankTransferProof) (*paymentsvc.BankTransferResult, error) {
			called = true
			return nil, nil
		},
	}

	handler := PaymentBankTransfer(d, testLogger())
	body := strings.NewReader(`{"bank_name":"CBE"}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/", body), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("dispatcher should not be called on invalid payload")
	}
	apiErr := decodeError(t, resp)
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %q", apiErr.Code)
	}
}

func TestPaymentBankTransferForwardsProof(t *testing.T) {
	var gotProof marketplace.BankTransferProof
	d := stubDispatcher{
		transferFn: func(_ context.Context, _ string, proof marketplace.BankTransferProof) (*paymentsvc.BankTransferResult, error) {
			gotProof = proof
			return &paymentsvc.BankTransferResult{Message: "Transfer received, pending verification"}, nil
		},
	}

	handler := PaymentBankTransfer(d, testLogger())
	body := strings.NewReader(`{"bank_name":"CBE","account_number":"1000123456789","transfer_date":"2026-08-28","reference_number":"FT26240ABCD"}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/", body), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotProof.BankName != "CBE" || gotProof.ReferenceNumber != "FT26240ABCD" {
		t.Fatalf("unexpected proof %+v", gotProof)
	}
}

func TestPaymentCashOnDeliveryReturnsOrder(t *testing.T) {
	d := stubDispatcher{
		codFn: func(_ context.Context, _ string) (*marketplace.Order, error) {
			return &marketplace.Order{ID: "ord-1", Status: "confirmed"}, nil
		},
	}

	handler := PaymentCashOnDelivery(d, testLogger())
	req := withSession(httptest.NewRequest(http.MethodPost, "/", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data marketplace.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != "ord-1" || envelope.Data.Status != "confirmed" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestPaymentCompleteForwardsOrderID(t *testing.T) {
	var gotOrderID string
	d := stubDispatcher{
		completeFn: func(_ context.Context, _, orderID string) (*marketplace.Order, error) {
			gotOrderID = orderID
			return &marketplace.Order{ID: orderID}, nil
		},
	}

	handler := PaymentComplete(d, testLogger())
	body := strings.NewReader(`{"order_id":"ord-9"}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/", body), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotOrderID != "ord-9" {
		t.Fatalf("unexpected order id %q", gotOrderID)
	}
}

func TestPaymentCompleteSurfacesStateConflict(t *testing.T) {
	d := stubDispatcher{
		completeFn: func(context.Context, string, string) (*marketplace.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no order available to complete")
		},
	}

	handler := PaymentComplete(d, testLogger())
	req := withSession(httptest.NewRequest(http.MethodPost, "/", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Message != "no order available to complete" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestPaymentRefreshOrder(t *testing.T) {
	d := stubDispatcher{
		refreshFn: func(_ context.Context, sessionID string) (*marketplace.Order, error) {
			if sessionID != "sess-1" {
				t.Fatalf("unexpected session %q", sessionID)
			}
			return &marketplace.Order{ID: "ord-1", PaymentStatus: enums.PaymentStatusPaid}, nil
		},
	}

	handler := PaymentRefreshOrder(d, testLogger())
	req := withSession(httptest.NewRequest(http.MethodPost, "/", nil), "sess-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data marketplace.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != "ord-1" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/gebeyalink/storefront/internal/cart"
	"github.com/gebeyalink/storefront/internal/checkout"
	"github.com/gebeyalink/storefront/internal/marketplace"
	"github.com/gebeyalink/storefront/pkg/analytics"
	"github.com/gebeyalink/storefront/pkg/enums"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/metrics"
)

// TelebirrResult is the display payload after a mobile-money push.
type TelebirrResult struct {
	Reference string             `json:"reference"`
	DeepLink  string             `json:"deep_link,omitempty"`
	Message   string             `json:"message,omitempty"`
	Order     *marketplace.Order `json:"order"`
}

// GatewayResult carries the redirect target for a gateway checkout.
type GatewayResult struct {
	CheckoutURL string             `json:"checkout_url"`
	Reference   string             `json:"reference,omitempty"`
	Order       *marketplace.Order `json:"order"`
}

// BankTransferResult acknowledges queued transfer evidence.
type BankTransferResult struct {
	Message string             `json:"message"`
	Order   *marketplace.Order `json:"order"`
}

type upstream interface {
	GetOrder(ctx context.Context, orderID string) (*marketplace.Order, error)
	ConfirmCashOnDelivery(ctx context.Context, orderID string) (*marketplace.Order, error)
	InitiateTelebirr(ctx context.Context, orderID, phone string) (*marketplace.TelebirrInitiation, error)
	CreateGatewaySession(ctx context.Context, orderID string) (*marketplace.GatewaySession, error)
	SubmitBankTransfer(ctx context.Context, orderID string, proof marketplace.BankTransferProof) (*marketplace.BankTransferReceipt, error)
}

// Dispatcher drives the four payment execution paths for a placed order and
// owns the transition into the success state, the single point where the
// cart's lifecycle ends.
type Dispatcher interface {
	PayWithTelebirr(ctx context.Context, sessionID, phone string) (*TelebirrResult, error)
	PayWithGateway(ctx context.Context, sessionID string) (*GatewayResult, error)
	SubmitBankTransfer(ctx context.Context, sessionID string, proof marketplace.BankTransferProof) (*BankTransferResult, error)
	ConfirmCashOnDelivery(ctx context.Context, sessionID string) (*marketplace.Order, error)
	Complete(ctx context.Context, sessionID, orderID string) (*marketplace.Order, error)
	RefreshOrder(ctx context.Context, sessionID string) (*marketplace.Order, error)
}

type dispatcher struct {
	sessions  *checkout.Manager
	carts     cart.Service
	upstream  upstream
	logger    *logger.Logger
	metrics   *metrics.StorefrontMetrics
	publisher analytics.Publisher
}

func NewDispatcher(sessions *checkout.Manager, carts cart.Service, api upstream, logg *logger.Logger, m *metrics.StorefrontMetrics, publisher analytics.Publisher) (Dispatcher, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if api == nil {
		return nil, fmt.Errorf("marketplace client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("analytics publisher required")
	}
	return &dispatcher{
		sessions:  sessions,
		carts:     carts,
		upstream:  api,
		logger:    logg,
		metrics:   m,
		publisher: publisher,
	}, nil
}

// ensureOrderLoaded guards every method-specific path: without a placed
// order the action aborts before any upstream call.
func (d *dispatcher) ensureOrderLoaded(sessionID string) (*checkout.Session, *marketplace.Order, error) {
	session := d.sessions.Get(sessionID)
	if session == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no checkout in progress")
	}
	var order *marketplace.Order
	session.WithLock(func() {
		order = session.Order
	})
	if order == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is still loading, please try again")
	}
	return session, order, nil
}

func (d *dispatcher) begin(session *checkout.Session, method enums.PaymentMethod) error {
	if !session.BeginProcessing(method) {
		return pkgerrors.New(pkgerrors.CodeConflict, "payment already in progress")
	}
	return nil
}

// refreshOrder re-reads the order from the source of truth after a mutating
// call, because the marketplace applies status transitions the mutation's
// own response may not reflect. A failed refresh keeps the held order.
func (d *dispatcher) refreshOrder(ctx context.Context, session *checkout.Session, orderID string) *marketplace.Order {
	fresh, err := d.upstream.GetOrder(ctx, orderID)
	if err != nil {
		d.logger.Warn(d.logger.WithField(ctx, "order_id", orderID), "order refresh failed")
		var held *marketplace.Order
		session.WithLock(func() { held = session.Order })
		return held
	}
	session.WithLock(func() { session.Order = fresh })
	return fresh
}

// PayWithTelebirr initiates a mobile-money push. The phone falls back from
// explicit input to the order's shipping phone to the order's customer
// phone; with none available the action aborts without an upstream call.
func (d *dispatcher) PayWithTelebirr(ctx context.Context, sessionID, phone string) (*TelebirrResult, error) {
	session, order, err := d.ensureOrderLoaded(sessionID)
	if err != nil {
		return nil, err
	}
	if err := d.begin(session, enums.PaymentMethodTelebirr); err != nil {
		return nil, err
	}
	defer session.EndProcessing(enums.PaymentMethodTelebirr)

	phone = strings.TrimSpace(phone)
	if phone == "" {
		phone = strings.TrimSpace(order.ShippingAddress.Phone)
	}
	if phone == "" {
		phone = strings.TrimSpace(order.CustomerPhone)
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a phone number is required for telebirr payment")
	}

	initiation, err := d.upstream.InitiateTelebirr(ctx, order.ID, phone)
	if err != nil {
		d.metrics.IncPaymentAction(enums.PaymentMethodTelebirr.String(), "failure")
		return nil, err
	}

	session.WithLock(func() {
		session.PaymentReference = initiation.Reference
		session.PaymentDeepLink = initiation.DeepLink
		session.PaymentMessage = initiation.Message
	})

	refreshed := d.refreshOrder(ctx, session, order.ID)
	d.metrics.IncPaymentAction(enums.PaymentMethodTelebirr.String(), "success")
	d.publisher.Publish(ctx, sessionID, analytics.EventPaymentInitiated, map[string]any{
		"order_id": order.ID,
		"method":   enums.PaymentMethodTelebirr.String(),
	})

	return &TelebirrResult{
		Reference: initiation.Reference,
		DeepLink:  initiation.DeepLink,
		Message:   initiation.Message,
		Order:     refreshed,
	}, nil
}

// PayWithGateway opens a redirect-gateway checkout session. The order is
// refreshed after initiation whether or not the gateway accepted.
func (d *dispatcher) PayWithGateway(ctx context.Context, sessionID string) (*GatewayResult, error) {
	session, order, err := d.ensureOrderLoaded(sessionID)
	if err != nil {
		return nil, err
	}
	if err := d.begin(session, enums.PaymentMethodGateway); err != nil {
		return nil, err
	}
	defer session.EndProcessing(enums.PaymentMethodGateway)

	gatewaySession, err := d.upstream.CreateGatewaySession(ctx, order.ID)
	refreshed := d.refreshOrder(ctx, session, order.ID)
	if err != nil {
		d.metrics.IncPaymentAction(enums.PaymentMethodGateway.String(), "failure")
		return nil, err
	}
	if gatewaySession.CheckoutURL == "" {
		d.metrics.IncPaymentAction(enums.PaymentMethodGateway.String(), "failure")
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "payment gateway did not return a checkout link")
	}

	d.metrics.IncPaymentAction(enums.PaymentMethodGateway.String(), "success")
	d.publisher.Publish(ctx, sessionID, analytics.EventPaymentInitiated, map[string]any{
		"order_id": order.ID,
		"method":   enums.PaymentMethodGateway.String(),
	})

	return &GatewayResult{
		CheckoutURL: gatewaySession.CheckoutURL,
		Reference:   gatewaySession.Reference,
		Order:       refreshed,
	}, nil
}

// SubmitBankTransfer queues manual transfer evidence. All four proof fields
// are required before anything is sent upstream.
func (d *dispatcher) SubmitBankTransfer(ctx context.Context, sessionID string, proof marketplace.BankTransferProof) (*BankTransferResult, error) {
	session, order, err := d.ensureOrderLoaded(sessionID)
	if err != nil {
		return nil, err
	}
	if err := d.begin(session, enums.PaymentMethodBankTransfer); err != nil {
		return nil, err
	}
	defer session.EndProcessing(enums.PaymentMethodBankTransfer)

	if missing := missingProofFields(proof); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please fill in all bank transfer details").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	receipt, err := d.upstream.SubmitBankTransfer(ctx, order.ID, proof)
	if err != nil {
		d.metrics.IncPaymentAction(enums.PaymentMethodBankTransfer.String(), "failure")
		return nil, err
	}

	refreshed := d.refreshOrder(ctx, session, order.ID)
	d.metrics.IncPaymentAction(enums.PaymentMethodBankTransfer.String(), "success")
	d.publisher.Publish(ctx, sessionID, analytics.EventPaymentInitiated, map[string]any{
		"order_id": order.ID,
		"method":   enums.PaymentMethodBankTransfer.String(),
	})

	return &BankTransferResult{Message: receipt.Message, Order: refreshed}, nil
}

func missingProofFields(proof marketplace.BankTransferProof) []string {
	var missing []string
	if strings.TrimSpace(proof.BankName) == "" {
		missing = append(missing, "bank_name")
	}
	if strings.TrimSpace(proof.AccountNumber) == "" {
		missing = append(missing, "account_number")
	}
	if strings.TrimSpace(proof.TransferDate) == "" {
		missing = append(missing, "transfer_date")
	}
	if strings.TrimSpace(proof.ReferenceNumber) == "" {
		missing = append(missing, "reference_number")
	}
	return missing
}

// ConfirmCashOnDelivery confirms COD and finishes the checkout using the
// order object the confirmation call itself returned, so the success state
// reflects the fresh payment status without racing a re-fetch.
func (d *dispatcher) ConfirmCashOnDelivery(ctx context.Context, sessionID string) (*marketplace.Order, error) {
	session, order, err := d.ensureOrderLoaded(sessionID)
	if err != nil {
		return nil, err
	}
	if err := d.begin(session, enums.PaymentMethodCashOnDelivery); err != nil {
		return nil, err
	}
	defer session.EndProcessing(enums.PaymentMethodCashOnDelivery)

	confirmed, err := d.upstream.ConfirmCashOnDelivery(ctx, order.ID)
	if err != nil {
		d.metrics.IncPaymentAction(enums.PaymentMethodCashOnDelivery.String(), "failure")
		return nil, err
	}

	session.WithLock(func() { session.Order = confirmed })
	d.metrics.IncPaymentAction(enums.PaymentMethodCashOnDelivery.String(), "success")

	return d.finish(ctx, sessionID, confirmed)
}

// Complete moves the session into the success state: an explicitly named
// order is fetched fresh and wins, otherwise the held order is used, and
// with neither the action aborts rather than finishing against nothing.
func (d *dispatcher) Complete(ctx context.Context, sessionID, orderID string) (*marketplace.Order, error) {
	var order *marketplace.Order
	if orderID != "" {
		fetched, err := d.upstream.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		order = fetched
	}
	if order == nil {
		if session := d.sessions.Get(sessionID); session != nil {
			session.WithLock(func() { order = session.Order })
		}
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no order available to complete")
	}

	return d.finish(ctx, sessionID, order)
}

// RefreshOrder is the manual "view order summary" refresh: one fresh read
// of the held order.
func (d *dispatcher) RefreshOrder(ctx context.Context, sessionID string) (*marketplace.Order, error) {
	session, order, err := d.ensureOrderLoaded(sessionID)
	if err != nil {
		return nil, err
	}
	fresh, err := d.upstream.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	session.WithLock(func() { session.Order = fresh })
	return fresh, nil
}

// finish is the single point where the cart's lifecycle ends: every
// successful path into the success state clears it and retires the session.
func (d *dispatcher) finish(ctx context.Context, sessionID string, order *marketplace.Order) (*marketplace.Order, error) {
	if err := d.carts.Clear(ctx, sessionID); err != nil {
		d.logger.Error(d.logger.WithSessionID(ctx, sessionID), "clearing cart after payment", err)
	}
	d.sessions.Drop(sessionID)

	d.publisher.Publish(ctx, sessionID, analytics.EventPaymentConfirmed, map[string]any{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"payment_status": order.PaymentStatus,
	})
	d.logger.Info(d.logger.WithSessionID(d.logger.WithField(ctx, "order_id", order.ID), sessionID), "checkout completed")

	return order, nil
}

package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gebeyalink/storefront/pkg/config"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/google/uuid"
)

// API is the surface the storefront consumes from the marketplace platform.
type API interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
	GetProfile(ctx context.Context, shopperID string) (*Profile, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ConfirmCashOnDelivery(ctx context.Context, orderID string) (*Order, error)
	ValidatePromotion(ctx context.Context, input ValidatePromotionInput) (*PromotionResult, error)
	InitiateTelebirr(ctx context.Context, orderID, phone string) (*TelebirrInitiation, error)
	CreateGatewaySession(ctx context.Context, orderID string) (*GatewaySession, error)
	SubmitBankTransfer(ctx context.Context, orderID string, proof BankTransferProof) (*BankTransferReceipt, error)
}

// Client talks to the marketplace REST API with centralized auth, logging,
// idempotency, and error mapping.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logger.Logger
}

var errBaseURLRequired = errors.New("marketplace base url is required")

// NewClient validates the upstream configuration and builds the client.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing marketplace base url: %w", err)
	}
	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}, nil
}

// Ping verifies the upstream API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, "reach marketplace", false)
}

// GetProduct loads one catalog product.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var product Product
	path := "/api/v1/products/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, path, nil, &product, "load product", false); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProfile loads the shopper's saved profile, including the stored address
// used to pre-seed checkout.
func (c *Client) GetProfile(ctx context.Context, shopperID string) (*Profile, error) {
	var profile Profile
	path := "/api/v1/shoppers/" + url.PathEscape(shopperID)
	if err := c.do(ctx, http.MethodGet, path, nil, &profile, "load profile", false); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateOrder submits the cart snapshot and returns the created order.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", input, &order, "place order", true); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder re-fetches an order from the source of truth.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	path := "/api/v1/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &order, "load order", false); err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmCashOnDelivery confirms COD and returns the order the confirmation
// itself produced, so callers can avoid racing a later re-fetch.
func (c *Client) ConfirmCashOnDelivery(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	path := "/api/v1/orders/" + url.PathEscape(orderID) + "/confirm-cod"
	if err := c.do(ctx, http.MethodPost, path, nil, &order, "confirm cash on delivery", true); err != nil {
		return nil, err
	}
	return &order, nil
}

// ValidatePromotion checks a code against the cart snapshot.
func (c *Client) ValidatePromotion(ctx context.Context, input ValidatePromotionInput) (*PromotionResult, error) {
	var result PromotionResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/promotions/validate", input, &result, "validate promotion", false); err != nil {
		return nil, err
	}
	return &result, nil
}

// InitiateTelebirr requests a mobile-money push to the given phone.
func (c *Client) InitiateTelebirr(ctx context.Context, orderID, phone string) (*TelebirrInitiation, error) {
	payload := map[string]string{"order_id": orderID, "phone": phone}
	var initiation TelebirrInitiation
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments/telebirr/initiate", payload, &initiation, "initiate telebirr payment", true); err != nil {
		return nil, err
	}
	return &initiation, nil
}

// CreateGatewaySession opens a redirect-gateway checkout session.
func (c *Client) CreateGatewaySession(ctx context.Context, orderID string) (*GatewaySession, error) {
	payload := map[string]string{"order_id": orderID}
	var session GatewaySession
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments/chapa/sessions", payload, &session, "create gateway session", true); err != nil {
		return nil, err
	}
	return &session, nil
}

// SubmitBankTransfer queues manual transfer evidence for reconciliation.
func (c *Client) SubmitBankTransfer(ctx context.Context, orderID string, proof BankTransferProof) (*BankTransferReceipt, error) {
	payload := struct {
		OrderID string `json:"order_id"`
		BankTransferProof
	}{OrderID: orderID, BankTransferProof: proof}
	var receipt BankTransferReceipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments/bank-transfers", payload, &receipt, "submit bank transfer", true); err != nil {
		return nil, err
	}
	return &receipt, nil
}

type successEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, action string, idempotent bool) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+action+" request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+action+" request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if idempotent {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"upstream_action": action,
		"upstream_path":   path,
	})

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(ctx, "marketplace request failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action+" failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+action+" response")
	}

	if resp.StatusCode >= 400 {
		err := c.mapUpstreamError(resp.StatusCode, raw, action)
		c.logger.Error(c.logger.WithField(ctx, "upstream_status", resp.StatusCode), "marketplace request rejected", err)
		return err
	}

	if out == nil {
		return nil
	}

	var envelope successEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+action+" response")
	}
	return nil
}

// mapUpstreamError surfaces the backend's human-readable message verbatim
// when one is present, falling back to a generic per-action message.
func (c *Client) mapUpstreamError(status int, raw []byte, action string) error {
	message := action + " failed"
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		} else if envelope.Message != "" {
			message = envelope.Message
		}
	}
	return pkgerrors.New(domainCodeForStatus(status), message)
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeUpstream
		}
		return pkgerrors.CodeDependency
	}
}


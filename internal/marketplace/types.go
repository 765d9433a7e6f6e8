package marketplace

import (
	"time"

	"github.com/gebeyalink/storefront/pkg/enums"
	"github.com/gebeyalink/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// ProductImage is one catalog image candidate.
type ProductImage struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// ShippingPolicy is the per-product shipping snapshot the catalog exposes.
type ShippingPolicy struct {
	FreeShipping bool            `json:"free_shipping"`
	FlatCost     decimal.Decimal `json:"flat_cost"`
}

// Product is the catalog payload the storefront reads when building a cart
// line. Pricing and stock are authoritative upstream.
type Product struct {
	ID           string              `json:"id"`
	Name         types.LocalizedText `json:"name"`
	Category     string              `json:"category"`
	SellerID     string              `json:"seller_id"`
	Price        decimal.Decimal     `json:"price"`
	AvailableQty int                 `json:"available_qty"`
	Images       []ProductImage      `json:"images,omitempty"`
	Thumbnail    string              `json:"thumbnail,omitempty"`
	ImageURL     string              `json:"image_url,omitempty"`
	Image        string              `json:"image,omitempty"`
	Shipping     ShippingPolicy      `json:"shipping"`
}

// ShippingAddress is the wire shape submitted with an order.
type ShippingAddress struct {
	Name             string       `json:"name"`
	Phone            string       `json:"phone"`
	Region           enums.Region `json:"region"`
	City             string       `json:"city"`
	SubCity          string       `json:"sub_city,omitempty"`
	DetailedLocation string       `json:"detailed_location"`
}

// OrderItem is a server-priced order line.
type OrderItem struct {
	ProductID string              `json:"product_id"`
	Name      types.LocalizedText `json:"name"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Quantity  int                 `json:"quantity"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	Image     string              `json:"image,omitempty"`
}

// Order is the marketplace order record. Immutable from the storefront's
// perspective; the only way to observe changes is to re-fetch it.
type Order struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"order_number"`
	Items           []OrderItem         `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	Discount        decimal.Decimal     `json:"discount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Currency        enums.Currency      `json:"currency"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	Status          string              `json:"status"`
	ShippingAddress ShippingAddress     `json:"shipping_address"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// CreateOrderItem is one cart line forwarded on order creation.
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}

// CreateOrderInput is the order creation payload.
type CreateOrderInput struct {
	Items           []CreateOrderItem   `json:"items"`
	ShippingAddress ShippingAddress     `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Notes           string              `json:"notes,omitempty"`
	PromotionID     string              `json:"promotion,omitempty"`
}

// PromotionCartItem is the cart snapshot row sent for promotion validation.
type PromotionCartItem struct {
	ProductID string          `json:"product_id"`
	Category  string          `json:"category"`
	SellerID  string          `json:"seller_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// ValidatePromotionInput carries everything the promotion engine needs.
type ValidatePromotionInput struct {
	Code      string              `json:"code"`
	Items     []PromotionCartItem `json:"items"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	ShopperID string              `json:"shopper_id,omitempty"`
}

// Promotion is the resolved promotion object returned on validation.
type Promotion struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// PromotionResult pairs a validated promotion with the computed discount.
// The discount is trusted as returned; the storefront never recomputes it.
type PromotionResult struct {
	Promotion Promotion       `json:"promotion"`
	Discount  decimal.Decimal `json:"discount"`
}

// TelebirrInitiation is the outcome of a mobile-money push request.
type TelebirrInitiation struct {
	Reference string `json:"reference"`
	DeepLink  string `json:"deep_link,omitempty"`
	Message   string `json:"message,omitempty"`
}

// GatewaySession is the outcome of a redirect-gateway checkout request.
type GatewaySession struct {
	CheckoutURL string `json:"checkout_url"`
	Reference   string `json:"reference,omitempty"`
}

// BankTransferProof is the manual transfer evidence a shopper submits.
type BankTransferProof struct {
	BankName        string `json:"bank_name"`
	AccountNumber   string `json:"account_number"`
	TransferDate    string `json:"transfer_date"`
	ReferenceNumber string `json:"reference_number"`
}

// BankTransferReceipt acknowledges a queued transfer verification.
type BankTransferReceipt struct {
	Message string `json:"message"`
}

// Profile is the authenticated shopper's saved profile.
type Profile struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address ShippingAddress `json:"address"`
}

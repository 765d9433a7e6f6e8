package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/gebeyalink/storefront/internal/cart"
	"github.com/gebeyalink/storefront/internal/marketplace"
	"github.com/gebeyalink/storefront/pkg/analytics"
	"github.com/gebeyalink/storefront/pkg/enums"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/metrics"
	"github.com/shopspring/decimal"
)

// AddressInput is the shipping form submitted at the first wizard step.
type AddressInput struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Region           string `json:"region"`
	City             string `json:"city"`
	SubCity          string `json:"sub_city"`
	DetailedLocation string `json:"detailed_location"`
}

// View is the session snapshot returned to the storefront after every
// checkout operation.
type View struct {
	SessionID     string                       `json:"session_id"`
	Step          enums.CheckoutStep           `json:"step"`
	StepName      string                       `json:"step_name"`
	Address       *marketplace.ShippingAddress `json:"address,omitempty"`
	PaymentMethod enums.PaymentMethod          `json:"payment_method,omitempty"`
	Promotion     *marketplace.Promotion       `json:"promotion,omitempty"`
	Discount      decimal.Decimal              `json:"discount"`
	Order         *marketplace.Order           `json:"order,omitempty"`
	ContactPhone  string                       `json:"contact_phone,omitempty"`
}

// Totals is the checkout money summary: the cart summary with the applied
// promotion discount subtracted from the displayed total.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

type upstream interface {
	GetProfile(ctx context.Context, shopperID string) (*marketplace.Profile, error)
	CreateOrder(ctx context.Context, input marketplace.CreateOrderInput) (*marketplace.Order, error)
	ValidatePromotion(ctx context.Context, input marketplace.ValidatePromotionInput) (*marketplace.PromotionResult, error)
}

// Service sequences the four-step checkout wizard against the cart and the
// marketplace API.
type Service interface {
	Start(ctx context.Context, sessionID, shopperID string) (*View, error)
	Get(ctx context.Context, sessionID string) (*View, error)
	SetAddress(ctx context.Context, sessionID string, input AddressInput) (*View, error)
	SelectPaymentMethod(ctx context.Context, sessionID, method string) (*View, error)
	ApplyPromotion(ctx context.Context, sessionID, code string) (*View, error)
	RemovePromotion(ctx context.Context, sessionID string) (*View, error)
	PlaceOrder(ctx context.Context, sessionID, notes string) (*View, error)
	Totals(ctx context.Context, sessionID string) (*Totals, error)
	Sessions() *Manager
}

type service struct {
	sessions  *Manager
	carts     cart.Service
	upstream  upstream
	logger    *logger.Logger
	metrics   *metrics.StorefrontMetrics
	publisher analytics.Publisher
}

func NewService(sessions *Manager, carts cart.Service, api upstream, logg *logger.Logger, m *metrics.StorefrontMetrics, publisher analytics.Publisher) (Service, error) {
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
	return &service{
		sessions:  sessions,
		carts:     carts,
		upstream:  api,
		logger:    logg,
		metrics:   m,
		publisher: publisher,
	}, nil
}

func (s *service) Sessions() *Manager {
	return s.sessions
}

// Start opens (or resumes) the wizard. Authenticated shoppers get the
// address form pre-seeded from their saved profile; a profile lookup failure
// just skips the pre-seed.
func (s *service) Start(ctx context.Context, sessionID, shopperID string) (*View, error) {
	session := s.sessions.GetOrCreate(sessionID, shopperID)

	if shopperID != "" {
		session.mu.Lock()
		needSeed := session.Step == enums.CheckoutStepAddress && session.Address == (marketplace.ShippingAddress{})
		session.mu.Unlock()
		if needSeed {
			if profile, err := s.upstream.GetProfile(ctx, shopperID); err == nil && profile != nil {
				session.WithLock(func() {
					session.Address = profile.Address
					if session.Address.Phone == "" {
						session.Address.Phone = profile.Phone
					}
					if session.Address.Name == "" {
						session.Address.Name = profile.Name
					}
				})
			} else if err != nil {
				s.logger.Warn(s.logger.WithShopperID(ctx, shopperID), "profile pre-seed skipped")
			}
		}
	}

	return snapshot(session), nil
}

func (s *service) Get(_ context.Context, sessionID string) (*View, error) {
	session := s.sessions.Get(sessionID)
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	return snapshot(session), nil
}

// SetAddress validates the shipping form. A missing required field keeps the
// wizard at the address step and reports which fields are missing.
func (s *service) SetAddress(ctx context.Context, sessionID string, input AddressInput) (*View, error) {
	session := s.sessions.Get(sessionID)
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}

	missing := missingAddressFields(input)
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please fill in all required address fields").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	region := enums.Region(strings.TrimSpace(input.Region))
	if input.Region != "" && !region.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery region")
	}

	session.WithLock(func() {
		session.Address = marketplace.ShippingAddress{
			Name:             strings.TrimSpace(input.Name),
			Phone:            strings.TrimSpace(input.Phone),
			Region:           region,
			City:             strings.TrimSpace(input.City),
			SubCity:          strings.TrimSpace(input.SubCity),
			DetailedLocation: strings.TrimSpace(input.DetailedLocation),
		}
		if session.Step == enums.CheckoutStepAddress {
			session.Step = enums.CheckoutStepPaymentMethod
		}
	})

	return snapshot(session), nil
}

func missingAddressFields(input AddressInput) []string {
	var missing []string
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(input.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(input.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(input.DetailedLocation) == "" {
		missing = append(missing, "detailed_location")
	}
	return missing
}

func (s *service) SelectPaymentMethod(_ context.Context, sessionID, method string) (*View, error) {
	session := s.sessions.Get(sessionID)
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}

	parsed, err := enums.ParsePaymentMethod(method)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please choose a payment method")
	}

	session.WithLock(func() {
		session.PaymentMethod = parsed
		if session.Step == enums.CheckoutStepPaymentMethod {
			session.Step = enums.CheckoutStepPlaceOrder
		}
	})

	return snapshot(session), nil
}

// ApplyPromotion validates a code against the current cart snapshot. The
// returned discount is trusted as-is; a rejection leaves no promotion
// applied.
func (s *service) ApplyPromotion(ctx context.Context, sessionID, code string) (*View, error) {
	session := s.sessions.Get(sessionID)
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion code is required")
	}

	view, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]marketplace.PromotionCartItem, 0, len(view.Cart.Items))
	for _, line := range view.Cart.Items {
		items = append(items, marketplace.PromotionCartItem{
			ProductID: line.ProductID,
			Category:  line.Category,
			SellerID:  line.SellerID,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	result, err := s.upstream.ValidatePromotion(ctx, marketplace.ValidatePromotionInput{
		Code:      code,
		Items:     items,
		Subtotal:  view.Summary.Subtotal,
		ShopperID: session.ShopperID,
	})
	if err != nil {
		return nil, err
	}

	session.WithLock(func() {
		promotion := result.Promotion
		session.Promotion = &promotion
		session.Discount = result.Discount
	})
	s.logger.Info(s.logger.WithSessionID(ctx, sessionID), "promotion applied")

	return snapshot(session), nil
}

// RemovePromotion clears the applied promotion unconditionally.
func (s *service) RemovePromotion(_ context.Context, sessionID string) (*View, error) {
	session := s.sessions.Get(sessionID)
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}

	session.WithLock(func() {
		session.Promotion = nil
		session.Discount = decimal.Zero
	})

	return snapshot(session), nil
}

// PlaceOrder submits the cart to the marketplace. Success advances to the
// payment step carrying the created order, method, and contact phone; a
// rejection leaves the wizard where it is.
func (s *service) PlaceOrder(ctx context.Context, sessionID, notes string) (*View, error) {
	session := s.sessions.Get(sessionID)
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}

	var (
		address   marketplace.ShippingAddress
		method    enums.PaymentMethod
		promotion string
	)
	session.WithLock(func() {
		address = session.Address
		method = session.PaymentMethod
		if session.Promotion != nil {
			promotion = session.Promotion.ID
		}
	})

	if len(missingAddressFields(AddressInput{
		Name:             address.Name,
		Phone:            address.Phone,
		City:             address.City,
		DetailedLocation: address.DetailedLocation,
	})) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please choose a payment method")
	}

	view, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]marketplace.CreateOrderItem, 0, len(view.Cart.Items))
	for _, line := range view.Cart.Items {
		items = append(items, marketplace.CreateOrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
	}

	order, err := s.upstream.CreateOrder(ctx, marketplace.CreateOrderInput{
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   method,
		Notes:           strings.TrimSpace(notes),
		PromotionID:     promotion,
	})
	if err != nil {
		s.metrics.IncOrderPlaced("failure")
		return nil, err
	}

	session.WithLock(func() {
		session.Order = order
		session.Notes = strings.TrimSpace(notes)
		session.ContactPhone = address.Phone
		session.Step = enums.CheckoutStepPayment
	})

	s.metrics.IncOrderPlaced("success")
	s.publisher.Publish(ctx, sessionID, analytics.EventCartConverted, map[string]any{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"payment_method": method.String(),
		"total":          order.TotalAmount,
	})
	s.logger.Info(s.logger.WithSessionID(s.logger.WithField(ctx, "order_id", order.ID), sessionID), "order placed")

	return snapshot(session), nil
}

// Totals returns the cart summary with the promotion discount applied to
// the displayed total.
func (s *service) Totals(ctx context.Context, sessionID string) (*Totals, error) {
	view, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if session := s.sessions.Get(sessionID); session != nil {
		session.WithLock(func() {
			discount = session.Discount
		})
	}

	return &Totals{
		Subtotal:   view.Summary.Subtotal,
		Shipping:   view.Summary.Shipping,
		Discount:   discount,
		Total:      view.Summary.Total.Sub(discount),
		ItemsCount: view.Summary.ItemsCount,
	}, nil
}

func snapshot(session *Session) *View {
	view := &View{}
	session.WithLock(func() {
		view.SessionID = session.ID
		view.Step = session.Step
		view.StepName = session.Step.String()
		view.PaymentMethod = session.PaymentMethod
		view.Promotion = session.Promotion
		view.Discount = session.Discount
		view.Order = session.Order
		view.ContactPhone = session.ContactPhone
		if session.Address != (marketplace.ShippingAddress{}) {
			address := session.Address
			view.Address = &address
		}
	})
	return view
}

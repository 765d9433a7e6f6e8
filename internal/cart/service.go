package cart

import (
	"context"
	"fmt"

	"github.com/gebeyalink/storefront/internal/marketplace"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/metrics"
)

// View pairs the cart lines with their derived money summary.
type View struct {
	Cart    *Cart   `json:"cart"`
	Summary Summary `json:"summary"`
}

// Service is the cart state machine. Every mutation is written through to
// the snapshot store before it is returned, so a restarted storefront picks
// up where the shopper left off.
type Service interface {
	Get(ctx context.Context, sessionID string) (*View, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) (*View, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*View, error)
	Remove(ctx context.Context, sessionID, productID string) (*View, error)
	Clear(ctx context.Context, sessionID string) error
}

type productLoader interface {
	GetProduct(ctx context.Context, productID string) (*marketplace.Product, error)
}

type service struct {
	store       Store
	products    productLoader
	placeholder string
	logger      *logger.Logger
	metrics     *metrics.StorefrontMetrics
}

func NewService(store Store, products productLoader, placeholderImage string, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:       store,
		products:    products,
		placeholder: placeholderImage,
		logger:      logg,
		metrics:     m,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*View, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(cart), nil
}

func (s *service) Add(ctx context.Context, sessionID, productID string, quantity int) (*View, error) {
	if quantity <= 0 {
		quantity = 1
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if line := cart.Find(productID); line != nil {
		// Repeat add keeps the price locked at first-add time but refreshes
		// the shipping snapshot from the catalog. Stock limits are the
		// marketplace's to enforce at order placement.
		line.Quantity += quantity
		line.Shipping = product.Shipping
	} else {
		cart.Items = append(cart.Items, LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Category:  product.Category,
			SellerID:  product.SellerID,
			UnitPrice: product.Price,
			Quantity:  quantity,
			Image:     ResolveImage(product, s.placeholder),
			Shipping:  product.Shipping,
		})
	}

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("add")
	s.logger.Info(s.logger.WithSessionID(s.logger.WithField(ctx, "product_id", productID), sessionID), "cart item added")
	return view(cart), nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*View, error) {
	if quantity <= 0 {
		return s.Remove(ctx, sessionID, productID)
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := cart.Find(productID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
	}
	line.Quantity = quantity

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("update_quantity")
	return view(cart), nil
}

func (s *service) Remove(ctx context.Context, sessionID, productID string) (*View, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("remove")
	return view(cart), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.metrics.IncCartMutation("clear")
	s.logger.Info(s.logger.WithSessionID(ctx, sessionID), "cart cleared")
	return nil
}

func view(cart *Cart) *View {
	return &View{Cart: cart, Summary: cart.Summarize()}
}

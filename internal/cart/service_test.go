package cart

import (
	"context"
	"testing"

	"github.com/gebeyalink/storefront/internal/marketplace"
	pkgerrors "github.com/gebeyalink/storefront/pkg/errors"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	carts map[string]*Cart
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: map[string]*Cart{}}
}

func (m *memoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	if cart, ok := m.carts[sessionID]; ok {
		return cart, nil
	}
	return &Cart{}, nil
}

func (m *memoryStore) Save(_ context.Context, sessionID string, cart *Cart) error {
	m.carts[sessionID] = cart
	return nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type stubCatalog struct {
	products map[string]*marketplace.Product
}

func (s *stubCatalog) GetProduct(_ context.Context, productID string) (*marketplace.Product, error) {
	if product, ok := s.products[productID]; ok {
		return product, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func coffeeBeans() *marketplace.Product {
	return &marketplace.Product{
		ID:           "prod-1",
		Name:         types.LocalizedText{"en": "Coffee Beans"},
		Price:        decimal.NewFromInt(500),
		AvailableQty: 10,
		Shipping: marketplace.ShippingPolicy{
			FreeShipping: false,
			FlatCost:     decimal.NewFromInt(50),
		},
	}
}

func newCartService(t *testing.T, catalog *stubCatalog) (Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	svc, err := NewService(store, catalog, "https://cdn.example.com/placeholder.png", logger.New(logger.Options{ServiceName: "test"}), nil)
	require.NoError(t, err)
	return svc, store
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test"})
	catalog := &stubCatalog{products: map[string]*marketplace.Product{}}

	_, err := NewService(nil, catalog, "", logg, nil)
	assert.Error(t, err)

	_, err = NewService(newMemoryStore(), nil, "", logg, nil)
	assert.Error(t, err)

	_, err = NewService(newMemoryStore(), catalog, "", nil, nil)
	assert.Error(t, err)
}

func TestAddProducesExpectedSummary(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{"prod-1": coffeeBeans()}}
	svc, _ := newCartService(t, catalog)

	result, err := svc.Add(context.Background(), "sess-1", "prod-1", 1)
	require.NoError(t, err)

	assert.True(t, result.Summary.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Summary.Shipping.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Summary.Total.Equal(decimal.NewFromInt(550)))
	assert.Equal(t, 1, result.Summary.ItemsCount)
}

func TestAddSameProductMergesQuantity(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{"prod-1": coffeeBeans()}}
	svc, _ := newCartService(t, catalog)

	_, err := svc.Add(context.Background(), "sess-1", "prod-1", 2)
	require.NoError(t, err)
	result, err := svc.Add(context.Background(), "sess-1", "prod-1", 2)
	require.NoError(t, err)

	require.Len(t, result.Cart.Items, 1, "the cart must never hold duplicate product lines")
	assert.Equal(t, 4, result.Cart.Items[0].Quantity)
}

func TestRepeatAddKeepsLockedPriceButRefreshesShipping(t *testing.T) {
	product := coffeeBeans()
	catalog := &stubCatalog{products: map[string]*marketplace.Product{"prod-1": product}}
	svc, _ := newCartService(t, catalog)

	_, err := svc.Add(context.Background(), "sess-1", "prod-1", 1)
	require.NoError(t, err)

	// Catalog price and shipping both change between adds.
	product.Price = decimal.NewFromInt(900)
	product.Shipping.FlatCost = decimal.NewFromInt(75)

	result, err := svc.Add(context.Background(), "sess-1", "prod-1", 1)
	require.NoError(t, err)

	line := result.Cart.Items[0]
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(500)), "unit price stays locked at first-add time")
	assert.True(t, line.Shipping.FlatCost.Equal(decimal.NewFromInt(75)), "shipping snapshot refreshes on repeat add")
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{"prod-1": coffeeBeans()}}
	svc, _ := newCartService(t, catalog)

	_, err := svc.Add(context.Background(), "sess-1", "prod-1", 2)
	require.NoError(t, err)

	result, err := svc.UpdateQuantity(context.Background(), "sess-1", "prod-1", 0)
	require.NoError(t, err)
	assert.True(t, result.Cart.IsEmpty())

	result, err = svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, result.Cart.IsEmpty(), "removal persists across reads")
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{}}
	svc, _ := newCartService(t, catalog)

	_, err := svc.UpdateQuantity(context.Background(), "sess-1", "missing", 3)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRemoveAbsentProductIsNoOp(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{"prod-1": coffeeBeans()}}
	svc, _ := newCartService(t, catalog)

	_, err := svc.Add(context.Background(), "sess-1", "prod-1", 1)
	require.NoError(t, err)

	result, err := svc.Remove(context.Background(), "sess-1", "other")
	require.NoError(t, err)
	assert.Len(t, result.Cart.Items, 1)
}

func TestAddUnknownProductFails(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{}}
	svc, _ := newCartService(t, catalog)

	_, err := svc.Add(context.Background(), "sess-1", "missing", 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestClearDropsSnapshot(t *testing.T) {
	catalog := &stubCatalog{products: map[string]*marketplace.Product{"prod-1": coffeeBeans()}}
	svc, store := newCartService(t, catalog)

	_, err := svc.Add(context.Background(), "sess-1", "prod-1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "sess-1"))
	assert.Empty(t, store.carts)
}

func TestSummaryInvariants(t *testing.T) {
	t.Parallel()

	cart := &Cart{Items: []LineItem{
		{
			ProductID: "a",
			UnitPrice: decimal.NewFromInt(100),
			Quantity:  2,
			Shipping:  marketplace.ShippingPolicy{FlatCost: decimal.NewFromInt(25)},
		},
		{
			ProductID: "b",
			UnitPrice: decimal.NewFromInt(40),
			Quantity:  3,
			Shipping:  marketplace.ShippingPolicy{FreeShipping: true, FlatCost: decimal.NewFromInt(30)},
		},
		{
			ProductID: "c",
			UnitPrice: decimal.NewFromInt(10),
			Quantity:  1,
			Shipping:  marketplace.ShippingPolicy{FlatCost: decimal.Zero},
		},
	}}

	summary := cart.Summarize()

	assert.True(t, summary.Total.Equal(summary.Subtotal.Add(summary.Shipping)))
	assert.True(t, summary.Subtotal.Equal(decimal.NewFromInt(330)))
	// Free-shipping and zero-cost lines contribute nothing.
	assert.True(t, summary.Shipping.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 6, summary.ItemsCount)
}

func TestResolveImagePriority(t *testing.T) {
	t.Parallel()

	placeholder := "https://cdn.example.com/placeholder.png"

	product := &marketplace.Product{
		Images: []marketplace.ProductImage{
			{URL: "secondary.png"},
			{URL: "primary.png", IsPrimary: true},
		},
		Thumbnail: "thumb.png",
		ImageURL:  "image-url.png",
		Image:     "image.png",
	}
	assert.Equal(t, "primary.png", ResolveImage(product, placeholder))

	product.Images[1].IsPrimary = false
	assert.Equal(t, "secondary.png", ResolveImage(product, placeholder))

	product.Images = nil
	assert.Equal(t, "thumb.png", ResolveImage(product, placeholder))

	product.Thumbnail = ""
	assert.Equal(t, "image-url.png", ResolveImage(product, placeholder))

	product.ImageURL = ""
	assert.Equal(t, "image.png", ResolveImage(product, placeholder))

	product.Image = ""
	assert.Equal(t, placeholder, ResolveImage(product, placeholder))

	assert.Equal(t, placeholder, ResolveImage(nil, placeholder))
}

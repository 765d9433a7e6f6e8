package cart

import (
	"context"
	"testing"

	"github.com/gebeyalink/storefront/internal/marketplace"
	"github.com/gebeyalink/storefront/pkg/config"
	"github.com/gebeyalink/storefront/pkg/db"
	"github.com/gebeyalink/storefront/pkg/logger"
	"github.com/gebeyalink/storefront/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() *Cart {
	return &Cart{Items: []LineItem{
		{
			ProductID: "prod-1",
			Name:      types.LocalizedText{"en": "Coffee Beans", "am": "ቡና"},
			UnitPrice: decimal.NewFromInt(500),
			Quantity:  2,
			Image:     "https://cdn.example.com/coffee.png",
			Shipping:  marketplace.ShippingPolicy{FlatCost: decimal.NewFromInt(50)},
		},
	}}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	original := sampleCart()
	payload, err := encodeCart(original)
	require.NoError(t, err)

	decoded, ok := decodeCart(payload)
	require.True(t, ok)
	require.Len(t, decoded.Items, 1)

	line := decoded.Items[0]
	assert.Equal(t, "prod-1", line.ProductID)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "ቡና", line.Name.Resolve("am"))
	assert.True(t, decoded.Summarize().Total.Equal(original.Summarize().Total))
}

func TestDecodeCartDiscardsCorruptPayload(t *testing.T) {
	t.Parallel()

	_, ok := decodeCart([]byte(`{not json`))
	assert.False(t, ok)

	_, ok = decodeCart([]byte(`{"version":99,"cart":{"items":[]}}`))
	assert.False(t, ok, "snapshots from another envelope version are discarded")

	_, ok = decodeCart([]byte(`{"version":1}`))
	assert.False(t, ok)
}

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()

	client, err := db.New(context.Background(), config.StoreConfig{
		Backend: config.StoreBackendSQL,
		Driver:  "sqlite",
		DSN:     "file:" + t.Name() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewSQLStore(client, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	return store
}

func TestSQLStoreRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	// Missing sessions load as empty carts.
	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())

	require.NoError(t, store.Save(ctx, "sess-1", sampleCart()))

	loaded, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "prod-1", loaded.Items[0].ProductID)

	// Saving again overwrites rather than duplicating.
	updated := sampleCart()
	updated.Items[0].Quantity = 5
	require.NoError(t, store.Save(ctx, "sess-1", updated))

	loaded, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Items[0].Quantity)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	loaded, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestSQLStoreDiscardsUnreadableSnapshot(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	row := CartSnapshot{SessionID: "sess-bad", Payload: []byte(`{"version":99}`)}
	require.NoError(t, store.client.DB().Create(&row).Error)

	loaded, err := store.Load(ctx, "sess-bad")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

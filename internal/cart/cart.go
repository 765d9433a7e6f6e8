package cart

import (
	"github.com/gebeyalink/storefront/internal/marketplace"
	"github.com/gebeyalink/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. UnitPrice and Shipping are snapshots
// taken when the product was first added; repeat adds keep the locked price
// but refresh the shipping snapshot from the catalog.
type LineItem struct {
	ProductID string                     `json:"product_id"`
	Name      types.LocalizedText        `json:"name"`
	Category  string                     `json:"category,omitempty"`
	SellerID  string                     `json:"seller_id,omitempty"`
	UnitPrice decimal.Decimal            `json:"unit_price"`
	Quantity  int                        `json:"quantity"`
	Image     string                     `json:"image"`
	Shipping  marketplace.ShippingPolicy `json:"shipping"`
}

// Subtotal is the line contribution: locked unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShippingCost is the line's shipping contribution: flat cost per unit,
// charged at least once even when quantity is zero. Free shipping and zero
// flat cost both contribute nothing.
func (li LineItem) ShippingCost() decimal.Decimal {
	if li.Shipping.FreeShipping {
		return decimal.Zero
	}
	units := li.Quantity
	if units < 1 {
		units = 1
	}
	return li.Shipping.FlatCost.Mul(decimal.NewFromInt(int64(units)))
}

// Cart holds one session's line items in insertion order. At most one line
// exists per product id.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Summary is the derived money view of a cart.
type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// Find returns a pointer to the line holding productID, or nil.
func (c *Cart) Find(productID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Remove drops the line holding productID. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Summarize recomputes subtotal, shipping, total, and the unit count from
// the lines. Total is always subtotal plus shipping.
func (c *Cart) Summarize() Summary {
	summary := Summary{
		Subtotal: decimal.Zero,
		Shipping: decimal.Zero,
	}
	for _, item := range c.Items {
		summary.Subtotal = summary.Subtotal.Add(item.Subtotal())
		summary.Shipping = summary.Shipping.Add(item.ShippingCost())
		summary.ItemsCount += item.Quantity
	}
	summary.Total = summary.Subtotal.Add(summary.Shipping)
	return summary
}

package cart

import "github.com/gebeyalink/storefront/internal/marketplace"

// ResolveImage picks the display image for a cart line. Catalog products
// expose several optional image fields; the first populated one wins, in
// priority order, before falling back to the configured placeholder.
func ResolveImage(product *marketplace.Product, placeholder string) string {
	if product == nil {
		return placeholder
	}
	for _, img := range product.Images {
		if img.IsPrimary && img.URL != "" {
			return img.URL
		}
	}
	for _, img := range product.Images {
		if img.URL != "" {
			return img.URL
		}
	}
	if product.Thumbnail != "" {
		return product.Thumbnail
	}
	if product.ImageURL != "" {
		return product.ImageURL
	}
	if product.Image != "" {
		return product.Image
	}
	return placeholder
}

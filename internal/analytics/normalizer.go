package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sneakshop-lab/sneakshop/internal/experiment"
)

// HomeListID and HomeListName identify the featured-products list on the
// home page.
const (
	HomeListID   = "homepage_products"
	HomeListName = "Produtos em Destaque"
)

// Normalizer maps domain actions into canonical envelopes for one visitor.
// It stamps the visitor's variant and the store currency on every envelope;
// callers never set either directly.
type Normalizer struct {
	Variant  experiment.Variant
	Currency string

	// Now is injectable for deterministic tests.
	Now func() time.Time
}

// NewNormalizer builds a normalizer for one request's variant.
func NewNormalizer(variant experiment.Variant, currency string) *Normalizer {
	return &Normalizer{Variant: variant, Currency: currency, Now: time.Now}
}

// Normalize builds a canonical envelope for a vocabulary event. It rejects
// unknown event names and payloads missing (or carrying empty) required
// attributes.
func (n *Normalizer) Normalize(name string, params map[string]any) (*Envelope, error) {
	required, ok := requiredParams[name]
	if !ok {
		return nil, &ValidationError{Event: name}
	}
	for _, field := range required {
		v, ok := params[field]
		if !ok || isEmpty(v) {
			return nil, &ValidationError{Event: name, Field: field}
		}
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return &Envelope{
		Name:      name,
		Params:    params,
		EmittedAt: now().UTC(),
		Variant:   n.Variant,
	}, nil
}

// ViewItemList records a product list impression.
func (n *Normalizer) ViewItemList(listID, listName string, items []Item) (*Envelope, error) {
	return n.Normalize(EventViewItemList, map[string]any{
		"item_list_id":   listID,
		"item_list_name": listName,
		"items":          items,
	})
}

// SelectItem records a click on a product inside a list.
func (n *Normalizer) SelectItem(listID, listName string, items []Item) (*Envelope, error) {
	return n.Normalize(EventSelectItem, map[string]any{
		"item_list_id":   listID,
		"item_list_name": listName,
		"items":          items,
	})
}

// ViewItem records a product detail view. Value derives from the first item's
// price, matching how the storefront reported it before the port.
func (n *Normalizer) ViewItem(items []Item) (*Envelope, error) {
	value := 0.0
	if len(items) > 0 {
		value = items[0].Price
	}
	return n.Normalize(EventViewItem, map[string]any{
		"currency": n.Currency,
		"value":    value,
		"items":    items,
	})
}

// AddToCart records items entering the cart with their combined value.
func (n *Normalizer) AddToCart(items []Item, value decimal.Decimal) (*Envelope, error) {
	return n.valueEvent(EventAddToCart, items, value)
}

// ViewCart records a cart page view.
func (n *Normalizer) ViewCart(items []Item, value decimal.Decimal) (*Envelope, error) {
	return n.valueEvent(EventViewCart, items, value)
}

// BeginCheckout records the start of checkout.
func (n *Normalizer) BeginCheckout(items []Item, value decimal.Decimal) (*Envelope, error) {
	return n.valueEvent(EventBeginCheckout, items, value)
}

// Purchase records a completed order.
func (n *Normalizer) Purchase(transactionID string, items []Item, value, tax, shipping decimal.Decimal) (*Envelope, error) {
	return n.Normalize(EventPurchase, map[string]any{
		"transaction_id": transactionID,
		"currency":       n.Currency,
		"value":          value.InexactFloat64(),
		"tax":            tax.InexactFloat64(),
		"shipping":       shipping.InexactFloat64(),
		"items":          items,
	})
}

// PageView records a top-level navigation.
func (n *Normalizer) PageView(title, location, path string) (*Envelope, error) {
	return n.Normalize(EventPageView, map[string]any{
		"page_title":    title,
		"page_location": location,
		"page_path":     path,
	})
}

func (n *Normalizer) valueEvent(name string, items []Item, value decimal.Decimal) (*Envelope, error) {
	return n.Normalize(name, map[string]any{
		"currency": n.Currency,
		"value":    value.InexactFloat64(),
		"items":    items,
	})
}

// isEmpty treats nil, empty strings and empty item lists as absent. A zero
// numeric value is valid (a free order is still an order).
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []Item:
		return len(val) == 0
	}
	return false
}

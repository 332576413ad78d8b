package analytics

import (
	"time"

	"github.com/sneakshop-lab/sneakshop/internal/experiment"
)

// The event vocabulary is closed. The normalizer refuses anything else.
const (
	EventViewItemList  = "view_item_list"
	EventSelectItem    = "select_item"
	EventViewItem      = "view_item"
	EventAddToCart     = "add_to_cart"
	EventViewCart      = "view_cart"
	EventBeginCheckout = "begin_checkout"
	EventPurchase      = "purchase"
	EventPageView      = "page_view"
)

// requiredParams lists the attributes an envelope must carry per event name.
var requiredParams = map[string][]string{
	EventViewItemList:  {"item_list_id", "item_list_name", "items"},
	EventSelectItem:    {"item_list_id", "item_list_name", "items"},
	EventViewItem:      {"currency", "value", "items"},
	EventAddToCart:     {"currency", "value", "items"},
	EventViewCart:      {"currency", "value", "items"},
	EventBeginCheckout: {"currency", "value", "items"},
	EventPurchase:      {"transaction_id", "currency", "value", "tax", "shipping", "items"},
	EventPageView:      {"page_title", "page_location", "page_path"},
}

// Item is the flattened projection of a product inside an event payload,
// shaped for GA4 e-commerce reporting.
type Item struct {
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name"`
	ItemCategory string  `json:"item_category"`
	ItemBrand    string  `json:"item_brand"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

// Envelope is the canonical, variant-tagged form of a domain event. It is
// immutable once built; one envelope is one dispatch attempt.
type Envelope struct {
	Name      string
	Params    map[string]any
	EmittedAt time.Time
	Variant   experiment.Variant
}

package cart

import "github.com/shopspring/decimal"

// LineItem is one cart entry. ID plus Size forms the merge key: adding a key
// that already exists bumps the quantity instead of duplicating the line.
type LineItem struct {
	ID       string          `json:"id"`
	Size     string          `json:"size,omitempty"`
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Brand    string          `json:"brand"`
	Quantity int             `json:"quantity"`
}

// Add merges item into items by ID+Size, preserving line order. Quantities
// below 1 count as 1.
func Add(items []LineItem, item LineItem, qty int) []LineItem {
	if qty < 1 {
		qty = 1
	}
	for i := range items {
		if items[i].ID == item.ID && items[i].Size == item.Size {
			items[i].Quantity += qty
			return items
		}
	}
	item.Quantity = qty
	return append(items, item)
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
func UpdateQuantity(items []LineItem, id, size string, qty int) []LineItem {
	if qty <= 0 {
		return Remove(items, id, size)
	}
	for i := range items {
		if items[i].ID == id && items[i].Size == size {
			items[i].Quantity = qty
		}
	}
	return items
}

// Remove drops the line with the given key, keeping the order of the rest.
func Remove(items []LineItem, id, size string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ID == id && it.Size == size {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ItemCount sums quantities across lines.
func ItemCount(items []LineItem) int {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count
}

// TotalValue sums price times quantity. Derived on demand, never stored, so
// it cannot drift from the lines.
func TotalValue(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

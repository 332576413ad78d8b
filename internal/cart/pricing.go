package cart

import "github.com/shopspring/decimal"

// Pricing holds the storefront's checkout pricing rules.
type Pricing struct {
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
}

// DefaultPricing mirrors the store's standing rule: free shipping strictly
// above 200.00, otherwise a flat 15.99.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingOver: decimal.NewFromInt(200),
		ShippingFee:      decimal.RequireFromString("15.99"),
	}
}

// Shipping returns the shipping cost for a cart total.
func (p Pricing) Shipping(total decimal.Decimal) decimal.Decimal {
	if total.GreaterThan(p.FreeShippingOver) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// Tax is fixed at zero for this store.
func (p Pricing) Tax(total decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

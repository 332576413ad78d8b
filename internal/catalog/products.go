package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/sneakshop-lab/sneakshop/internal/analytics"
)

// Product is one catalog entry. The inventory is a fixed seed list: catalog
// management lives outside this system, the storefront only needs stable
// data to drive events with.
type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Sizes       []string        `json:"sizes"`
	InStock     bool            `json:"in_stock"`
}

var products = []Product{
	{
		ID:          "1",
		Slug:        "air-max-revolution",
		Name:        "Air Max Revolution",
		Price:       decimal.RequireFromString("299.99"),
		Image:       "/placeholder-sneaker-1.jpg",
		Category:    "Running",
		Brand:       "SportMax",
		Description: "Tênis de corrida com tecnologia de amortecimento avançada e design moderno.",
		Sizes:       []string{"38", "39", "40", "41", "42", "43", "44"},
		InStock:     true,
	},
	{
		ID:          "2",
		Slug:        "urban-street-classic",
		Name:        "Urban Street Classic",
		Price:       decimal.RequireFromString("199.99"),
		Image:       "/placeholder-sneaker-2.jpg",
		Category:    "Casual",
		Brand:       "StreetWear",
		Description: "Tênis casual urbano com estilo vintage e conforto para o dia a dia.",
		Sizes:       []string{"37", "38", "39", "40", "41", "42", "43"},
		InStock:     true,
	},
	{
		ID:          "3",
		Slug:        "pro-basketball-elite",
		Name:        "Pro Basketball Elite",
		Price:       decimal.RequireFromString("399.99"),
		Image:       "/placeholder-sneaker-3.jpg",
		Category:    "Basketball",
		Brand:       "CourtKing",
		Description: "Tênis de basquete profissional com suporte superior e tração excepcional.",
		Sizes:       []string{"39", "40", "41", "42", "43", "44", "45"},
		InStock:     true,
	},
	{
		ID:          "4",
		Slug:        "eco-runner-sustainable",
		Name:        "Eco Runner Sustainable",
		Price:       decimal.RequireFromString("249.99"),
		Image:       "/placeholder-sneaker-4.jpg",
		Category:    "Running",
		Brand:       "GreenStep",
		Description: "Tênis ecológico feito com materiais reciclados, perfeito para corredores conscientes.",
		Sizes:       []string{"36", "37", "38", "39", "40", "41", "42"},
		InStock:     false,
	},
}

// All returns the full inventory.
func All() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Available returns the products currently in stock.
func Available() []Product {
	var out []Product
	for _, p := range products {
		if p.InStock {
			out = append(out, p)
		}
	}
	return out
}

// BySlug looks a product up by its URL slug.
func BySlug(slug string) (Product, bool) {
	for _, p := range products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}

// ByID looks a product up by its catalog ID.
func ByID(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Item flattens a product into the event payload item shape.
func Item(p Product, quantity int) analytics.Item {
	return analytics.Item{
		ItemID:       p.ID,
		ItemName:     p.Name,
		ItemCategory: p.Category,
		ItemBrand:    p.Brand,
		Price:        p.Price.InexactFloat64(),
		Quantity:     quantity,
	}
}

package storefront

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sneakshop-lab/sneakshop/internal/analytics"
	"github.com/sneakshop-lab/sneakshop/internal/cart"
	"github.com/sneakshop-lab/sneakshop/internal/catalog"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ListProductsHandler serves the home page's product list.
func (s *Service) ListProductsHandler(c *gin.Context) {
	products := catalog.Available()
	items := make([]analytics.Item, 0, len(products))
	for _, p := range products {
		items = append(items, catalog.Item(p, 1))
	}

	s.track(c, "Loja de Tênis", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.PageView("Loja de Tênis", pageURL(c.Request), c.Request.URL.Path)
	})
	s.track(c, "Loja de Tênis", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.ViewItemList(analytics.HomeListID, analytics.HomeListName, items)
	})

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ProductHandler serves a product detail page. ?from=list marks a navigation
// that originated as a click inside the home list.
func (s *Service) ProductHandler(c *gin.Context) {
	p, ok := catalog.BySlug(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	items := []analytics.Item{catalog.Item(p, 1)}

	s.track(c, p.Name, func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.PageView(p.Name, pageURL(c.Request), c.Request.URL.Path)
	})
	if c.Query("from") == "list" {
		s.track(c, p.Name, func(n *analytics.Normalizer) (*analytics.Envelope, error) {
			return n.SelectItem(analytics.HomeListID, analytics.HomeListName, items)
		})
	}
	s.track(c, p.Name, func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.ViewItem(items)
	})

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// ViewCartHandler serves the cart page with its derived totals.
func (s *Service) ViewCartHandler(c *gin.Context) {
	items := s.carts.Load(c.Request)
	total := cart.TotalValue(items)
	shipping := s.pricing.Shipping(total)
	tax := s.pricing.Tax(total)

	s.track(c, "Carrinho", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.PageView("Carrinho", pageURL(c.Request), c.Request.URL.Path)
	})
	if len(items) > 0 {
		s.track(c, "Carrinho", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
			return n.ViewCart(eventItems(items), total)
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"item_count":  cart.ItemCount(items),
		"total_value": total,
		"shipping":    shipping,
		"tax":         tax,
		"final_total": total.Add(shipping).Add(tax),
	})
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// AddToCartHandler adds a product to the cart, merging by product+size.
func (s *Service) AddToCartHandler(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, ok := catalog.ByID(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if !p.InStock {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product out of stock"})
		return
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	items := s.carts.Load(c.Request)
	items = cart.Add(items, cart.LineItem{
		ID:       p.ID,
		Size:     req.Size,
		Slug:     p.Slug,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Brand:    p.Brand,
	}, qty)
	s.carts.Save(c.Writer, items)

	value := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	s.track(c, p.Name, func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.AddToCart([]analytics.Item{catalog.Item(p, qty)}, value)
	})

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"item_count": cart.ItemCount(items),
	})
}

type updateQuantityRequest struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// UpdateQuantityHandler sets a line's quantity; zero or below removes it.
func (s *Service) UpdateQuantityHandler(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	items := s.carts.Load(c.Request)
	items = cart.UpdateQuantity(items, c.Param("id"), req.Size, req.Quantity)
	s.carts.Save(c.Writer, items)

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"item_count": cart.ItemCount(items),
	})
}

// RemoveItemHandler drops a line from the cart.
func (s *Service) RemoveItemHandler(c *gin.Context) {
	items := s.carts.Load(c.Request)
	items = cart.Remove(items, c.Param("id"), c.Query("size"))
	s.carts.Save(c.Writer, items)

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"item_count": cart.ItemCount(items),
	})
}

// ClearCartHandler empties the cart.
func (s *Service) ClearCartHandler(c *gin.Context) {
	s.carts.Save(c.Writer, nil)
	c.JSON(http.StatusOK, gin.H{"items": []cart.LineItem{}, "item_count": 0})
}

// BeginCheckoutHandler opens checkout for a non-empty cart.
func (s *Service) BeginCheckoutHandler(c *gin.Context) {
	items := s.carts.Load(c.Request)
	if len(items) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
		return
	}

	total := cart.TotalValue(items)
	shipping := s.pricing.Shipping(total)
	tax := s.pricing.Tax(total)

	s.track(c, "Checkout", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.PageView("Checkout", pageURL(c.Request), c.Request.URL.Path)
	})
	s.track(c, "Checkout", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.BeginCheckout(eventItems(items), total)
	})

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_value": total,
		"shipping":    shipping,
		"tax":         tax,
		"final_total": total.Add(shipping).Add(tax),
	})
}

type purchaseRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PurchaseHandler completes the order: it emits the purchase event with the
// shipping-inclusive total and clears the cart.
func (s *Service) PurchaseHandler(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !emailPattern.MatchString(req.Email) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid email"})
		return
	}

	items := s.carts.Load(c.Request)
	if len(items) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
		return
	}

	total := cart.TotalValue(items)
	shipping := s.pricing.Shipping(total)
	tax := s.pricing.Tax(total)
	finalTotal := total.Add(shipping).Add(tax)
	transactionID := s.transactionID()

	s.track(c, "Obrigado", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.Purchase(transactionID, eventItems(items), finalTotal, tax, shipping)
	})
	// The thank-you navigation the browser lands on after a completed order.
	s.track(c, "Obrigado", func(n *analytics.Normalizer) (*analytics.Envelope, error) {
		return n.PageView("Obrigado", pageURL(c.Request), c.Request.URL.Path)
	})

	// Completed purchase clears the persisted cart.
	s.carts.Save(c.Writer, nil)

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"transaction_id": transactionID,
		"total":          finalTotal,
	})
}

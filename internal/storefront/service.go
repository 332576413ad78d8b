package storefront

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sneakshop-lab/sneakshop/internal/analytics"
	"github.com/sneakshop-lab/sneakshop/internal/cart"
	"github.com/sneakshop-lab/sneakshop/internal/experiment"
	"github.com/sneakshop-lab/sneakshop/internal/identity"
)

// fpidContextKey caches an identifier issued mid-request, so several events
// fired from one navigation all attribute to the same FPID.
const fpidContextKey = "identity.fpid"

// Service serves the storefront JSON API. It is plumbing around the
// interesting parts: it reads the assigned variant, mutates the cart store,
// and hands normalized events to the router. An analytics failure never
// fails a storefront response.
type Service struct {
	carts    cart.Store
	router   *analytics.Router
	pricing  cart.Pricing
	currency string

	// now and randInt feed transaction IDs; injectable for tests.
	now     func() time.Time
	randInt func(n int64) int64
}

// NewService wires the storefront API.
func NewService(carts cart.Store, router *analytics.Router, pricing cart.Pricing, currency string) *Service {
	if carts == nil {
		panic("storefront: cart store must not be nil")
	}
	if router == nil {
		panic("storefront: router must not be nil")
	}
	return &Service{
		carts:    carts,
		router:   router,
		pricing:  pricing,
		currency: currency,
		now:      time.Now,
		randInt:  rand.Int63n,
	}
}

// RegisterRoutes registers the storefront endpoints. They live outside /api
// so the assignment middleware treats them as page navigations.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/products", s.ListProductsHandler)
	r.GET("/products/:slug", s.ProductHandler)
	r.GET("/cart", s.ViewCartHandler)
	r.POST("/cart/items", s.AddToCartHandler)
	r.PATCH("/cart/items/:id", s.UpdateQuantityHandler)
	r.DELETE("/cart/items/:id", s.RemoveItemHandler)
	r.DELETE("/cart", s.ClearCartHandler)
	r.POST("/checkout", s.BeginCheckoutHandler)
	r.POST("/checkout/purchase", s.PurchaseHandler)
}

// track builds a normalizer for the request's variant and dispatches the
// envelope the callback constructs. Problems are logged and swallowed:
// the worst acceptable outcome is a missing analytics event, never a broken
// page.
func (s *Service) track(c *gin.Context, title string, build func(n *analytics.Normalizer) (*analytics.Envelope, error)) {
	variant, ok := experiment.FromContext(c)
	if !ok {
		slog.Warn("No variant on request, skipping analytics", "path", c.Request.URL.Path)
		return
	}

	env, err := build(analytics.NewNormalizer(variant, s.currency))
	if err != nil {
		slog.Warn("Event normalization failed", "error", err, "path", c.Request.URL.Path)
		return
	}

	page := analytics.Page{
		URL:       pageURL(c.Request),
		Title:     title,
		UserAgent: c.Request.UserAgent(),
		FPID:      visitorFPID(c),
	}
	issued, err := s.router.Dispatch(c.Request.Context(), env, page)
	if err != nil {
		slog.Warn("Event dispatch failed", "event", env.Name, "error", err)
		return
	}
	if issued != nil {
		// The relay provisioned the identifier server-side; hand it to the
		// browser and reuse it for the rest of this request.
		http.SetCookie(c.Writer, issued)
		c.Set(fpidContextKey, issued.Value)
	}
}

// visitorFPID resolves the durable identifier relayed events should attribute
// to: one issued earlier in this request, or the inbound cookie.
func visitorFPID(c *gin.Context) string {
	if v, ok := c.Get(fpidContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	if ck, err := c.Request.Cookie(identity.CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// transactionID builds an order identifier in the store's established
// format: current year plus eight random digits.
func (s *Service) transactionID() string {
	return fmt.Sprintf("%d-%08d", s.now().Year(), s.randInt(100_000_000))
}

func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// eventItems projects cart lines into the event payload item shape.
func eventItems(items []cart.LineItem) []analytics.Item {
	out := make([]analytics.Item, 0, len(items))
	for _, it := range items {
		out = append(out, analytics.Item{
			ItemID:       it.ID,
			ItemName:     it.Name,
			ItemCategory: it.Category,
			ItemBrand:    it.Brand,
			Price:        it.Price.InexactFloat64(),
			Quantity:     it.Quantity,
		})
	}
	return out
}

package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	// CookieName holds the serialized cart. Script-readable so the client can
	// render the badge count without a round trip.
	CookieName = "cart"

	cookieMaxAge = 7 * 24 * 60 * 60 // 7 days
)

// Store persists the cart across requests. CookieStore is the production
// implementation; MemoryStore serves tests.
type Store interface {
	Load(r *http.Request) []LineItem
	Save(w http.ResponseWriter, items []LineItem)
}

// wireItem is the cookie wire form. Field names and plain JSON numbers match
// the cookie format the original storefront shipped, so carts issued before
// the port survive it. No extra fields: cookie size is the storage budget.
type wireItem struct {
	ID       string  `json:"id"`
	Size     string  `json:"size,omitempty"`
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Quantity int     `json:"quantity"`
}

// Encode serializes items to the percent-encoded JSON cookie value.
func Encode(items []LineItem) (string, error) {
	wire := make([]wireItem, 0, len(items))
	for _, it := range items {
		wire = append(wire, wireItem{
			ID:       it.ID,
			Size:     it.Size,
			Slug:     it.Slug,
			Name:     it.Name,
			Price:    it.Price.InexactFloat64(),
			Image:    it.Image,
			Category: it.Category,
			Brand:    it.Brand,
			Quantity: it.Quantity,
		})
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", &PersistenceError{Op: "encode", Err: err}
	}
	return url.QueryEscape(string(data)), nil
}

// Decode parses a cookie value back into line items.
func Decode(value string) ([]LineItem, error) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	var wire []wireItem
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	items := make([]LineItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, LineItem{
			ID:       w.ID,
			Size:     w.Size,
			Slug:     w.Slug,
			Name:     w.Name,
			Price:    decimal.NewFromFloat(w.Price),
			Image:    w.Image,
			Category: w.Category,
			Brand:    w.Brand,
			Quantity: w.Quantity,
		})
	}
	return items, nil
}

// CookieStore persists the cart in the visitor's cookie. Corrupt or
// unreadable state degrades to an empty cart and is logged, never raised:
// a lost cart is recoverable, a failed page is not.
type CookieStore struct{}

// NewCookieStore returns the cookie-backed store.
func NewCookieStore() *CookieStore { return &CookieStore{} }

// Load deserializes the persisted cart, or returns an empty one.
func (s *CookieStore) Load(r *http.Request) []LineItem {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	items, err := Decode(ck.Value)
	if err != nil {
		slog.Warn("Discarding corrupt cart cookie", "error", err)
		return nil
	}
	return items
}

// Save serializes the full line-item sequence back to the cookie.
func (s *CookieStore) Save(w http.ResponseWriter, items []LineItem) {
	value, err := Encode(items)
	if err != nil {
		slog.Error("Failed to encode cart cookie", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})
}

// MemoryStore keeps a single cart in process. Test double for CookieStore.
type MemoryStore struct {
	mu    sync.Mutex
	items []LineItem
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(*http.Request) []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MemoryStore) Save(_ http.ResponseWriter, items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]LineItem, len(items))
	copy(s.items, items)
}

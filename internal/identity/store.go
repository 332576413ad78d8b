package identity

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

const (
	// CookieName is the durable first-party identifier cookie. HTTP-only so
	// script-level tracking protections cannot read or cap it.
	CookieName = "fpid"

	cookieMaxAge = 400 * 24 * 60 * 60 // ~13 months
)

// Store reads and provisions the durable first-party identifier. It is owned
// by the relay channel; direct-tag pages never touch it. Two first-contact
// requests racing to create an identifier resolve last-writer-wins with no
// locking: identity drift here only affects analytics attribution.
type Store struct {
	// Now and RandInt are injectable for deterministic tests.
	Now     func() time.Time
	RandInt func(n int64) int64
}

// NewStore returns a store backed by the wall clock and math/rand.
func NewStore() *Store {
	return &Store{Now: time.Now, RandInt: rand.Int63n}
}

// GetOrCreate returns the visitor's identifier. On a hit the cookie value is
// returned verbatim with a nil cookie write. On a miss a fresh identifier is
// synthesized and the returned cookie must be set on the response.
func (s *Store) GetOrCreate(r *http.Request) (string, *http.Cookie) {
	if ck, err := r.Cookie(CookieName); err == nil && ck.Value != "" {
		return ck.Value, nil
	}

	// Same shape as a GA client ID: timestamp.random. Consumers treat it as
	// an opaque token.
	id := fmt.Sprintf("%d.%d", s.Now().UnixMilli(), s.RandInt(1_000_000_000))
	slog.Info("Provisioned new FPID", "fpid", Preview(id))
	return id, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Preview obfuscates an identifier for status and log output. The full value
// never leaves the HTTP-only cookie.
func Preview(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 10 {
		return id + "..."
	}
	return id[:10] + "..."
}

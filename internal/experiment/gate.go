package experiment

import (
	"log/slog"
	"math/rand"
	"net/http"
)

const (
	// CookieName is the assignment cookie. Not HTTP-only: client display and
	// debug logic read the assigned arm directly.
	CookieName = "ab-group"

	cookieMaxAge = 30 * 24 * 60 * 60 // 30 days, the experiment's duration
)

// Gate assigns each visitor to an experiment arm exactly once. An existing
// valid assignment is always honored; a fresh visitor gets one uniform 50/50
// draw. Two near-simultaneous first visits racing to set the cookie resolve
// last-writer-wins: both drew independently valid values, so the loser only
// adds analytics noise.
type Gate struct {
	// Draw returns a uniform float in [0, 1). Injectable so tests can pin the
	// outcome. When nil the gate fails open to Default instead of blocking
	// the page load.
	Draw func() float64

	// Default is the arm used when no random source is available.
	Default Variant
}

// NewGate returns a gate backed by math/rand with a control-arm fallback.
func NewGate() *Gate {
	return &Gate{Draw: rand.Float64, Default: VariantControl}
}

// Assign resolves the visitor's variant from the request cookies. A valid
// existing cookie is returned verbatim with a nil cookie write. Otherwise a
// variant is drawn and the returned cookie must be set on the response.
func (g *Gate) Assign(r *http.Request) (Variant, *http.Cookie) {
	if ck, err := r.Cookie(CookieName); err == nil {
		if v, ok := ParseVariant(ck.Value); ok {
			return v, nil
		}
	}

	v := g.draw()
	slog.Info("Assigned experiment variant", "variant", v)
	return v, &http.Cookie{
		Name:     CookieName,
		Value:    string(v),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	}
}

func (g *Gate) draw() Variant {
	if g.Draw == nil {
		// Never reject a page load because assignment failed.
		v := g.Default
		if v == "" {
			v = VariantControl
		}
		slog.Warn("No random source configured, failing open", "variant", v)
		return v
	}
	if g.Draw() < 0.5 {
		return VariantControl
	}
	return VariantTest
}

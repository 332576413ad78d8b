package experiment

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKey = "experiment.variant"

// staticSuffixes mirrors the asset exclusions of the original middleware
// matcher. Assignment runs once per top-level navigation, never for
// sub-resource requests.
var staticSuffixes = []string{
	".png", ".jpg", ".jpeg", ".svg", ".gif", ".ico", ".css", ".js",
}

// Middleware runs the assignment gate ahead of every page request and exposes
// the variant to downstream handlers. API paths (including the relay
// ingestion endpoint) and static assets are skipped so non-page traffic never
// mutates experiment state.
func Middleware(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipAssignment(c.Request.URL.Path) {
			c.Next()
			return
		}

		v, ck := gate.Assign(c.Request)
		if ck != nil {
			http.SetCookie(c.Writer, ck)
		}
		c.Set(contextKey, v)
		c.Next()
	}
}

// FromContext returns the variant stored by Middleware. ok is false on
// requests that skipped assignment.
func FromContext(c *gin.Context) (Variant, bool) {
	raw, ok := c.Get(contextKey)
	if !ok {
		return "", false
	}
	v, ok := raw.(Variant)
	return v, ok
}

func skipAssignment(path string) bool {
	if strings.HasPrefix(path, "/api/") || path == "/health" || path == "/favicon.ico" {
		return true
	}
	for _, suffix := range staticSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

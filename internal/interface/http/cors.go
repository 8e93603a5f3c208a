package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, HEAD, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Request-ID"
)

// originPolicy decides which Access-Control-Allow-Origin value a request gets.
// An empty list or a "*" entry allows everyone, which is what the public frontend needs.
type originPolicy struct {
	any      bool
	fallback string
	allowed  map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	if len(origins) == 0 {
		p.any = true
		return p
	}
	p.fallback = origins[0]
	for _, o := range origins {
		if o == "*" {
			p.any = true
			return p
		}
		p.allowed[strings.ToLower(o)] = struct{}{}
	}
	return p
}

// resolve echoes a listed origin, otherwise returns the first configured one so the
// browser rejects the response.
func (p originPolicy) resolve(origin string) string {
	if p.any {
		return "*"
	}
	if _, ok := p.allowed[strings.ToLower(origin)]; ok && origin != "" {
		return origin
	}
	return p.fallback
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	policy := newOriginPolicy(origins)
	return func(c *gin.Context) {
		headers := c.Writer.Header()
		origin := policy.resolve(c.GetHeader("Origin"))
		headers.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			headers.Add("Vary", "Origin")
		}
		headers.Set("Access-Control-Allow-Methods", corsAllowMethods)
		headers.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		headers.Set("Access-Control-Expose-Headers", requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

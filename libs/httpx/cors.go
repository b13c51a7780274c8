package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy describes the headers emitted for allowed origins.
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSPolicy covers the booking front end: public reads, the booking
// form, and the owner screens with a Bearer token. The request id is exposed
// so the UI can quote it in error reports.
func DefaultCORSPolicy(origins []string) CORSPolicy {
	return CORSPolicy{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         10 * time.Minute,
	}
}

type corsHeaders struct {
	anyOrigin   bool
	origins     map[string]struct{}
	credentials bool
	static      http.Header
}

func newCORSHeaders(p CORSPolicy) *corsHeaders {
	c := &corsHeaders{origins: map[string]struct{}{}, credentials: p.AllowCredentials, static: http.Header{}}
	for _, o := range p.AllowedOrigins {
		switch o = strings.ToLower(strings.TrimSpace(o)); o {
		case "":
		case "*":
			c.anyOrigin = true
		default:
			c.origins[strings.TrimSuffix(o, "/")] = struct{}{}
		}
	}
	setList := func(key string, values []string) {
		if v := joinTrimmed(values); v != "" {
			c.static.Set(key, v)
		}
	}
	setList("Access-Control-Allow-Methods", p.AllowedMethods)
	setList("Access-Control-Allow-Headers", p.AllowedHeaders)
	setList("Access-Control-Expose-Headers", p.ExposedHeaders)
	if p.MaxAge > 0 {
		c.static.Set("Access-Control-Max-Age", strconv.Itoa(int(p.MaxAge.Seconds())))
	}
	if p.AllowCredentials {
		c.static.Set("Access-Control-Allow-Credentials", "true")
	}
	return c
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin.
// A wildcard policy echoes the origin when credentials are allowed, since
// browsers reject "*" together with credentials.
func (c *corsHeaders) allowOrigin(origin string) (string, bool) {
	if _, ok := c.origins[strings.ToLower(origin)]; ok {
		return origin, true
	}
	if !c.anyOrigin {
		return "", false
	}
	if c.credentials {
		return origin, true
	}
	return "*", true
}

// WithCORS is a no-op when no origins are configured. Requests from other
// origins pass through without CORS headers and the browser blocks them.
func WithCORS(p CORSPolicy) Middleware {
	c := newCORSHeaders(p)
	if !c.anyOrigin && len(c.origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allow, ok := c.allowOrigin(origin)
			if origin == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			for k, v := range c.static {
				h[k] = v
			}
			h.Set("Access-Control-Allow-Origin", allow)
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func joinTrimmed(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ", ")
}

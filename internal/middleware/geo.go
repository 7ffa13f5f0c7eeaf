package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"canvasbot/internal/domain"
	"canvasbot/internal/infra/geoip"
)

type geoContextKey struct{}

// GeoKey carries the resolved catalogue geo through the request context.
var GeoKey = geoContextKey{}

// MarketLookup resolves a catalogue geo for an IP address.
type MarketLookup func(ip string) (domain.Geo, error)

// Geo resolves the request's market and stores it in the context. Explicit
// header hints win over the GeoIP lookup; anything unresolvable falls back
// to the default geo.
func Geo(fallback domain.Geo, lookup MarketLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			geo := ResolveGeo(r, fallback, lookup)
			ctx := context.WithValue(r.Context(), GeoKey, geo)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GeoFromContext returns the catalogue geo stored in the request context.
func GeoFromContext(ctx context.Context) domain.Geo {
	if v, ok := ctx.Value(GeoKey).(domain.Geo); ok && v != "" {
		return v
	}
	return domain.GeoRU
}

// ResolveGeo resolves a best-effort market for the given request.
func ResolveGeo(r *http.Request, fallback domain.Geo, lookup MarketLookup) domain.Geo {
	if r == nil {
		return fallback
	}
	headerHints := []string{"X-Geo", "X-Country-Code", "CF-IPCountry"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			if geo := geoip.MarketForCountry(val); geo != "" {
				return geo
			}
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if geo, err := lookup(ip); err == nil && geo != "" {
				return geo
			}
		}
	}
	return fallback
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Package geoip resolves client IPs to the markets the template catalogue is
// published for, backed by a MaxMind GeoIP2 database.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"canvasbot/internal/domain"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// MarketResolver resolves a catalogue geo for an IP address.
type MarketResolver interface {
	Market(ip string) (domain.Geo, error)
}

// Resolver provides market lookups backed by a MaxMind GeoIP2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. When the path is
// empty, nil is returned and callers fall back to the default geo.
func NewResolver(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Market returns the catalogue geo for the provided IP. IPs outside the
// supported markets resolve to an empty geo with no error.
func (r *Resolver) Market(ip string) (domain.Geo, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return MarketForCountry(record.Country.IsoCode), nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

// MarketForCountry maps an ISO country code onto a supported catalogue geo,
// or empty when the country is not a market.
func MarketForCountry(iso string) domain.Geo {
	switch strings.ToUpper(iso) {
	case "RU":
		return domain.GeoRU
	case "MD":
		return domain.GeoMD
	case "KZ":
		return domain.GeoKZ
	case "KG":
		return domain.GeoKG
	case "TR":
		return domain.GeoTR
	case "AZ":
		return domain.GeoAZ
	case "TJ":
		return domain.GeoTJ
	case "UZ":
		return domain.GeoUZ
	default:
		return ""
	}
}

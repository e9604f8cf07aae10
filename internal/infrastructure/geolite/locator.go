package geolite

import (
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
)

// countryRecord is the subset of a GeoLite2 Country/City record we decode.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

type lookuper interface {
	Lookup(ip net.IP, result interface{}) error
	Close() error
}

// Locator resolves client IPs against a memory-mapped GeoLite2 database
type Locator struct {
	reader lookuper
}

// NewLocator opens the database at cfg.DatabasePath. Without a path it returns
// a locator that always reports an unknown country.
func NewLocator(cfg config.GeoIPConfig, logger *zap.Logger) (provider.GeoLocator, func() error, error) {
	if !cfg.Enabled() {
		logger.Info("GeoIP database not configured, country detection disabled")
		return NoopLocator{}, func() error { return nil }, nil
	}

	reader, err := maxminddb.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open geoip database: %w", err)
	}

	logger.Info("GeoIP database loaded",
		zap.String("path", cfg.DatabasePath),
		zap.String("database_type", reader.Metadata.DatabaseType))

	return &Locator{reader: reader}, reader.Close, nil
}

// CountryCode returns the ISO country code for ip, falling back to the
// registered country. Private and unparsable addresses yield "".
func (l *Locator) CountryCode(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return "", nil
	}

	var rec countryRecord
	if err := l.reader.Lookup(parsed, &rec); err != nil {
		return "", fmt.Errorf("geoip lookup failed: %w", err)
	}
	if rec.Country.ISOCode != "" {
		return rec.Country.ISOCode, nil
	}
	return rec.RegisteredCountry.ISOCode, nil
}

// NoopLocator never knows the country
type NoopLocator struct{}

func (NoopLocator) CountryCode(string) (string, error) { return "", nil }

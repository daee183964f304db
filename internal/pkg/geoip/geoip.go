// Package geoip resolves client IP addresses to a "City, Country" location
// string backed by a GeoLite2 city database.
package geoip

import (
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/pariz/gountries"
)

// UnknownLocation is the sentinel stored when an IP cannot be resolved.
const UnknownLocation = "Unknown"

// Locator wraps a GeoLite2 reader. A nil reader is a valid degraded state:
// every lookup resolves to UnknownLocation.
type Locator struct {
	reader    *geoip2.Reader
	countries *gountries.Query
	logger    *slog.Logger
}

// Open loads the GeoLite2 city database at path. A missing or unreadable
// database is not an error; geo resolution is optional and the locator
// degrades to UnknownLocation lookups.
func Open(path string, logger *slog.Logger) *Locator {
	loc := &Locator{
		countries: gountries.New(),
		logger:    logger,
	}

	if path == "" {
		logger.Debug("geo database path not configured, geo resolution disabled")
		return loc
	}
	if _, err := os.Stat(path); err != nil {
		logger.Info("geo database not found, geo resolution disabled",
			slog.String("path", path),
			slog.Any("error", err))
		return loc
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		logger.Error("failed to open geo database",
			slog.String("path", path),
			slog.Any("error", err))
		return loc
	}

	logger.Info("geo database initialized", slog.String("path", path))
	loc.reader = reader
	return loc
}

// Close releases the underlying database reader.
func (l *Locator) Close() error {
	if l.reader == nil {
		return nil
	}
	return l.reader.Close()
}

// Locate resolves an IP address to "City, Country". Every failure mode
// (malformed IP, private or loopback address, missing reader, lookup miss)
// yields UnknownLocation; lookups never surface an error to ingestion.
//
// When the database knows the country but not the city, the city component
// is the literal "None", which the region table folds into its Unknown
// region. This mirrors the historical records already in the store.
func (l *Locator) Locate(ipAddress string) string {
	if l.reader == nil {
		return UnknownLocation
	}

	ip := net.ParseIP(strings.TrimSpace(ipAddress))
	if ip == nil {
		l.logger.Debug("unparseable client IP", slog.String("ip", ipAddress))
		return UnknownLocation
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return UnknownLocation
	}

	record, err := l.reader.City(ip)
	if err != nil {
		l.logger.Debug("geo lookup failed",
			slog.String("ip", ip.String()),
			slog.Any("error", err))
		return UnknownLocation
	}

	country := l.countryName(record)
	if country == "" {
		return UnknownLocation
	}

	city := record.City.Names["en"]
	if city == "" {
		city = "None"
	}
	return city + ", " + country
}

// countryName prefers the canonical common name for the ISO code and falls
// back to the database's English name.
func (l *Locator) countryName(record *geoip2.City) string {
	if iso := record.Country.IsoCode; iso != "" {
		if country, err := l.countries.FindCountryByAlpha(iso); err == nil {
			return country.Name.Common
		}
	}
	return record.Country.Names["en"]
}

// SplitLocation splits a stored "City, Country" string into its city and
// country components. The sentinel UnknownLocation has no components.
func SplitLocation(location string) (city, country string) {
	if location == "" || location == UnknownLocation {
		return "", ""
	}
	idx := strings.LastIndex(location, ", ")
	if idx < 0 {
		return location, ""
	}
	return location[:idx], location[idx+2:]
}

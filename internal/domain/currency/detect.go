// internal/domain/currency/detect.go
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/config"
)

// countryCurrency maps ISO country codes to their currency
var countryCurrency = map[string]string{
	"US": "USD", "IN": "INR", "GB": "GBP", "JP": "JPY",
	"AU": "AUD", "CA": "CAD", "SG": "SGD", "CN": "CNY",
	"BR": "BRL", "MX": "MXN", "AE": "AED",
	"DE": "EUR", "FR": "EUR", "IT": "EUR", "ES": "EUR",
	"NL": "EUR", "PT": "EUR", "IE": "EUR", "AT": "EUR",
	"BE": "EUR", "FI": "EUR", "GR": "EUR",
}

// Detector resolves the best display currency for a client. Every step
// of the chain is best effort: failures fall through silently to the
// next step and the final fallback is the base currency.
type Detector struct {
	config      *config.Config
	converter   *Converter
	redisClient *redis.Client
	httpClient  *http.Client
	logger      *logrus.Logger
}

// NewDetector creates a currency detector
func NewDetector(cfg *config.Config, converter *Converter, redisClient *redis.Client, logger *logrus.Logger) *Detector {
	return &Detector{
		config:      cfg,
		converter:   converter,
		redisClient: redisClient,
		httpClient: &http.Client{
			Timeout: cfg.External.GeoIP.Timeout,
		},
		logger: logger,
	}
}

// Detect resolves the display currency for a client, in order:
// a persisted user selection, an IP-geolocation lookup, the runtime
// locale, a previously cached detection, and finally the base currency.
func (d *Detector) Detect(ctx context.Context, clientIP, persistedSelection string) string {
	if persistedSelection != "" && d.converter.Known(persistedSelection) {
		return normalize(persistedSelection)
	}

	if code := d.lookupGeoIP(ctx, clientIP); code != "" {
		d.cacheDetection(ctx, clientIP, code)
		return code
	}

	if code := d.fromLocale(); code != "" {
		return code
	}

	if code := d.cachedDetection(ctx, clientIP); code != "" {
		return code
	}

	return d.converter.Base()
}

// lookupGeoIP queries the external geolocation service. A short timeout
// and silent fallback keep it from ever blocking startup or a request.
func (d *Detector) lookupGeoIP(ctx context.Context, clientIP string) string {
	if d.config.External.GeoIP.Endpoint == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.External.GeoIP.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.config.External.GeoIP.Endpoint, nil)
	if err != nil {
		return ""
	}
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.WithError(err).Debug("GeoIP lookup failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var payload struct {
		CountryCode string `json:"country_code"`
		Country     string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}

	country := payload.CountryCode
	if country == "" {
		country = payload.Country
	}

	return countryCurrency[strings.ToUpper(country)]
}

// fromLocale infers a currency from the runtime locale string,
// e.g. "en_IN.UTF-8" yields INR
func (d *Detector) fromLocale() string {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if locale == "" {
		return ""
	}

	// strip encoding suffix, keep the territory part of ll_CC
	locale = strings.SplitN(locale, ".", 2)[0]
	parts := strings.SplitN(locale, "_", 2)
	if len(parts) != 2 {
		return ""
	}

	return countryCurrency[strings.ToUpper(parts[1])]
}

func (d *Detector) detectionKey(clientIP string) string {
	return fmt.Sprintf("currency:detect:%s", clientIP)
}

func (d *Detector) cacheDetection(ctx context.Context, clientIP, code string) {
	if clientIP == "" {
		return
	}
	if err := d.redisClient.Set(ctx, d.detectionKey(clientIP), code, d.config.Currency.DetectCacheTTL).Err(); err != nil {
		d.logger.WithError(err).Debug("Failed to cache currency detection")
	}
}

func (d *Detector) cachedDetection(ctx context.Context, clientIP string) string {
	if clientIP == "" {
		return ""
	}
	code, err := d.redisClient.Get(ctx, d.detectionKey(clientIP)).Result()
	if err != nil {
		return ""
	}
	return code
}

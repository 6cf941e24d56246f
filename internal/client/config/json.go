package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/OleoMar/alphawave/internal/flagx"
	"github.com/OleoMar/alphawave/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	DatabaseDSN           string         `json:"database_dsn"`
	QuoteBaseURL          string         `json:"quote_base_url"`
	QuoteAPIKey           string         `json:"quote_api_key"`
	QuoteMinInterval      timex.Duration `json:"quote_min_interval"`
	QuoteCacheTTL         timex.Duration `json:"quote_cache_ttl"`
	GeocodeBaseURL        string         `json:"geocode_base_url"`
	GeoIPDatabase         string         `json:"geoip_database"`
	IPEchoURL             string         `json:"ip_echo_url"`
	LocationTimeout       timex.Duration `json:"location_timeout"`
	LocationMaxFixAge     timex.Duration `json:"location_max_fix_age"`
	LocationSessionWindow timex.Duration `json:"location_session_window"`
	LocationCacheTTL      timex.Duration `json:"location_cache_ttl"`
}

// parseJson overlays Config with values from the JSON file named by the -c
// or -config flag. Absent file path means no JSON is loaded. Empty JSON
// fields leave the corresponding Config values untouched.
//
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.QuoteBaseURL != "" {
		cfg.QuoteBaseURL = jc.QuoteBaseURL
	}
	if jc.QuoteAPIKey != "" {
		cfg.QuoteAPIKey = jc.QuoteAPIKey
	}
	if jc.QuoteMinInterval.Duration != 0 {
		cfg.QuoteMinInterval = time.Duration(jc.QuoteMinInterval.Duration)
	}
	if jc.QuoteCacheTTL.Duration != 0 {
		cfg.QuoteCacheTTL = time.Duration(jc.QuoteCacheTTL.Duration)
	}
	if jc.GeocodeBaseURL != "" {
		cfg.GeocodeBaseURL = jc.GeocodeBaseURL
	}
	if jc.GeoIPDatabase != "" {
		cfg.GeoIPDatabase = jc.GeoIPDatabase
	}
	if jc.IPEchoURL != "" {
		cfg.IPEchoURL = jc.IPEchoURL
	}
	if jc.LocationTimeout.Duration != 0 {
		cfg.LocationTimeout = time.Duration(jc.LocationTimeout.Duration)
	}
	if jc.LocationMaxFixAge.Duration != 0 {
		cfg.LocationMaxFixAge = time.Duration(jc.LocationMaxFixAge.Duration)
	}
	if jc.LocationSessionWindow.Duration != 0 {
		cfg.LocationSessionWindow = time.Duration(jc.LocationSessionWindow.Duration)
	}
	if jc.LocationCacheTTL.Duration != 0 {
		cfg.LocationCacheTTL = time.Duration(jc.LocationCacheTTL.Duration)
	}
}

package config

import "time"

// Config holds runtime settings for the AlphaWave CLI.
type Config struct {
	// DatabaseDSN is the SQLite database path or DSN.
	DatabaseDSN string `env:"ALPHAWAVE_DB"`

	// Quote API settings.
	QuoteBaseURL     string        `env:"ALPHAWAVE_QUOTE_URL"`
	QuoteAPIKey      string        `env:"ALPHAWAVE_QUOTE_API_KEY"`
	QuoteMinInterval time.Duration `env:"ALPHAWAVE_QUOTE_MIN_INTERVAL"`
	QuoteCacheTTL    time.Duration `env:"ALPHAWAVE_QUOTE_CACHE_TTL"`

	// Location settings. GeoIPDatabase points at a MaxMind mmdb file;
	// when empty, geolocation is treated as unavailable.
	GeocodeBaseURL        string        `env:"ALPHAWAVE_GEOCODE_URL"`
	GeoIPDatabase         string        `env:"ALPHAWAVE_GEOIP_DB"`
	IPEchoURL             string        `env:"ALPHAWAVE_IP_ECHO_URL"`
	LocationTimeout       time.Duration `env:"ALPHAWAVE_LOCATION_TIMEOUT"`
	LocationMaxFixAge     time.Duration `env:"ALPHAWAVE_LOCATION_MAX_FIX_AGE"`
	LocationSessionWindow time.Duration `env:"ALPHAWAVE_LOCATION_SESSION_WINDOW"`
	LocationCacheTTL      time.Duration `env:"ALPHAWAVE_LOCATION_CACHE_TTL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "alphawave.db"
	c.QuoteBaseURL = "https://finnhub.io/api/v1"
	c.QuoteMinInterval = 1 * time.Second
	c.QuoteCacheTTL = 5 * time.Minute
	c.GeocodeBaseURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"
	c.IPEchoURL = "https://checkip.amazonaws.com"
	c.LocationTimeout = 15 * time.Second
	c.LocationMaxFixAge = 5 * time.Minute
	c.LocationSessionWindow = 30 * time.Minute
	c.LocationCacheTTL = 2 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

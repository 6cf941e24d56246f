// Package config loads runtime configuration for the AlphaWave CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. ALPHAWAVE_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the local SQLite database
//	-k string   quote API key
//	-g string   path to the GeoIP database (mmdb)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "database_dsn": "alphawave.db",
//	  "quote_api_key": "...",
//	  "quote_min_interval": "1s",
//	  "location_cache_ttl": "2h"
//	}
package config

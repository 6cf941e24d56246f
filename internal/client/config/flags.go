package config

import (
	"flag"
	"os"

	"github.com/OleoMar/alphawave/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   SQLite database path
//	-k string   quote API key
//	-g string   GeoIP database path (mmdb)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path to the local database")
	fs.StringVar(&cfg.QuoteAPIKey, "k", cfg.QuoteAPIKey, "quote API key")
	fs.StringVar(&cfg.GeoIPDatabase, "g", cfg.GeoIPDatabase, "path to the GeoIP database (mmdb)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

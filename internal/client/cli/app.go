package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/OleoMar/alphawave/internal/client/client"
	"github.com/OleoMar/alphawave/internal/client/config"
	"github.com/OleoMar/alphawave/internal/client/geo"
	"github.com/OleoMar/alphawave/internal/client/repositories/kv"
	"github.com/OleoMar/alphawave/internal/client/services"
	"github.com/OleoMar/alphawave/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the dashboard services behind an interactive prompt.
type App struct {
	config   *config.Config
	log      logging.Logger
	identity *services.IdentityService
	location *services.LocationService
	quotes   *services.QuoteService
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.Default())

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	repos := client.NewRepositories(db)

	identity := services.NewIdentityService(db, log)

	// The local database plays the role of durable storage; the in-memory
	// store lives for this process only, scoping consent to the session.
	sessionStore := kv.NewMemoryStore()

	var provider geo.Provider
	if c.GeoIPDatabase != "" {
		p, err := geo.NewGeoIPProvider(c.GeoIPDatabase, geo.HTTPIPSource(c.IPEchoURL, nil))
		if err != nil {
			log.Warn(ctx, "geolocation unavailable", "error", err)
		} else {
			provider = geo.NewCachedProvider(p, c.LocationMaxFixAge)
		}
	}

	location := services.NewLocationService(
		repos.KV, sessionStore, provider,
		geo.NewHTTPGeocoder(c.GeocodeBaseURL, nil),
		log,
		services.LocationOptions{
			ResolveTimeout: c.LocationTimeout,
			SessionWindow:  c.LocationSessionWindow,
			CacheTTL:       c.LocationCacheTTL,
		},
	)

	quotes := services.NewQuoteService(repos.KV, log, services.QuoteOptions{
		BaseURL:     c.QuoteBaseURL,
		APIKey:      c.QuoteAPIKey,
		MinInterval: c.QuoteMinInterval,
		CacheTTL:    c.QuoteCacheTTL,
	})
	quotes.LoadCache(ctx)
	quotes.SetPriceFormatter(location.FormatCurrency)

	return &App{
		config:   c,
		log:      log,
		identity: identity,
		location: location,
		quotes:   quotes,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.initLocation(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.identity.IsAuthenticated(ctx)
}

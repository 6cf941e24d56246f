package cli

import (
	"context"
	"fmt"
	"os"
)

// initLocation runs the session consent flow: when the location service
// reports that consent is still undecided, the user is asked once.
func (a *App) initLocation(ctx context.Context) {
	if !a.location.Initialize(ctx) {
		return
	}

	allow, err := GetYesNo(a.reader, "Share your location to localize market data?", os.Stdout)
	if err != nil || !allow {
		a.location.Deny(ctx)
		return
	}
	if !a.location.Allow(ctx) {
		fmt.Println("Could not determine your location, using defaults.")
	}
}

func (a *App) Stocks(ctx context.Context) {
	for _, s := range a.quotes.Stocks(ctx) {
		marker := ""
		if !s.Live {
			marker = " (delayed)"
		}
		fmt.Printf("%-6s %-24s %8s%s\n", s.Symbol, s.Name, s.Change, marker)
	}
}

func (a *App) Watchlist(ctx context.Context) {
	for _, item := range a.quotes.Watchlist(ctx) {
		marker := ""
		if !item.Live {
			marker = " (delayed)"
		}
		fmt.Printf("%-6s %-24s %14s %8s%s\n", item.Symbol, item.Name, item.Price, item.Change, marker)
	}
}

func (a *App) MarketStatus(_ context.Context) {
	status := a.location.MarketStatus()
	region := a.location.Region()

	state := "closed"
	if status.IsOpen {
		state = "open"
	}
	fmt.Printf("%s market is %s (%s %s)\n", region.Name, state, status.CurrentTime, status.Timezone)
}

func (a *App) ShowLocation(_ context.Context) {
	loc := a.location.Location()
	if loc == nil {
		fmt.Println("Location not determined yet.")
		return
	}

	region := a.location.Region()
	if loc.IsDefault {
		fmt.Printf("Using default location: %s, %s\n", loc.City, loc.CountryName)
	} else {
		fmt.Printf("Location: %s, %s (%.4f, %.4f)\n", loc.City, loc.CountryName, loc.Lat, loc.Lng)
	}
	fmt.Printf("Market region: %s, prices in %s\n", region.Name, region.Currency)
}

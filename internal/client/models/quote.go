package models

// Quote is a single stock quote in the upstream API's shape:
// c = current price, d = absolute change, dp = percent change.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
}

// StockSummary is a processed row for the stocks section.
type StockSummary struct {
	Symbol string
	Name   string
	Change string
	Live   bool
}

// WatchlistItem is a processed row for the watchlist section, including
// the formatted price.
type WatchlistItem struct {
	Symbol string
	Name   string
	Price  string
	Change string
	Live   bool
}

package services

// Page identifies a dashboard view for access gating.
type Page string

const (
	PageSignIn    Page = "signin"
	PageSignUp    Page = "signup"
	PageDashboard Page = "dashboard"
	PagePortfolio Page = "portfolio"
	PageNews      Page = "news"
	PageStocks    Page = "stocks"
	PageWatchlist Page = "watchlist"
	PagePro       Page = "pro"
)

var protectedPages = map[Page]bool{
	PageDashboard: true,
	PagePortfolio: true,
	PageNews:      true,
	PageStocks:    true,
	PageWatchlist: true,
	PagePro:       true,
}

// GateDecision is the outcome of the access gate. When Allow is false,
// RedirectTo names the page the caller should navigate to instead.
type GateDecision struct {
	Allow      bool
	RedirectTo Page
}

// Gate decides whether a page may be shown given the authentication state.
// It is a pure function: navigation is left entirely to the caller.
//
// Protected pages require a session; the sign-in and sign-up pages redirect
// to the dashboard when a session already exists.
func Gate(page Page, authenticated bool) GateDecision {
	if protectedPages[page] && !authenticated {
		return GateDecision{RedirectTo: PageSignIn}
	}
	if (page == PageSignIn || page == PageSignUp) && authenticated {
		return GateDecision{RedirectTo: PageDashboard}
	}
	return GateDecision{Allow: true}
}

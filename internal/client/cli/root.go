package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/OleoMar/alphawave/internal/client/services"
)

func (a *App) getStatus(ctx context.Context) string {
	session, err := a.identity.CurrentSession(ctx)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("(%s)", session.Email)
}

// gated runs fn only when the access gate allows the page for the current
// authentication state. Otherwise the sign-in redirect is reported.
func (a *App) gated(ctx context.Context, page services.Page, fn func(context.Context)) {
	decision := services.Gate(page, a.isLoggedIn(ctx))
	switch {
	case decision.Allow:
		fn(ctx)
	case decision.RedirectTo == services.PageSignIn:
		fmt.Println("Please sign in first.")
	default:
		fmt.Println("You are already signed in.")
	}
}

func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to AlphaWave CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("alphawave %s> ", a.getStatus(ctx))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn(ctx) {
				fmt.Println("Available commands: stocks, watchlist, market, location, whoami, profile, passwd, delete, signout, exit")
			} else {
				fmt.Println("Available commands: signup, signin, market, location, exit")
			}

		case "signup":
			a.gated(ctx, services.PageSignUp, a.SignUp)
		case "signin":
			a.gated(ctx, services.PageSignIn, a.SignIn)
		case "signout", "logout":
			a.SignOut(ctx)
		case "whoami":
			a.WhoAmI(ctx)
		case "profile":
			a.UpdateProfile(ctx)
		case "passwd":
			a.ChangePassword(ctx)
		case "delete":
			a.DeleteAccount(ctx)
		case "stocks":
			a.gated(ctx, services.PageStocks, a.Stocks)
		case "watchlist", "w":
			a.gated(ctx, services.PageWatchlist, a.Watchlist)
		case "market":
			a.MarketStatus(ctx)
		case "location":
			a.ShowLocation(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", parts[0])
		}
	}
}

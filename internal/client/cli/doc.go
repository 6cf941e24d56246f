// Package cli provides the interactive AlphaWave command-line client.
//
// It wires configuration, the local store, and the dashboard services
// behind an interactive prompt. Typical flow: run the one-time location
// consent check, then execute user commands.
//
// Key features:
//   - Sign up / sign in / sign out against the local account registry
//   - Profile editing, password change, account deletion
//   - Stocks and watchlist views with live or fallback quotes
//   - Market status and currency formatting localized to the user's region
//
// The prompt is started via App.Root(ctx), which blocks until the user
// exits.
package cli

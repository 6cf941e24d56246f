package common

// Keys for durable entries in the local key/value store.
const (
	// SessionKey holds the signed session snapshot of the current user.
	SessionKey = "current_user"

	// SessionSecretKey holds the per-install random key used to sign
	// session snapshots.
	SessionSecretKey = "session_secret"

	// LocationKey holds the cached location record and market region.
	LocationKey = "location_session"

	// LocationDeniedKey holds the user's durable "do not ask" preference
	// from the location consent prompt.
	LocationDeniedKey = "location_denied"

	// StocksCacheKey holds the persisted per-symbol quote cache.
	StocksCacheKey = "stocks_cache"
)

// LocationHandledKey marks, in the session-scoped store, that the location
// consent flow already ran during this session.
const LocationHandledKey = "location_handled"

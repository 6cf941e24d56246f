package services

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/OleoMar/alphawave/internal/client/geo"
	"github.com/OleoMar/alphawave/internal/client/market"
	"github.com/OleoMar/alphawave/internal/client/models"
	"github.com/OleoMar/alphawave/internal/client/repositories/kv"
	"github.com/OleoMar/alphawave/internal/common"
	"github.com/OleoMar/alphawave/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultResolveTimeout = 15 * time.Second
	defaultSessionWindow  = 30 * time.Minute
	defaultLocationTTL    = 2 * time.Hour
)

// defaultLocation is the fallback record used whenever resolution fails or
// is not permitted: New York.
func defaultLocation(at time.Time) models.LocationRecord {
	return models.LocationRecord{
		Lat:         40.7128,
		Lng:         -74.0060,
		Country:     "US",
		CountryName: "United States",
		City:        "New York",
		Timezone:    "America/New_York",
		IsDefault:   true,
		Timestamp:   at,
	}
}

// LocationUpdate is broadcast to subscribers whenever a new location and
// market region are resolved.
type LocationUpdate struct {
	Location models.LocationRecord
	Region   market.Region
}

// LocationOptions tunes the consent cache. Zero values select the defaults.
type LocationOptions struct {
	// ResolveTimeout bounds one platform resolution attempt.
	ResolveTimeout time.Duration
	// SessionWindow is how fresh a cached record must be to count as
	// "already handled this session".
	SessionWindow time.Duration
	// CacheTTL is how long a persisted record stays usable before it is
	// considered stale and re-resolution is forced.
	CacheTTL time.Duration
}

// LocationService owns the one-time-per-session location permission
// negotiation and the time-bounded cache of the resolved location and
// market region.
//
// Its core contract: consent is asked at most once per session, regardless
// of outcome. A denial within a session is never re-prompted.
type LocationService struct {
	durable  kv.Store // localStorage analogue
	session  kv.Store // sessionStorage analogue, lives as long as the process
	provider geo.Provider
	geocoder geo.Geocoder
	log      logging.Logger

	timeout       time.Duration
	sessionWindow time.Duration
	cacheTTL      time.Duration
	now           func() time.Time

	mu      sync.Mutex
	consent models.ConsentState
	asked   bool
	current *models.LocationRecord
	region  market.Region
	subs    []func(LocationUpdate)
}

// NewLocationService constructs a LocationService. provider may be nil when
// the platform capability is absent; geocoder may be nil to skip enrichment.
func NewLocationService(durable, session kv.Store, provider geo.Provider, geocoder geo.Geocoder, log logging.Logger, opts LocationOptions) *LocationService {
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = defaultResolveTimeout
	}
	if opts.SessionWindow <= 0 {
		opts.SessionWindow = defaultSessionWindow
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultLocationTTL
	}
	return &LocationService{
		durable:       durable,
		session:       session,
		provider:      provider,
		geocoder:      geocoder,
		log:           log,
		timeout:       opts.ResolveTimeout,
		sessionWindow: opts.SessionWindow,
		cacheTTL:      opts.CacheTTL,
		now:           time.Now,
		consent:       models.ConsentUnknown,
		region:        market.RegionFor(market.RegionDefault),
	}
}

// Subscribe registers fn to be called on every new location resolution.
func (s *LocationService) Subscribe(fn func(LocationUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *LocationService) notify(update LocationUpdate) {
	s.mu.Lock()
	subs := make([]func(LocationUpdate), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(update)
	}
}

// Initialize runs the session consent check and reports whether the caller
// should surface the consent prompt.
//
// When consent was already decided this session (flag in session storage or
// a cached record fresher than the session window), the cache is reused and
// no prompt is requested. The same holds when the platform capability is
// absent or the durable "denied" preference is set; in those cases the
// default location applies.
func (s *LocationService) Initialize(ctx context.Context) bool {
	if s.provider == nil {
		s.log.Warn(ctx, "geolocation not supported on this platform, using default location")
		if !s.loadFromStorage(ctx) {
			s.setDefaultLocation(ctx)
		}
		return false
	}

	if s.handledThisSession(ctx) {
		s.log.Debug(ctx, "location already handled this session, reusing cache")
		if !s.loadFromStorage(ctx) {
			s.setDefaultLocation(ctx)
		}
		return false
	}

	if s.deniedPreference(ctx) {
		s.mu.Lock()
		s.consent = models.ConsentDenied
		s.mu.Unlock()
		s.markHandled(ctx)
		if !s.loadFromStorage(ctx) {
			s.setDefaultLocation(ctx)
		}
		return false
	}

	s.mu.Lock()
	s.consent = models.ConsentPrompting
	s.mu.Unlock()
	return true
}

// Allow is the consent prompt's accept callback: it clears the durable
// denied preference and performs the one-shot resolution.
func (s *LocationService) Allow(ctx context.Context) bool {
	if err := s.durable.Set(ctx, common.LocationDeniedKey, []byte("false")); err != nil {
		s.log.Warn(ctx, "could not store location preference", "error", err)
	}
	return s.RequestPermission(ctx)
}

// Deny is the consent prompt's reject callback: it stores the durable
// denied preference, marks the session as decided, and applies the default
// location.
func (s *LocationService) Deny(ctx context.Context) {
	if err := s.durable.Set(ctx, common.LocationDeniedKey, []byte("true")); err != nil {
		s.log.Warn(ctx, "could not store location preference", "error", err)
	}
	s.mu.Lock()
	s.consent = models.ConsentDenied
	s.mu.Unlock()
	s.markHandled(ctx)
	s.setDefaultLocation(ctx)
}

// RequestPermission performs the one-shot resolution unless consent was
// already decided this session. It returns true when a live (non-default)
// location was resolved.
func (s *LocationService) RequestPermission(ctx context.Context) bool {
	s.mu.Lock()
	if s.asked {
		s.mu.Unlock()
		s.log.Debug(ctx, "location already requested this session")
		return false
	}
	s.mu.Unlock()

	ok := s.resolveCurrentLocation(ctx)
	s.markHandled(ctx)
	return ok
}

// resolveCurrentLocation asks the platform for one fix within the timeout,
// enriches it best-effort via reverse geocoding, and falls back to the
// default location on any failure. Failures also decide consent for the
// rest of the session: a denial is never re-prompted.
func (s *LocationService) resolveCurrentLocation(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fix, err := s.provider.Resolve(ctx)
	if err != nil {
		s.log.Warn(ctx, "location resolution failed, using default", "error", err)
		s.mu.Lock()
		s.consent = models.ConsentDenied
		s.mu.Unlock()
		s.setDefaultLocation(ctx)
		return false
	}

	record := models.LocationRecord{
		Lat:       fix.Lat,
		Lng:       fix.Lng,
		Accuracy:  fix.Accuracy,
		Timestamp: s.now().UTC(),
	}
	region := market.RegionFor(market.RegionDefault)

	if s.geocoder != nil {
		place, gerr := s.geocoder.Reverse(ctx, fix.Lat, fix.Lng)
		if gerr != nil {
			s.log.Warn(ctx, "reverse geocoding failed, keeping raw coordinates", "error", gerr)
		} else {
			record.Country = place.CountryCode
			record.CountryName = place.CountryName
			record.City = place.City
			record.Region = place.Region
			record.Timezone = place.Timezone
			region = market.DetermineRegion(place.CountryCode)
		}
	}

	s.mu.Lock()
	s.consent = models.ConsentGranted
	s.current = &record
	s.region = region
	s.mu.Unlock()

	s.log.Info(ctx, "location resolved", "city", record.City, "country", record.Country, "region", string(region.Code))
	s.persist(ctx, record, region)
	s.notify(LocationUpdate{Location: record, Region: region})
	return true
}

// setDefaultLocation applies the fixed fallback record and its region.
func (s *LocationService) setDefaultLocation(ctx context.Context) {
	record := defaultLocation(s.now().UTC())
	region := market.DetermineRegion(record.Country)

	s.mu.Lock()
	s.current = &record
	s.region = region
	s.mu.Unlock()

	s.log.Info(ctx, "using default location", "city", record.City)
	s.persist(ctx, record, region)
	s.notify(LocationUpdate{Location: record, Region: region})
}

// storedLocation is the persisted shape under the location_session key.
type storedLocation struct {
	Location  models.LocationRecord `json:"location"`
	Region    market.Region         `json:"marketRegion"`
	Timestamp time.Time             `json:"timestamp"`
}

func (s *LocationService) persist(ctx context.Context, record models.LocationRecord, region market.Region) {
	data, err := json.Marshal(storedLocation{Location: record, Region: region, Timestamp: s.now().UTC()})
	if err != nil {
		s.log.Warn(ctx, "could not encode location for storage", "error", err)
		return
	}
	if err := s.durable.Set(ctx, common.LocationKey, data); err != nil {
		s.log.Warn(ctx, "could not save location to storage", "error", err)
	}
}

// loadFromStorage restores the cached record if it is younger than the
// cache TTL. Stale entries are ignored, forcing re-resolution.
func (s *LocationService) loadFromStorage(ctx context.Context) bool {
	raw, err := s.durable.Get(ctx, common.LocationKey)
	if err != nil || len(raw) == 0 {
		return false
	}

	var stored storedLocation
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn(ctx, "could not parse stored location", "error", err)
		return false
	}
	if s.now().Sub(stored.Timestamp) >= s.cacheTTL {
		return false
	}

	s.mu.Lock()
	s.current = &stored.Location
	s.region = market.RegionFor(stored.Region.Code)
	s.mu.Unlock()

	s.notify(LocationUpdate{Location: stored.Location, Region: stored.Region})
	return true
}

// handledThisSession reports whether consent was already decided during
// this session: either the session flag is set, or a cached record is
// fresh enough to stand in for a decision.
func (s *LocationService) handledThisSession(ctx context.Context) bool {
	flag, err := s.session.Get(ctx, common.LocationHandledKey)
	if err == nil && len(flag) > 0 {
		s.mu.Lock()
		s.asked = true
		s.mu.Unlock()
		return true
	}

	raw, err := s.durable.Get(ctx, common.LocationKey)
	if err != nil || len(raw) == 0 {
		return false
	}
	var stored storedLocation
	if err := json.Unmarshal(raw, &stored); err != nil {
		return false
	}
	if s.now().Sub(stored.Timestamp) < s.sessionWindow {
		s.mu.Lock()
		s.asked = true
		s.mu.Unlock()
		return true
	}
	return false
}

func (s *LocationService) markHandled(ctx context.Context) {
	s.mu.Lock()
	s.asked = true
	s.mu.Unlock()
	if err := s.session.Set(ctx, common.LocationHandledKey, []byte("true")); err != nil {
		s.log.Warn(ctx, "could not mark location as handled", "error", err)
	}
}

func (s *LocationService) deniedPreference(ctx context.Context) bool {
	v, err := s.durable.Get(ctx, common.LocationDeniedKey)
	return err == nil && string(v) == "true"
}

// ResetSession clears the session-scoped consent flag so the next
// Initialize may prompt again. Intended for diagnostics.
func (s *LocationService) ResetSession(ctx context.Context) {
	s.mu.Lock()
	s.asked = false
	s.consent = models.ConsentUnknown
	s.mu.Unlock()
	if err := s.session.Delete(ctx, common.LocationHandledKey); err != nil {
		s.log.Warn(ctx, "could not reset location session", "error", err)
	}
}

// Location returns the current record, or nil before initialization.
func (s *LocationService) Location() *models.LocationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	record := *s.current
	return &record
}

// Region returns the current market region (DEFAULT before initialization).
func (s *LocationService) Region() market.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// Consent returns the consent state together with the "asked this session"
// flag.
func (s *LocationService) Consent() (models.ConsentState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent, s.asked
}

// FormatCurrency formats amount using the locale of the resolved country
// and the currency of the resolved market region.
func (s *LocationService) FormatCurrency(amount float64) string {
	s.mu.Lock()
	country := "US"
	if s.current != nil && s.current.Country != "" {
		country = s.current.Country
	}
	currency := s.region.Currency
	s.mu.Unlock()

	if currency == "" {
		currency = "USD"
	}
	return market.FormatCurrency(amount, country, currency)
}

// MarketStatus reports whether the market is open in the resolved
// location's timezone.
func (s *LocationService) MarketStatus() market.Status {
	s.mu.Lock()
	timezone := "America/New_York"
	if s.current != nil && s.current.Timezone != "" {
		timezone = s.current.Timezone
	}
	s.mu.Unlock()

	return market.StatusAt(timezone, s.now())
}

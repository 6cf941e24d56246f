package geo

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/OleoMar/alphawave/internal/common"
)

// IPSource returns the device's public IP address.
type IPSource func(ctx context.Context) (net.IP, error)

// GeoIPProvider resolves the device location by looking up its public IP in
// a local GeoLite2/GeoIP2 city database. It is the platform capability of a
// headless client: if the database cannot be opened, the capability is
// simply absent.
type GeoIPProvider struct {
	reader   *geoip2.Reader
	ipSource IPSource
	now      func() time.Time
}

// NewGeoIPProvider opens the MMDB at path and uses ipSource to find the
// device's public IP. Failure to open the database means no platform
// capability; callers should then run without a provider.
func NewGeoIPProvider(path string, ipSource IPSource) (*GeoIPProvider, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open geoip database: %v", common.ErrPlatform, err)
	}
	return &GeoIPProvider{reader: reader, ipSource: ipSource, now: time.Now}, nil
}

// Resolve looks up the device's public IP and maps it to coordinates.
// AccuracyRadius is reported in kilometers by the database and converted
// to meters to match the platform convention.
func (p *GeoIPProvider) Resolve(ctx context.Context) (Fix, error) {
	ip, err := p.ipSource(ctx)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: public ip lookup failed: %v", common.ErrPlatform, err)
	}

	city, err := p.reader.City(ip)
	if err != nil {
		return Fix{}, fmt.Errorf("%w: geoip lookup failed: %v", common.ErrPlatform, err)
	}
	if city.Location.Latitude == 0 && city.Location.Longitude == 0 {
		return Fix{}, fmt.Errorf("%w: position unavailable for %s", common.ErrPlatform, ip)
	}

	return Fix{
		Lat:      city.Location.Latitude,
		Lng:      city.Location.Longitude,
		Accuracy: float64(city.Location.AccuracyRadius) * 1000,
		At:       p.now(),
	}, nil
}

// Close releases the underlying database reader.
func (p *GeoIPProvider) Close() error {
	return p.reader.Close()
}

// HTTPIPSource fetches the public IP from an ip-echo endpoint (a service
// that replies with the caller's address in plain text).
func HTTPIPSource(endpoint string, httpc *http.Client) IPSource {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return func(ctx context.Context) (net.IP, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: ip echo returned %s", common.ErrNetwork, resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
		}

		ip := net.ParseIP(strings.TrimSpace(string(body)))
		if ip == nil {
			return nil, fmt.Errorf("%w: ip echo returned garbage", common.ErrNetwork)
		}
		return ip, nil
	}
}

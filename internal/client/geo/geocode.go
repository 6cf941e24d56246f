package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"

	"github.com/OleoMar/alphawave/internal/client/market"
	"github.com/OleoMar/alphawave/internal/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Place is the reverse-geocoding result for a coordinate pair.
type Place struct {
	CountryCode string
	CountryName string
	City        string
	Region      string
	Timezone    string
}

// Geocoder enriches raw coordinates with country/city/timezone details.
// Failures are non-fatal: callers keep the raw coordinates and degrade to
// the default market region.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (Place, error)
}

// HTTPGeocoder talks to a bigdatacloud-style reverse-geocode endpoint.
type HTTPGeocoder struct {
	baseURL string
	httpc   *http.Client
}

func NewHTTPGeocoder(baseURL string, httpc *http.Client) *HTTPGeocoder {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &HTTPGeocoder{baseURL: baseURL, httpc: httpc}
}

type geocodeResponse struct {
	CountryCode          string `json:"countryCode"`
	CountryName          string `json:"countryName"`
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
}

// Reverse queries the geocoding collaborator. Missing fields degrade to the
// US defaults, matching the upstream contract.
func (g *HTTPGeocoder) Reverse(ctx context.Context, lat, lng float64) (Place, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lng))
	q.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Place{}, err
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("%w: geocoding service returned %s", common.ErrNetwork, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Place{}, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}

	var data geocodeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Place{}, fmt.Errorf("%w: invalid geocoding response: %v", common.ErrNetwork, err)
	}

	place := Place{
		CountryCode: data.CountryCode,
		CountryName: data.CountryName,
		City:        data.City,
		Region:      data.PrincipalSubdivision,
	}
	if place.CountryCode == "" {
		place.CountryCode = "US"
	}
	if place.CountryName == "" {
		place.CountryName = "United States"
	}
	if place.City == "" {
		place.City = data.Locality
	}
	if place.City == "" {
		place.City = "Unknown"
	}
	place.Timezone = market.TimezoneForCountry(place.CountryCode)

	return place, nil
}

// Package market maps locations to market regions and implements the
// region-dependent presentation rules: currency formatting and trading-hours
// status.
package market

// RegionCode identifies one of the fixed market regions.
type RegionCode string

const (
	RegionUS      RegionCode = "US"
	RegionEU      RegionCode = "EU"
	RegionAsia    RegionCode = "ASIA"
	RegionDefault RegionCode = "DEFAULT"
)

// Region describes a market region: display name, quote currency, and the
// reference exchange timezone.
type Region struct {
	Code     RegionCode `json:"code"`
	Name     string     `json:"name"`
	Currency string     `json:"currency"`
	Timezone string     `json:"timezone"`
}

var regions = map[RegionCode]Region{
	RegionUS:      {Code: RegionUS, Name: "United States", Currency: "USD", Timezone: "America/New_York"},
	RegionEU:      {Code: RegionEU, Name: "Europe", Currency: "EUR", Timezone: "Europe/London"},
	RegionAsia:    {Code: RegionAsia, Name: "Asia Pacific", Currency: "JPY", Timezone: "Asia/Tokyo"},
	RegionDefault: {Code: RegionDefault, Name: "Global", Currency: "USD", Timezone: "UTC"},
}

var regionByCountry = map[string]RegionCode{}

func init() {
	countries := map[RegionCode][]string{
		RegionUS:   {"US", "CA"},
		RegionEU:   {"GB", "DE", "FR", "IT", "ES", "NL", "BE", "CH", "AT", "SE", "NO", "DK", "FI"},
		RegionAsia: {"JP", "CN", "KR", "IN", "SG", "HK", "TW", "AU", "NZ"},
	}
	for code, list := range countries {
		for _, c := range list {
			regionByCountry[c] = code
		}
	}
}

// RegionFor returns the region definition for a code. Unknown codes yield
// the DEFAULT region.
func RegionFor(code RegionCode) Region {
	if r, ok := regions[code]; ok {
		return r
	}
	return regions[RegionDefault]
}

// DetermineRegion maps a country code to its market region. It is total and
// deterministic: any country not in the table maps to DEFAULT.
func DetermineRegion(countryCode string) Region {
	if code, ok := regionByCountry[countryCode]; ok {
		return regions[code]
	}
	return regions[RegionDefault]
}

var timezoneByCountry = map[string]string{
	"US": "America/New_York",
	"CA": "America/Toronto",
	"GB": "Europe/London",
	"DE": "Europe/Berlin",
	"FR": "Europe/Paris",
	"JP": "Asia/Tokyo",
	"CN": "Asia/Shanghai",
	"AU": "Australia/Sydney",
	"IN": "Asia/Kolkata",
}

// TimezoneForCountry returns the representative timezone for a country,
// or UTC when the country is not in the table.
func TimezoneForCountry(countryCode string) string {
	if tz, ok := timezoneByCountry[countryCode]; ok {
		return tz
	}
	return "UTC"
}

var localeByCountry = map[string]string{
	"US": "en-US",
	"GB": "en-GB",
	"DE": "de-DE",
	"FR": "fr-FR",
	"JP": "ja-JP",
	"CN": "zh-CN",
}

// LocaleForCountry returns the formatting locale for a country,
// or en-US when the country is not in the table.
func LocaleForCountry(countryCode string) string {
	if l, ok := localeByCountry[countryCode]; ok {
		return l
	}
	return "en-US"
}

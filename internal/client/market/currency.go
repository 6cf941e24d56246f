package market

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency renders amount in currencyCode using the locale implied by
// countryCode. Any formatting failure falls back to a fixed USD/en format.
func FormatCurrency(amount float64, countryCode, currencyCode string) string {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return fallbackFormat(amount)
	}
	tag, err := language.Parse(LocaleForCountry(countryCode))
	if err != nil {
		return fallbackFormat(amount)
	}

	p := message.NewPrinter(tag)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}

func fallbackFormat(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

package payroll

import (
	"fmt"
	"strings"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT IN WORDS
// =============================================================================

type currencyNames struct {
	major string
	minor string // empty for currencies without a circulating minor unit
}

var unitNames = map[string]currencyNames{
	"KES": {"shillings", "cents"},
	"UGX": {"shillings", ""},
	"TZS": {"shillings", ""},
	"RWF": {"francs", ""},
	"NGN": {"naira", "kobo"},
	"GHS": {"cedis", "pesewas"},
	"ZAR": {"rand", "cents"},
}

// AmountInWords spells a payslip amount for the cheque/footer line, e.g.
// "forty-five thousand shillings and 50 cents". The minor part is rounded
// half-up to two places; currencies without a minor unit are rounded to
// whole units.
func AmountInWords(amount decimal.Decimal, currencyCode string) string {
	names, ok := unitNames[currencyCode]
	if !ok {
		names = currencyNames{major: strings.ToLower(currencyCode)}
	}

	negative := amount.IsNegative()
	amount = amount.Abs()
	if names.minor == "" {
		amount = amount.Round(0)
	} else {
		amount = amount.Round(2)
	}

	whole := amount.Truncate(0)
	minor := amount.Sub(whole).Shift(2).IntPart()

	words := num2words.Convert(int(whole.IntPart()))
	if negative {
		words = "minus " + words
	}
	if minor == 0 || names.minor == "" {
		return fmt.Sprintf("%s %s", words, names.major)
	}
	return fmt.Sprintf("%s %s and %02d %s", words, names.major, minor, names.minor)
}

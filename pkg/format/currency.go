// Package format renders currency amounts for display.
package format

import (
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with the given symbol and thousands
// separators (e.g., "-₹1,234.56").
func Currency(symbol string, amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.IsNegative() {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// FixedCurrency formats a fixed-point amount string such as "539322.94" as
// "₹539,322.94". Strings that are not numbers are returned unchanged.
func FixedCurrency(symbol, fixed string) string {
	amount, err := decimal.NewFromString(strings.TrimSpace(fixed))
	if err != nil {
		return fixed
	}
	return Currency(symbol, amount)
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.CurrencyPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount memformat nominal dengan label mata uang, 2 desimal dan pemisah ribuan.
// Example: 15000.5, "IDR" -> "IDR 15,000.50"
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)

	negative := strings.HasPrefix(formatted, "-")
	formatted = strings.TrimPrefix(formatted, "-")

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	out := strings.Join(result, ",") + "." + decimalPart
	if negative {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}

package templates

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

const currencySymbol = "₹"

// FormatCurrency renders whole currency units with thousands separators.
func FormatCurrency(v float64) string {
	return currencySymbol + humanize.Comma(int64(math.Round(v)))
}

// FormatPercent renders a fraction with two decimals, 0.125 -> "12.50%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

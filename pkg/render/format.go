package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// FormatCost renders a dollar amount with thousands separators: "$470,000".
func FormatCost(usd int64) string {
	if usd < 0 {
		return "-$" + humanize.Comma(-usd)
	}
	return "$" + humanize.Comma(usd)
}

// FormatMWh trims trailing zeros: 12 -> "12", 6.5 -> "6.5".
func FormatMWh(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// abbreviate shortens a device id to its leading letter plus any uppercase
// letters and digits: "megapackXL" -> "mXL", "powerPack" -> "pP".
func abbreviate(id string) string {
	var b strings.Builder
	for i, r := range id {
		if i == 0 || unicode.IsUpper(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

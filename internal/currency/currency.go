// Package currency formats amounts the way Indonesian estimates print them.
package currency

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

const maxPrecision = 9

// FormatRupiah rounds v half-up to whole Rupiah and groups thousands with dots:
// 17690625 becomes "Rp 17.690.625", -1500 becomes "-Rp 1.500".
func FormatRupiah(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "Rp -"
	}

	digits := humanize.FormatFloat("#.###,", math.Abs(v))
	if v < 0 && digits != "0" {
		return "-Rp " + digits
	}
	return "Rp " + digits
}

// FormatNumber groups thousands with dots and writes up to precision decimals
// after a comma. Trailing zero decimals are dropped: 12.5 becomes "12,5".
func FormatNumber(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	if precision < 0 {
		precision = 0
	}
	if precision > maxPrecision {
		precision = maxPrecision
	}

	out := humanize.FormatFloat("#.###,"+strings.Repeat("#", precision), v)
	if precision > 0 {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ",")
	}
	return out
}

package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCOP formats an integer amount (in COP minor units) as a string
// like "$12.500". Uses dot as thousands separator (common in Colombia).
// Display formatting happens only here, never inside price accumulators.
func FormatCOP(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		if neg {
			return "-$" + s
		}
		return "$" + s
	}

	var b strings.Builder
	// Pre-allocate: digits + separators + $
	b.Grow(len(s) + len(s)/3 + 2)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

// FormatPerUnit formats a per-unit amount for display next to a tier
// or option value, e.g. "$4,3 c/u" for 430 when the catalog stores
// hundredths. decimals is the currency's minor-unit exponent (0 for
// whole-peso catalogs, 2 for hundredths).
func FormatPerUnit(amount int64, decimals int) string {
	if decimals <= 0 {
		return FormatCOP(amount) + " c/u"
	}

	div := int64(1)
	for i := 0; i < decimals; i++ {
		div *= 10
	}
	whole := amount / div
	frac := amount % div
	if frac < 0 {
		frac = -frac
	}
	if frac == 0 {
		return FormatCOP(whole) + " c/u"
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%0*d", decimals, frac), "0")
	return fmt.Sprintf("%s,%s c/u", FormatCOP(whole), fracStr)
}

package billing

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const receiptWidth = 57

// Render writes the fixed-width printed receipt. Payment and change lines are
// only printed once a payment has been tendered.
func Render(w io.Writer, r Receipt, currency string) error {
	rule := strings.Repeat("-", receiptWidth)
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("%s", rule)
	line("TREATMENT DETAILS")
	line("%s", rule)
	line("%-4s %-22s %15s", "No.", "Treatment", "Fee")
	line("%s", rule)
	for i, it := range r.Items {
		line("%-4d %-22s %s%12s", i+1, it.Treatment, currency, FormatAmount(it.Fee))
	}
	line("%s", rule)
	line("%-28s %s%18s", "Subtotal:", currency, FormatAmount(r.Subtotal))
	line("%-28s %s%18s", "Discount:", currency, FormatAmount(r.Discount))
	line("%s", rule)
	line("%-28s %s%18s", "TOTAL AMOUNT DUE:", currency, FormatAmount(r.Total))
	line("%s", rule)
	if r.Tendered.IsPositive() {
		line("%-28s %s%18s", "Payment:", currency, FormatAmount(r.Tendered))
		line("%-28s %s%18s", "Change:", currency, FormatAmount(r.Change))
		line("%s", rule)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatAmount renders d with two decimals and comma thousands separators,
// e.g. 1234567.5 -> "1,234,567.50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var out strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(ch)
	}
	return sign + out.String() + "." + frac
}

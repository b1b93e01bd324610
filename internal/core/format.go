package core

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// enIN groups amounts the way the reference UI does (en-IN locale).
var enIN = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders an amount as rupees with locale grouping and at most
// two fraction digits, trailing zeros dropped: ₹120, ₹1,234.5, ₹1,25,000.
func FormatAmount(m Money) string {
	units := m.Cents / 100
	rem := m.Cents % 100
	neg := ""
	if units < 0 || rem < 0 {
		neg = "-"
		units, rem = -units, -rem
	}
	s := enIN.Sprintf("%v", number.Decimal(units))
	switch {
	case rem == 0:
		return neg + "₹" + s
	case rem%10 == 0:
		return neg + "₹" + s + "." + strconv.FormatInt(rem/10, 10)
	default:
		return fmt.Sprintf("%s₹%s.%02d", neg, s, rem)
	}
}

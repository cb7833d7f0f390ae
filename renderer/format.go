package renderer

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money formats an amount in a currency, like "R$1.234,56" or "$1,234.56".
//
// Unknown currencies are rendered as a plain number followed by the code.
func Money(v float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", v, currency)
	}
	dec := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// SignedMoney is like Money with an explicit sign, and "-" for 0.
func SignedMoney(v float64, currency string) string {
	if isZero(v) {
		return "-"
	}
	if v > 0 {
		return "+" + Money(v, currency)
	}
	return Money(v, currency)
}

// Percent formats a value already expressed in %.
func Percent(v float64) string { return fmt.Sprintf("%.2f%%", v) }

// SignedPercent is like Percent with an explicit sign, and "-" for 0.
func SignedPercent(v float64) string {
	if isZero(v) {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

// Quantity formats a number of shares, without useless decimals.
func Quantity(v float64) string {
	return decimal.NewFromFloat(v).Round(6).String()
}

func isZero(v float64) bool { return math.Abs(v) < 0.005 }

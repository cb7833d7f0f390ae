package invest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/invest/date"
	"github.com/shopspring/decimal"
)

// Action is the kind of a Transaction.
type Action int

const (
	Buy Action = iota
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction parses "Buy" or "Sell", case insensitive.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return Buy, fmt.Errorf("%w: unknown order %q", ErrInvalidInput, s)
	}
}

// Transaction is a row of a broker transaction export.
//
// Quantity and Total are positive, Total is in the asset's quote currency.
type Transaction struct {
	Date     date.Date
	Action   Action
	Quantity decimal.Decimal
	Total    decimal.Decimal
	Ticker   string
	Type     string // asset type tag, see AssetType
}

// Validate checks that the transaction can be folded into a position.
func (t Transaction) Validate() error {
	switch {
	case t.Ticker == "":
		return fmt.Errorf("%w: missing ticker", ErrInvalidInput)
	case t.Date.IsZero():
		return fmt.Errorf("%w: %s: missing date", ErrInvalidInput, t.Ticker)
	case t.Action != Buy && t.Action != Sell:
		return fmt.Errorf("%w: %s: invalid action %v", ErrInvalidInput, t.Ticker, t.Action)
	case t.Quantity.IsNegative():
		return fmt.Errorf("%w: %s: negative quantity %v", ErrInvalidInput, t.Ticker, t.Quantity)
	}
	return nil
}

// Chronological returns a copy of txs in ascending date order.
//
// A descending feed (as some brokers export it) is reversed first so that
// same day rows keep their chronological order.
func Chronological(txs []Transaction) []Transaction {
	res := slices.Clone(txs)
	if len(res) > 1 && res[0].Date.After(res[len(res)-1].Date) {
		slices.Reverse(res)
	}
	slices.SortStableFunc(res, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	return res
}

// ByTicker groups transactions by ticker, preserving their relative order.
func ByTicker(txs []Transaction) map[string][]Transaction {
	res := make(map[string][]Transaction)
	for _, tx := range txs {
		res[tx.Ticker] = append(res[tx.Ticker], tx)
	}
	return res
}

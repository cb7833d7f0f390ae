package invest

import (
	"errors"
	"fmt"

	"github.com/etnz/invest/date"
)

var (
	// ErrInvalidInput reports malformed series or transaction input.
	ErrInvalidInput = date.ErrInvalidInput
	// ErrDataUnavailable reports that an external source returned nothing usable.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrUnsupportedIndex reports an unknown inflation index.
	ErrUnsupportedIndex = errors.New("unsupported inflation index")
	// ErrUnsupportedLocation reports an unknown consumer price index region.
	ErrUnsupportedLocation = errors.New("unsupported location")
)

// StaleDataWarning is a non fatal error reporting that the last known price of
// a symbol is older than the previous trading day.
type StaleDataWarning struct {
	Symbol string
	Last   date.Date // last day with a price
	AsOf   date.Date
}

func (w *StaleDataWarning) Error() string {
	return fmt.Sprintf("stale data for %s: last price on %s, as of %s", w.Symbol, w.Last, w.AsOf)
}

// unavailable wraps err as an ErrDataUnavailable, keeping err in the chain.
func unavailable(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), ErrDataUnavailable, err)
}

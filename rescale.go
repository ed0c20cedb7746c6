package moredecimal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest decimal-place count a security can use: beyond it a
// single share no longer fits the int64 storage.
const MaxDecimals = 18

var (
	// ErrInexact is returned when rescaling would drop non-zero digits.
	ErrInexact = errors.New("rounding necessary")
	// ErrOverflow is returned when the rescaled value does not fit an int64.
	ErrOverflow = errors.New("overflow")
)

// AmountKind names the quantity that failed to rescale.
type AmountKind string

const (
	KindShares  AmountKind = "shares"
	KindBalance AmountKind = "balance"
)

// PrecisionError reports a value that cannot be moved to a new scale without
// losing information.
type PrecisionError struct {
	Kind  AmountKind
	Value int64
	Shift int
	Err   error // ErrInexact or ErrOverflow
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("%s %d moved %d places: %v", e.Kind, e.Value, e.Shift, e.Err)
}

func (e *PrecisionError) Unwrap() error { return e.Err }

// Rescale returns value × 10^shift when it is an exact int64.
//
// value is a scaled integer (a quantity stored in units of 10^-decimals); a
// positive shift adds decimal places, a negative one removes them and only
// succeeds when the removed digits are all zeros.
func Rescale(value int64, shift int) (int64, error) {
	if shift == 0 || value == 0 {
		return value, nil
	}
	// Shifts beyond 36 places always fail and may not fit the decimal exponent.
	switch {
	case shift > 2*MaxDecimals:
		return 0, ErrOverflow
	case shift < -2*MaxDecimals:
		return 0, ErrInexact
	}
	d := decimal.New(value, int32(shift))
	if !d.IsInteger() {
		return 0, ErrInexact
	}
	b := d.BigInt()
	if !b.IsInt64() {
		return 0, ErrOverflow
	}
	return b.Int64(), nil
}

// rescaleKind is Rescale with the failure wrapped in a PrecisionError.
func rescaleKind(kind AmountKind, value int64, shift int) (int64, error) {
	v, err := Rescale(value, shift)
	if err != nil {
		return 0, &PrecisionError{Kind: kind, Value: value, Shift: shift, Err: err}
	}
	return v, nil
}

// Shares returns the exact quantity represented by a stored value.
func Shares(value int64, decimals int) decimal.Decimal {
	return decimal.New(value, -int32(decimals))
}

// FormatShares formats a stored value with exactly decimals fractional digits.
func FormatShares(value int64, decimals int) string {
	return Shares(value, decimals).StringFixed(int32(decimals))
}

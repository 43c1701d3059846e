package domain

import (
	"math/bits"
	"strconv"
)

// Amount is an unsigned quantity of base-asset units or shares.
// All vault arithmetic is integer arithmetic on Amount; there is no fractional unit.
type Amount uint64

// MaxAmount is the largest representable amount.
const MaxAmount = Amount(^uint64(0))

// Add returns a+b, or ErrAmountOverflow if the sum does not fit.
func (a Amount) Add(b Amount) (Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return Amount(sum), nil
}

// Sub returns a-b, or ErrInsufficientBalance if b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		return 0, ErrInsufficientBalance
	}
	return Amount(diff), nil
}

// SaturatingSub returns a-b clamped at zero.
func (a Amount) SaturatingSub(b Amount) Amount {
	if b >= a {
		return 0
	}
	return a - b
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// ParseAmount parses a base-10 amount string.
func ParseAmount(s string) (Amount, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Amount(v), nil
}

// MulDiv returns floor(x*y/d).
//
// The product is formed in 128 bits so x*y never overflows on its own; only a
// quotient that does not fit in 64 bits is reported as ErrAmountOverflow.
// Flooring is the only rounding mode: every conversion in the vault rounds
// toward the vault and away from the caller.
func MulDiv(x, y, d Amount) (Amount, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(uint64(x), uint64(y))
	if hi >= uint64(d) {
		return 0, ErrAmountOverflow
	}
	q, _ := bits.Div64(hi, lo, uint64(d))
	return Amount(q), nil
}

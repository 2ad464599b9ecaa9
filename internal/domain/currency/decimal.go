// internal/domain/currency/decimal.go
package currency

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Precision is the number of significant digits kept by every context-rounded
// operation. Ties round half-up (away from zero). Stored ledgers were produced
// under these rules, so they must not change.
const Precision = 28

var two = decimal.NewFromInt(2)

// numDigits counts the digits of the coefficient of d.
func numDigits(d decimal.Decimal) int {
	return len(new(big.Int).Abs(d.Coefficient()).String())
}

// adjustedExponent is the power of ten of the most significant digit of d.
func adjustedExponent(d decimal.Decimal) int {
	return numDigits(d) + int(d.Exponent()) - 1
}

// Round applies the context to d: at most Precision significant digits, half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	n := numDigits(d)
	if n <= Precision {
		return d
	}
	places := Precision - n - int(d.Exponent())
	return d.Round(int32(places))
}

// Mul returns a*b rounded to the context.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Shift returns d*10^exp rounded to the context.
func Shift(d decimal.Decimal, exp int) decimal.Decimal {
	return Round(d.Shift(int32(exp)))
}

// Quo returns a/b correctly rounded to the context. b must not be zero.
func Quo(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		panic("currency: division by zero")
	}
	if a.IsZero() {
		return decimal.Zero
	}

	// The leading digit of a/b sits at 10^e or 10^(e-1).
	e := adjustedExponent(a) - adjustedExponent(b)
	places := Precision - e
	q, r := a.QuoRem(b, int32(places))
	if numDigits(q) > Precision {
		places--
		q, r = a.QuoRem(b, int32(places))
	}

	// q is truncated toward zero; bump the last digit when |r| is at least half a unit.
	unit := b.Abs().Shift(int32(-places))
	if r.Abs().Mul(two).Cmp(unit) >= 0 {
		step := decimal.New(1, int32(-places))
		if a.Sign()*b.Sign() < 0 {
			step = step.Neg()
		}
		q = q.Add(step)
	}
	return Round(q)
}

var ErrAmountOutOfRange = fmt.Errorf("amount out of int64 range")

var (
	minInt64 = big.NewInt(math.MinInt64)
	maxInt64 = big.NewInt(math.MaxInt64)
)

// RoundToInt rounds d half-up to the nearest integer.
func RoundToInt(d decimal.Decimal) (int64, error) {
	n := d.Round(0).BigInt()
	if n.Cmp(minInt64) < 0 || n.Cmp(maxInt64) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, d)
	}
	return n.Int64(), nil
}

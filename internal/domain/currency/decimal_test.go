package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundKeepsShortValues(t *testing.T) {
	t.Parallel()
	d := dec("1234.5678")
	if got := Round(d); !got.Equal(d) {
		t.Fatalf("Round(%s) = %s, want unchanged", d, got)
	}
}

func TestRoundToPrecision(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		// 30 significant digits -> 28, half-up
		{in: "1.23456789012345678901234567850", want: "1.234567890123456789012345679"},
		{in: "-1.23456789012345678901234567850", want: "-1.234567890123456789012345679"},
		{in: "1.23456789012345678901234567849", want: "1.234567890123456789012345678"},
		{in: "123456789012345678901234567890", want: "123456789012345678901234567900"},
	}
	for _, tt := range tests {
		if got := Round(dec(tt.in)); !got.Equal(dec(tt.want)) {
			t.Errorf("Round(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestQuo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want string
	}{
		{a: "1", b: "3", want: "0.3333333333333333333333333333"},
		{a: "2", b: "3", want: "0.6666666666666666666666666667"},
		{a: "-2", b: "3", want: "-0.6666666666666666666666666667"},
		{a: "1", b: "0.8", want: "1.25"},
		{a: "9", b: "1", want: "9"},
		{a: "1", b: "1.0926", want: "0.9152480322167307340289218378"},
		{a: "0", b: "7", want: "0"},
	}
	for _, tt := range tests {
		if got := Quo(dec(tt.a), dec(tt.b)); !got.Equal(dec(tt.want)) {
			t.Errorf("Quo(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestQuoByZeroPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on division by zero")
		}
	}()
	Quo(decimal.NewFromInt(1), decimal.Zero)
}

func TestRoundToInt(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want int64
	}{
		{in: "2.5", want: 3},
		{in: "2.4999", want: 2},
		{in: "-2.5", want: -3},
		{in: "10", want: 10},
	}
	for _, tt := range tests {
		got, err := RoundToInt(dec(tt.in))
		if err != nil {
			t.Fatalf("RoundToInt(%s) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("RoundToInt(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRoundToIntOutOfRange(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"9223372036854775807.4", "-9223372036854775808.4"} {
		if _, err := RoundToInt(dec(in)); err != nil {
			t.Errorf("RoundToInt(%s) error: %v, want fits", in, err)
		}
	}
	for _, in := range []string{"9223372036854775807.5", "-9223372036854775808.5", "9e21"} {
		if _, err := RoundToInt(dec(in)); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("RoundToInt(%s) error = %v, want ErrAmountOutOfRange", in, err)
		}
	}
}

func TestMulAndShift(t *testing.T) {
	t.Parallel()
	if got := Mul(dec("1000"), dec("1.0926")); !got.Equal(dec("1092.6")) {
		t.Errorf("Mul = %s, want 1092.6", got)
	}
	if got := Shift(dec("1092.6"), -2); !got.Equal(dec("10.926")) {
		t.Errorf("Shift = %s, want 10.926", got)
	}
}

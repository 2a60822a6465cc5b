// Package decimal implements an unsigned decimal number scaled by a WAD
// (10^18), preserving precision up to 18 decimal places over a 256-bit
// magnitude. Arithmetic mirrors the reference pricing engine exactly: every
// operation is checked, and the fallback scheduling used to avoid overflow on
// large operands is part of the numeric contract, not an optimization.
package decimal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Scale is the number of decimal places carried by a Decimal.
const Scale = 18

var (
	wad     = uint256.NewInt(1_000_000_000_000_000_000)
	halfWad = uint256.NewInt(500_000_000_000_000_000)
)

// Wad returns the 10^18 scaling factor.
func Wad() *uint256.Int {
	return wad.Clone()
}

// Decimal is an immutable unsigned decimal value, precise to 18 digits.
type Decimal struct {
	v uint256.Int
}

// FromUint64 converts an integer into its WAD-scaled representation.
func FromUint64(v uint64) Decimal {
	var d Decimal
	d.v.Mul(uint256.NewInt(v), wad)
	return d
}

// FromRaw wraps an already WAD-scaled value.
func FromRaw(raw *uint256.Int) Decimal {
	var d Decimal
	d.v.Set(raw)
	return d
}

// Parse converts a base-10 decimal string such as "3", "1.0" or "0.5" into a
// Decimal. At most 18 fractional digits are accepted.
func Parse(s string) (Decimal, error) {
	intStr, fracStr, _ := strings.Cut(s, ".")
	if intStr == "" && fracStr == "" {
		return Decimal{}, fmt.Errorf("%w: empty decimal %q", ErrOutOfRange, s)
	}
	if intStr == "" {
		intStr = "0"
	}

	var v uint256.Int
	if err := v.SetFromDecimal(intStr); err != nil {
		return Decimal{}, fmt.Errorf("parse integer part %q: %w", intStr, err)
	}
	if _, over := v.MulOverflow(&v, wad); over {
		return Decimal{}, ErrOverflow
	}

	if fracStr != "" {
		if len(fracStr) > Scale {
			return Decimal{}, fmt.Errorf("%w: more than %d fractional digits", ErrOutOfRange, Scale)
		}
		f, err := strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return Decimal{}, fmt.Errorf("parse fractional part %q: %w", fracStr, err)
		}
		scale := uint256.NewInt(1)
		for i := 0; i < len(fracStr); i++ {
			scale.Mul(scale, uint256.NewInt(10))
		}
		frac := new(uint256.Int).Mul(uint256.NewInt(f), wad)
		frac.Div(frac, scale)
		v.Add(&v, frac)
	}

	return Decimal{v: v}, nil
}

// MustParse is Parse for known-good literals; it panics on malformed input.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns a copy of the underlying WAD-scaled value.
func (d Decimal) Raw() *uint256.Int {
	return d.v.Clone()
}

func (d Decimal) IsZero() bool {
	return d.v.IsZero()
}

// Cmp compares d and o, returning -1, 0 or +1.
func (d Decimal) Cmp(o Decimal) int {
	return d.v.Cmp(&o.v)
}

func (d Decimal) Add(o Decimal) (Decimal, error) {
	var sum uint256.Int
	if _, over := sum.AddOverflow(&d.v, &o.v); over {
		return Decimal{}, ErrOverflow
	}
	return Decimal{v: sum}, nil
}

func (d Decimal) Sub(o Decimal) (Decimal, error) {
	if d.v.Lt(&o.v) {
		return Decimal{}, ErrNegativeResult
	}
	var diff uint256.Int
	diff.Sub(&d.v, &o.v)
	return Decimal{v: diff}, nil
}

// Mul multiplies two decimals. When the full-precision product would overflow
// 256 bits, the larger operand is downscaled first; the resulting precision
// loss matches the reference implementation.
func (d Decimal) Mul(o Decimal) (Decimal, error) {
	var prod uint256.Int
	if _, over := prod.MulOverflow(&d.v, &o.v); !over {
		prod.Div(&prod, wad)
		return Decimal{v: prod}, nil
	}

	var scaled uint256.Int
	if d.v.Cmp(&o.v) >= 0 {
		scaled.Div(&d.v, wad)
		if _, over := scaled.MulOverflow(&scaled, &o.v); over {
			return Decimal{}, ErrOverflow
		}
	} else {
		scaled.Div(&o.v, wad)
		if _, over := scaled.MulOverflow(&scaled, &d.v); over {
			return Decimal{}, ErrOverflow
		}
	}
	return Decimal{v: scaled}, nil
}

// Div divides d by o. The numerator is re-scaled before dividing; when that
// would overflow, the computation falls back to the reference scheduling,
// dividing first and rescaling after.
func (d Decimal) Div(o Decimal) (Decimal, error) {
	if o.v.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}

	var num uint256.Int
	if _, over := num.MulOverflow(&d.v, wad); !over {
		num.Div(&num, &o.v)
		return Decimal{v: num}, nil
	}

	var q uint256.Int
	if d.v.Cmp(&o.v) >= 0 {
		q.Div(&d.v, &o.v)
		if _, over := q.MulOverflow(&q, wad); over {
			return Decimal{}, ErrOverflow
		}
	} else {
		var den uint256.Int
		den.Div(&o.v, wad)
		if den.IsZero() {
			return Decimal{}, ErrDivisionByZero
		}
		q.Div(&d.v, &den)
	}
	return Decimal{v: q}, nil
}

// Floor rounds toward negative infinity and returns the integer part.
func (d Decimal) Floor() (uint64, error) {
	var q uint256.Int
	q.Div(&d.v, wad)
	if !q.IsUint64() {
		return 0, ErrOutOfRange
	}
	return q.Uint64(), nil
}

// Trunc discards the fractional part, rounding toward zero. On an unsigned
// value this coincides with Floor; the legacy quoting path rounds by
// truncation and calls this instead.
func (d Decimal) Trunc() (uint64, error) {
	var q uint256.Int
	q.Div(&d.v, wad)
	if !q.IsUint64() {
		return 0, ErrOutOfRange
	}
	return q.Uint64(), nil
}

// Ceil rounds toward positive infinity and returns the integer part.
func (d Decimal) Ceil() (uint64, error) {
	var q uint256.Int
	q.Sub(wad, uint256.NewInt(1))
	if _, over := q.AddOverflow(&q, &d.v); over {
		return 0, ErrOverflow
	}
	q.Div(&q, wad)
	if !q.IsUint64() {
		return 0, ErrOutOfRange
	}
	return q.Uint64(), nil
}

// Round rounds half-up and returns the integer part.
func (d Decimal) Round() (uint64, error) {
	var q uint256.Int
	if _, over := q.AddOverflow(halfWad, &d.v); over {
		return 0, ErrOverflow
	}
	q.Div(&q, wad)
	if !q.IsUint64() {
		return 0, ErrOutOfRange
	}
	return q.Uint64(), nil
}

// String renders the value with all 18 fractional digits, e.g. "1.500000000000000000".
func (d Decimal) String() string {
	s := d.v.Dec()
	if len(s) <= Scale {
		return "0." + strings.Repeat("0", Scale-len(s)) + s
	}
	return s[:len(s)-Scale] + "." + s[len(s)-Scale:]
}

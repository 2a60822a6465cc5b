// Package fixedpoint implements the unsigned fixed-point numeric type used by
// the legacy quoting curve: a 128-bit magnitude with 64 fractional bits
// (raw = value * 2^64). All operations are checked and bit-reproducible;
// results must match the authoritative on-chain computation exactly, so no
// floating point is used anywhere.
package fixedpoint

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/suilend/steamm-ox/pkg/decimal"
)

// ln2Raw is ln(2) in the fixed 64-fractional-bit representation.
const ln2Raw = 12_786_308_645_202_655_660

const fracBits = 64

// FixedPoint64 is an immutable non-negative rational with 64 fractional bits.
// The zero value is 0.
type FixedPoint64 struct {
	raw uint256.Int
}

// FromRaw wraps a raw (already shifted) value, rejecting magnitudes beyond
// 128 bits.
func FromRaw(raw *uint256.Int) (FixedPoint64, error) {
	if raw.BitLen() > 128 {
		return FixedPoint64{}, ErrOutOfRange
	}
	var x FixedPoint64
	x.raw.Set(raw)
	return x, nil
}

// FromUint64 converts an integer by shifting it into the fixed representation.
func FromUint64(v uint64) FixedPoint64 {
	var x FixedPoint64
	x.raw.Lsh(uint256.NewInt(v), fracBits)
	return x
}

func One() FixedPoint64 {
	return FromUint64(1)
}

// Ln2 returns the fixed-point constant for ln(2).
func Ln2() FixedPoint64 {
	var x FixedPoint64
	x.raw.SetUint64(ln2Raw)
	return x
}

func Zero() FixedPoint64 {
	return FixedPoint64{}
}

// FromRational floors numerator/denominator into the fixed representation.
// A nonzero ratio that rounds to zero is an underflow, not a silent zero.
func FromRational(numerator, denominator uint64) (FixedPoint64, error) {
	if denominator == 0 {
		return FixedPoint64{}, ErrDivisionByZero
	}
	var q uint256.Int
	q.Lsh(uint256.NewInt(numerator), fracBits)
	q.Div(&q, uint256.NewInt(denominator))
	if q.IsZero() && numerator != 0 {
		return FixedPoint64{}, ErrUnderflow
	}
	return FromRaw(&q)
}

// FromDecimal converts a WAD-scaled decimal into the fixed representation.
func FromDecimal(d decimal.Decimal) (FixedPoint64, error) {
	scaled := d.Raw()
	scaled.Lsh(scaled, fracBits)
	scaled.Div(scaled, decimal.Wad())
	if scaled.BitLen() > 128 {
		return FixedPoint64{}, fmt.Errorf("%w: decimal too large for fixed point", ErrOutOfRange)
	}
	return FromRaw(scaled)
}

// Raw returns a copy of the underlying shifted value.
func (x FixedPoint64) Raw() *uint256.Int {
	return x.raw.Clone()
}

func (x FixedPoint64) IsZero() bool {
	return x.raw.IsZero()
}

// Cmp compares x and y, returning -1, 0 or +1.
func (x FixedPoint64) Cmp(y FixedPoint64) int {
	return x.raw.Cmp(&y.raw)
}

func Max(x, y FixedPoint64) FixedPoint64 {
	if x.Cmp(y) > 0 {
		return x
	}
	return y
}

func Min(x, y FixedPoint64) FixedPoint64 {
	if x.Cmp(y) < 0 {
		return x
	}
	return y
}

func (x FixedPoint64) Add(y FixedPoint64) (FixedPoint64, error) {
	var sum uint256.Int
	sum.Add(&x.raw, &y.raw)
	if sum.BitLen() > 128 {
		return FixedPoint64{}, ErrOverflow
	}
	return FixedPoint64{raw: sum}, nil
}

func (x FixedPoint64) Sub(y FixedPoint64) (FixedPoint64, error) {
	if x.raw.Lt(&y.raw) {
		return FixedPoint64{}, ErrNegativeResult
	}
	var diff uint256.Int
	diff.Sub(&x.raw, &y.raw)
	return FixedPoint64{raw: diff}, nil
}

// Mul computes (x*y) >> 64. The full 256-bit product of two 128-bit raw
// values is exact; only the shifted result is range checked.
func (x FixedPoint64) Mul(y FixedPoint64) (FixedPoint64, error) {
	var prod uint256.Int
	prod.Mul(&x.raw, &y.raw)
	prod.Rsh(&prod, fracBits)
	if prod.BitLen() > 128 {
		return FixedPoint64{}, ErrOverflow
	}
	return FixedPoint64{raw: prod}, nil
}

// Div computes (x << 64) / y.
func (x FixedPoint64) Div(y FixedPoint64) (FixedPoint64, error) {
	if y.raw.IsZero() {
		return FixedPoint64{}, ErrDivisionByZero
	}
	var q uint256.Int
	q.Lsh(&x.raw, fracBits)
	q.Div(&q, &y.raw)
	if q.BitLen() > 128 {
		return FixedPoint64{}, ErrOverflow
	}
	return FixedPoint64{raw: q}, nil
}

// Pow raises x to an integer exponent by binary exponentiation in the fixed
// representation.
func (x FixedPoint64) Pow(exponent uint64) (FixedPoint64, error) {
	res, err := powRaw(&x.raw, exponent)
	if err != nil {
		return FixedPoint64{}, err
	}
	if res.BitLen() > 128 {
		return FixedPoint64{}, ErrOverflow
	}
	return FromRaw(res)
}

func powRaw(x *uint256.Int, n uint64) (*uint256.Int, error) {
	res := new(uint256.Int).Lsh(uint256.NewInt(1), fracBits)
	base := x.Clone()
	for n != 0 {
		if n&1 != 0 {
			if _, over := res.MulOverflow(res, base); over {
				return nil, ErrOverflow
			}
			res.Rsh(res, fracBits)
		}
		n >>= 1
		if _, over := base.MulOverflow(base, base); over {
			return nil, ErrOverflow
		}
		base.Rsh(base, fracBits)
	}
	return res, nil
}

// Log2Plus64 returns log2 of the raw value, i.e. log2(x) + 64 in the fixed
// representation. The fractional part is extracted bit by bit over 64
// double-and-compare iterations after normalizing the mantissa into
// [2^63, 2^64).
func (x FixedPoint64) Log2Plus64() (FixedPoint64, error) {
	if x.raw.IsZero() {
		return FixedPoint64{}, ErrLogOfZero
	}

	integerPart := uint(x.raw.BitLen() - 1)
	var m uint256.Int
	if integerPart >= 63 {
		m.Rsh(&x.raw, integerPart-63)
	} else {
		m.Lsh(&x.raw, 63-integerPart)
	}

	var frac uint64
	for delta := uint64(1) << 63; delta != 0; delta >>= 1 {
		m.Mul(&m, &m)
		m.Rsh(&m, 63)
		if m.BitLen() > 64 {
			frac += delta
			m.Rsh(&m, 1)
		}
	}

	var raw uint256.Int
	raw.Lsh(uint256.NewInt(uint64(integerPart)), fracBits)
	raw.Add(&raw, uint256.NewInt(frac))
	return FromRaw(&raw)
}

// LnPlus64Ln2 returns ln(x) + 64*ln(2), the natural log shifted so it stays
// positive for all representable inputs.
func (x FixedPoint64) LnPlus64Ln2() (FixedPoint64, error) {
	l, err := x.Log2Plus64()
	if err != nil {
		return FixedPoint64{}, err
	}
	var r uint256.Int
	r.Mul(&l.raw, uint256.NewInt(ln2Raw))
	r.Rsh(&r, fracBits)
	return FromRaw(&r)
}

// MulDiv computes (n1*...*nk)/(d1*...*dm), scheduling multiplications and
// divisions to maximize precision while avoiding overflow: operands are
// processed smallest first (after a descending sort), and an overflowing
// multiplication is deferred by consuming a division instead.
func MulDiv(numerators, denominators []FixedPoint64) (FixedPoint64, error) {
	if len(numerators) == 0 {
		return FixedPoint64{}, ErrNoNumerators
	}

	nums := append([]FixedPoint64(nil), numerators...)
	dens := append([]FixedPoint64(nil), denominators...)
	sort.Slice(nums, func(i, j int) bool { return nums[i].Cmp(nums[j]) > 0 })
	sort.Slice(dens, func(i, j int) bool { return dens[i].Cmp(dens[j]) > 0 })

	result := One()
	ni, di := len(nums), len(dens)

	for ni > 0 {
		prod, err := result.Mul(nums[ni-1])
		if err == nil {
			result = prod
			ni--
			continue
		}
		if di == 0 {
			return FixedPoint64{}, ErrOverflow
		}
		result, err = result.Div(dens[di-1])
		if err != nil {
			return FixedPoint64{}, err
		}
		di--
	}

	for di > 0 {
		var err error
		result, err = result.Div(dens[di-1])
		if err != nil {
			return FixedPoint64{}, err
		}
		di--
	}

	return result, nil
}

// Floor returns the integer part, rounding toward zero.
func (x FixedPoint64) Floor() *uint256.Int {
	return new(uint256.Int).Rsh(&x.raw, fracBits)
}

// Ceil returns the integer part, rounding away from zero.
func (x FixedPoint64) Ceil() *uint256.Int {
	fl := x.Floor()
	var back uint256.Int
	back.Lsh(fl, fracBits)
	if back.Eq(&x.raw) {
		return fl
	}
	return fl.Add(fl, uint256.NewInt(1))
}

// Round returns the integer part, rounding half-up.
func (x FixedPoint64) Round() *uint256.Int {
	fl := x.Floor()
	var boundary uint256.Int
	boundary.Lsh(fl, fracBits)
	boundary.Add(&boundary, new(uint256.Int).Lsh(uint256.NewInt(1), 63))
	if x.raw.Lt(&boundary) {
		return fl
	}
	return x.Ceil()
}

// String renders the value with 18 decimal places.
func (x FixedPoint64) String() string {
	intPart := x.Floor()
	var frac uint256.Int
	frac.Lsh(intPart, fracBits)
	frac.Sub(&x.raw, &frac)
	frac.Mul(&frac, decimal.Wad())
	frac.Rsh(&frac, fracBits)
	return fmt.Sprintf("%s.%018s", intPart.Dec(), frac.Dec())
}

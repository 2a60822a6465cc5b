package omm

import (
	"fmt"

	"github.com/suilend/steamm-ox/pkg/fixedpoint"
)

const newtonMaxIter = 20

// QuoteLegacy prices a swap on the legacy curve and applies fee splitting.
// The legacy regime has no fee override.
func QuoteLegacy(p QuoteParams) (SwapQuote, error) {
	amountOut, err := QuoteLegacyNoFees(p)
	if err != nil {
		return SwapQuote{}, err
	}
	return NewSwapQuote(p.AmountIn, amountOut, p.X2Y, p.SwapFeeBps, nil)
}

// QuoteLegacyNoFees computes the gross b-token output for a swap on the
// legacy curve. A trade that would meet or exceed the counterpart reserve
// quotes zero rather than failing: depletion is an expected boundary, not a
// computation fault.
func QuoteLegacyNoFees(p QuoteParams) (uint64, error) {
	reserveX, err := ToUnderlying(p.ReserveX, p.RatioX, RoundTrunc)
	if err != nil {
		return 0, err
	}
	reserveY, err := ToUnderlying(p.ReserveY, p.RatioY, RoundTrunc)
	if err != nil {
		return 0, err
	}

	var amountOut uint64
	if p.X2Y {
		amountIn, err := ToUnderlying(p.AmountIn, p.RatioX, RoundTrunc)
		if err != nil {
			return 0, err
		}
		out, err := legacyAmountOut(amountIn, reserveX, reserveY, p)
		if err != nil {
			return 0, err
		}
		amountOut, err = ToBToken(out, p.RatioY, RoundTrunc)
		if err != nil {
			return 0, err
		}
	} else {
		amountIn, err := ToUnderlying(p.AmountIn, p.RatioY, RoundTrunc)
		if err != nil {
			return 0, err
		}
		out, err := legacyAmountOut(amountIn, reserveX, reserveY, p)
		if err != nil {
			return 0, err
		}
		amountOut, err = ToBToken(out, p.RatioX, RoundTrunc)
		if err != nil {
			return 0, err
		}
	}

	if p.X2Y && amountOut >= p.ReserveY {
		return 0, nil
	}
	if !p.X2Y && amountOut >= p.ReserveX {
		return 0, nil
	}
	return amountOut, nil
}

// legacyAmountOut solves the implicit trade curve over underlying amounts.
// The utilization k relates the incoming amount to the counterpart reserve
// and the price ratio, adjusted for the decimal-exponent difference between
// the two assets; the curve root z then scales the counterpart reserve.
func legacyAmountOut(amountIn, reserveX, reserveY uint64, p QuoteParams) (uint64, error) {
	rx := fixedpoint.FromUint64(reserveX)
	ry := fixedpoint.FromUint64(reserveY)
	px, err := fixedpoint.FromDecimal(p.PriceX)
	if err != nil {
		return 0, fmt.Errorf("price x: %w", err)
	}
	py, err := fixedpoint.FromDecimal(p.PriceY)
	if err != nil {
		return 0, fmt.Errorf("price y: %w", err)
	}
	amp := fixedpoint.FromUint64(uint64(p.Amplifier))
	deltaIn := fixedpoint.FromUint64(amountIn)

	ten := fixedpoint.FromUint64(10)
	var decPow fixedpoint.FixedPoint64
	if p.DecimalsX >= p.DecimalsY {
		decPow, err = ten.Pow(uint64(p.DecimalsX - p.DecimalsY))
	} else {
		var pw fixedpoint.FixedPoint64
		pw, err = ten.Pow(uint64(p.DecimalsY - p.DecimalsX))
		if err == nil {
			decPow, err = fixedpoint.One().Div(pw)
		}
	}
	if err != nil {
		return 0, err
	}

	var k fixedpoint.FixedPoint64
	if p.X2Y {
		k, err = fixedpoint.MulDiv(
			[]fixedpoint.FixedPoint64{deltaIn, px},
			[]fixedpoint.FixedPoint64{ry, py, decPow},
		)
	} else {
		k, err = fixedpoint.MulDiv(
			[]fixedpoint.FixedPoint64{deltaIn, decPow, py},
			[]fixedpoint.FixedPoint64{rx, px},
		)
	}
	if err != nil {
		return 0, err
	}

	maxBound, err := fixedpoint.FromRational(9_999_999_999, 10_000_000_000)
	if err != nil {
		return 0, err
	}
	initialZ := fixedpoint.Min(k, maxBound)

	z, err := newtonRaphson(k, amp, initialZ)
	if err != nil {
		return 0, err
	}

	counterpart := ry
	reserveOut := reserveY
	if !p.X2Y {
		counterpart = rx
		reserveOut = reserveX
	}
	prod, err := z.Mul(counterpart)
	if err != nil {
		return 0, err
	}
	deltaOut := prod.Floor()
	if !deltaOut.IsUint64() || deltaOut.Uint64() >= reserveOut {
		return 0, nil
	}
	return deltaOut.Uint64(), nil
}

// newtonRaphson solves f(z) = (1 - 1/A)z - (1/A)ln(1-z) - k = 0 for
// z in (0,1). Steps whose undamped result would leave (0,1) are retaken with
// a 0.5 damping factor and clamped into [1e-5, 0.999999999999999999].
// The constants are load-bearing for parity with the reference engine.
func newtonRaphson(k, a, initialZ fixedpoint.FixedPoint64) (fixedpoint.FixedPoint64, error) {
	one := fixedpoint.One()
	minZ, err := fixedpoint.FromRational(1, 100_000)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	maxZ, err := fixedpoint.FromRational(999_999_999_999_999_999, 1_000_000_000_000_000_000)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	tol, err := fixedpoint.FromRational(1, 100_000_000_000_000)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	derivFloor, err := fixedpoint.FromRational(1, 10_000_000_000)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	half, err := fixedpoint.FromRational(1, 2)
	if err != nil {
		return fixedpoint.Zero(), err
	}

	z := initialZ
	if initialZ.Cmp(one) >= 0 {
		z = maxZ
	}

	for i := 0; i < newtonMaxIter; i++ {
		fxVal, fxPositive, err := computeF(z, a, k)
		if err != nil {
			return fixedpoint.Zero(), err
		}
		if fxVal.Cmp(tol) < 0 {
			return z, nil
		}

		fp, err := computeFPrime(z, a)
		if err != nil {
			return fixedpoint.Zero(), err
		}
		if fp.Cmp(derivFloor) < 0 {
			return fixedpoint.Zero(), ErrDerivativeNearZero
		}

		fxDivFp, err := fxVal.Div(fp)
		if err != nil {
			return fixedpoint.Zero(), err
		}
		alpha := one
		if fxDivFp.Cmp(one) >= 0 {
			alpha = half
		}
		step, err := fxDivFp.Mul(alpha)
		if err != nil {
			return fixedpoint.Zero(), err
		}

		newZ, err := applyStep(z, step, fxPositive)
		if err != nil {
			return fixedpoint.Zero(), err
		}
		if newZ.IsZero() || newZ.Cmp(one) >= 0 {
			damped, err := fxDivFp.Mul(half)
			if err != nil {
				return fixedpoint.Zero(), err
			}
			newZ, err = applyStep(z, damped, fxPositive)
			if err != nil {
				return fixedpoint.Zero(), err
			}
			newZ = fixedpoint.Max(fixedpoint.Min(newZ, maxZ), minZ)
		}

		var stepSize fixedpoint.FixedPoint64
		if newZ.Cmp(z) >= 0 {
			stepSize, err = newZ.Sub(z)
		} else {
			stepSize, err = z.Sub(newZ)
		}
		if err != nil {
			return fixedpoint.Zero(), err
		}
		if stepSize.Cmp(tol) < 0 {
			// step-size convergence keeps the pre-step iterate, matching
			// the reference engine
			return z, nil
		}

		z = newZ
	}

	return fixedpoint.Zero(), fmt.Errorf("newton-raphson: %w", ErrNotConverged)
}

func applyStep(z, step fixedpoint.FixedPoint64, fxPositive bool) (fixedpoint.FixedPoint64, error) {
	if fxPositive {
		return z.Sub(step)
	}
	return z.Add(step)
}

// computeF evaluates |f(z)| and its sign. The log term goes through the
// shifted natural log: -ln(1-z) = 64ln2 - (ln(1-z) + 64ln2), which keeps
// every intermediate non-negative in the fixed representation.
func computeF(z, a, k fixedpoint.FixedPoint64) (fixedpoint.FixedPoint64, bool, error) {
	one := fixedpoint.One()
	ln2x64, err := fixedpoint.Ln2().Mul(fixedpoint.FromUint64(64))
	if err != nil {
		return fixedpoint.Zero(), false, err
	}

	oneDivA, err := one.Div(a)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}
	coeff, err := one.Sub(oneDivA)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}
	term1, err := z.Mul(coeff)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}

	oneMinusZ, err := one.Sub(z)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}
	lnShifted, err := oneMinusZ.LnPlus64Ln2()
	if err != nil {
		return fixedpoint.Zero(), false, err
	}
	if lnShifted.Cmp(ln2x64) > 0 {
		return fixedpoint.Zero(), false, ErrLogOutOfBounds
	}

	lnMagnitude, err := ln2x64.Sub(lnShifted)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}
	term2, err := oneDivA.Mul(lnMagnitude)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}

	magnitude, err := term1.Add(term2)
	if err != nil {
		return fixedpoint.Zero(), false, err
	}

	if magnitude.Cmp(k) >= 0 {
		diff, err := magnitude.Sub(k)
		return diff, true, err
	}
	diff, err := k.Sub(magnitude)
	return diff, false, err
}

// computeFPrime evaluates f'(z) = 1 - 1/A + 1/(A*(1-z)).
func computeFPrime(z, a fixedpoint.FixedPoint64) (fixedpoint.FixedPoint64, error) {
	one := fixedpoint.One()
	oneDivA, err := one.Div(a)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	oneMinusZ, err := one.Sub(z)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	denom, err := a.Mul(oneMinusZ)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	term3, err := one.Div(denom)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	base, err := one.Sub(oneDivA)
	if err != nil {
		return fixedpoint.Zero(), err
	}
	return base.Add(term3)
}

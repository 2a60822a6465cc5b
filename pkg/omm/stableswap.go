package omm

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/suilend/steamm-ox/pkg/decimal"
)

const (
	// usdScale keeps precision through the integer-only USD pipeline; it is
	// multiplied in before conversion and divided back out after.
	usdScale = 10_000_000_000

	// APrecision is the Curve-convention amplifier scaling constant.
	APrecision = 100

	invariantMaxIter = 255
)

// QuoteStable prices a swap on the StableSwap invariant curve and applies
// fee splitting, widening the effective fee with the oracle confidence
// intervals: the wider of the two tokens' uncertainty ratios overrides the
// configured rate when it is larger.
func QuoteStable(p QuoteParams, confidenceX, confidenceY decimal.Decimal) (SwapQuote, error) {
	amountOut, err := QuoteStableNoFees(p)
	if err != nil {
		return SwapQuote{}, err
	}

	ratioX, err := PriceUncertaintyRatio(p.PriceX, confidenceX)
	if err != nil {
		return SwapQuote{}, fmt.Errorf("uncertainty ratio x: %w", err)
	}
	ratioY, err := PriceUncertaintyRatio(p.PriceY, confidenceY)
	if err != nil {
		return SwapQuote{}, fmt.Errorf("uncertainty ratio y: %w", err)
	}
	override := max(ratioX, ratioY)

	return NewSwapQuote(p.AmountIn, amountOut, p.X2Y, p.SwapFeeBps, &override)
}

// QuoteStableNoFees computes the gross b-token output for a swap on the
// StableSwap curve. Reserves and the input amount are normalized to
// USD-denominated integers before solving; one underlying unit is shaved off
// the output as a conservative rounding margin. Depletion of the counterpart
// reserve quotes zero.
func QuoteStableNoFees(p QuoteParams) (uint64, error) {
	ratioIn := p.RatioY
	if p.X2Y {
		ratioIn = p.RatioX
	}
	amountIn, err := ToUnderlying(p.AmountIn, ratioIn, RoundFloor)
	if err != nil {
		return 0, err
	}
	reserveX, err := ToUnderlying(p.ReserveX, p.RatioX, RoundFloor)
	if err != nil {
		return 0, err
	}
	reserveY, err := ToUnderlying(p.ReserveY, p.RatioY, RoundFloor)
	if err != nil {
		return 0, err
	}

	priceX, err := SplitPrice(p.PriceX)
	if err != nil {
		return 0, fmt.Errorf("split price x: %w", err)
	}
	priceY, err := SplitPrice(p.PriceY)
	if err != nil {
		return 0, fmt.Errorf("split price y: %w", err)
	}

	scaledUsdReserveX := scaledToUSD(reserveX, priceX, p.DecimalsX)
	scaledUsdReserveY := scaledToUSD(reserveY, priceY, p.DecimalsY)

	// Curve convention: the amplifier is A * n^(n-1) * A_PRECISION, n = 2
	scaledAmp := uint256.NewInt(uint64(p.Amplifier) * 2 * APrecision)
	d, err := ComputeD(scaledUsdReserveX, scaledUsdReserveY, scaledAmp)
	if err != nil {
		return 0, err
	}

	if p.X2Y {
		return stableLeg(stableLegInput{
			amountIn:         amountIn,
			decimalsIn:       p.DecimalsX,
			decimalsOut:      p.DecimalsY,
			priceIn:          priceX,
			priceOut:         priceY,
			scaledUsdReserve: scaledUsdReserveX,
			reserveOut:       reserveY,
			bTokenReserveOut: p.ReserveY,
			ratioOut:         p.RatioY,
			scaledAmp:        scaledAmp,
			d:                d,
		})
	}
	return stableLeg(stableLegInput{
		amountIn:         amountIn,
		decimalsIn:       p.DecimalsY,
		decimalsOut:      p.DecimalsX,
		priceIn:          priceY,
		priceOut:         priceX,
		scaledUsdReserve: scaledUsdReserveY,
		reserveOut:       reserveX,
		bTokenReserveOut: p.ReserveX,
		ratioOut:         p.RatioX,
		scaledAmp:        scaledAmp,
		d:                d,
	})
}

type stableLegInput struct {
	amountIn         uint64
	decimalsIn       uint32
	decimalsOut      uint32
	priceIn          SplitOraclePrice
	priceOut         SplitOraclePrice
	scaledUsdReserve *uint256.Int
	reserveOut       uint64
	bTokenReserveOut uint64
	ratioOut         decimal.Decimal
	scaledAmp        *uint256.Int
	d                *uint256.Int
}

func stableLeg(in stableLegInput) (uint64, error) {
	scaledUsdAmountIn := scaledToUSD(in.amountIn, in.priceIn, in.decimalsIn)

	reserveInAfter := new(uint256.Int).Add(in.scaledUsdReserve, scaledUsdAmountIn)
	usdReserveOutAfter, err := ComputeY(reserveInAfter, in.scaledAmp, in.d)
	if err != nil {
		return 0, err
	}

	scaledReserveOutAfter := FromUSD(usdReserveOutAfter, in.priceOut)
	scaledReserveOutAfter.Mul(scaledReserveOutAfter, pow10(in.decimalsOut))
	scaledReserveOutAfter.Div(scaledReserveOutAfter, uint256.NewInt(usdScale))
	if !scaledReserveOutAfter.IsUint64() {
		return 0, ErrAmountOverflow
	}
	reserveOutAfter := scaledReserveOutAfter.Uint64()

	// conservative margin of one underlying unit; a trade that cannot even
	// cover it quotes zero
	if reserveOutAfter >= in.reserveOut {
		return 0, nil
	}
	amountOutUnderlying := in.reserveOut - reserveOutAfter - 1

	amountOut, err := ToBToken(amountOutUnderlying, in.ratioOut, RoundFloor)
	if err != nil {
		return 0, err
	}
	if amountOut > in.bTokenReserveOut {
		return 0, nil
	}
	return amountOut, nil
}

// SplitOraclePrice is an oracle price decomposed into an integer part and an
// optional inverted fractional part (reciprocal of the fractional remainder,
// floored). The decomposition lets USD conversion run on integer multiply,
// divide and add alone.
type SplitOraclePrice struct {
	IntegerPart *uint256.Int
	// InvertedFractionalPart is nil when the price has no fractional
	// remainder; otherwise it is always >= 1.
	InvertedFractionalPart *uint256.Int
}

// SplitPrice decomposes a price into its integer part and the floored
// reciprocal of its fractional remainder.
func SplitPrice(price decimal.Decimal) (SplitOraclePrice, error) {
	integerPart, err := price.Floor()
	if err != nil {
		return SplitOraclePrice{}, err
	}
	frac, err := price.Sub(decimal.FromUint64(integerPart))
	if err != nil {
		return SplitOraclePrice{}, err
	}
	if frac.IsZero() {
		return SplitOraclePrice{IntegerPart: uint256.NewInt(integerPart)}, nil
	}
	inverted, err := decimal.FromUint64(1).Div(frac)
	if err != nil {
		return SplitOraclePrice{}, err
	}
	invertedFloor, err := inverted.Floor()
	if err != nil {
		return SplitOraclePrice{}, err
	}
	return SplitOraclePrice{
		IntegerPart:            uint256.NewInt(integerPart),
		InvertedFractionalPart: uint256.NewInt(invertedFloor),
	}, nil
}

// ToUSD converts a unit amount into a USD amount using a split price:
// amount*integerPart + amount/invertedFractionalPart.
func ToUSD(amount *uint256.Int, price SplitOraclePrice) *uint256.Int {
	out := new(uint256.Int).Mul(amount, price.IntegerPart)
	if price.InvertedFractionalPart != nil {
		out.Add(out, new(uint256.Int).Div(amount, price.InvertedFractionalPart))
	}
	return out
}

// FromUSD converts a USD amount back into a unit amount. The +1 in the
// denominator is a deliberate conservative-rounding bias.
func FromUSD(usdAmount *uint256.Int, price SplitOraclePrice) *uint256.Int {
	if price.InvertedFractionalPart == nil {
		return new(uint256.Int).Div(usdAmount, price.IntegerPart)
	}
	num := new(uint256.Int).Mul(usdAmount, price.InvertedFractionalPart)
	den := new(uint256.Int).Mul(price.IntegerPart, price.InvertedFractionalPart)
	den.Add(den, uint256.NewInt(1))
	return num.Div(num, den)
}

// scaledToUSD lifts an underlying amount by usdScale, converts it to USD and
// normalizes out the asset's decimal exponent.
func scaledToUSD(amount uint64, price SplitOraclePrice, decimals uint32) *uint256.Int {
	scaled := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(usdScale))
	usd := ToUSD(scaled, price)
	return usd.Div(usd, pow10(decimals))
}

func pow10(exp uint32) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp)))
}

// ComputeD solves the two-coin StableSwap invariant D for normalized
// reserves, iterating the Curve-style recurrence from D0 = reserveA+reserveB
// until successive iterates differ by at most one unit. amp is pre-scaled by
// APrecision.
func ComputeD(reserveA, reserveB, amp *uint256.Int) (*uint256.Int, error) {
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrZeroReserve
	}
	if amp.Cmp(uint256.NewInt(APrecision)) < 0 {
		return nil, ErrInvalidAmplifier
	}

	aPrec := uint256.NewInt(APrecision)
	sum := new(uint256.Int).Add(reserveA, reserveB)
	ann := new(uint256.Int).Mul(amp, uint256.NewInt(2)) // n = 2 coins

	d := sum.Clone()
	for i := 0; i < invariantMaxIter; i++ {
		// D_P = D^3 / (4 * reserveA * reserveB)
		dp := d.Clone()
		dp.Mul(dp, d)
		dp.Div(dp, reserveA)
		dp.Mul(dp, d)
		dp.Div(dp, reserveB)
		dp.Div(dp, uint256.NewInt(4))

		dPrev := d.Clone()

		num := new(uint256.Int).Mul(ann, sum)
		num.Div(num, aPrec)
		num.Add(num, new(uint256.Int).Mul(dp, uint256.NewInt(2)))
		num.Mul(num, d)

		den := new(uint256.Int).Sub(ann, aPrec)
		den.Mul(den, d)
		den.Div(den, aPrec)
		den.Add(den, new(uint256.Int).Mul(dp, uint256.NewInt(3)))

		d = num.Div(num, den)

		if withinOne(d, dPrev) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("compute d: %w", ErrNotConverged)
}

// ComputeY solves for the counterpart reserve given the invariant D and the
// updated incoming reserve, by Newton iteration on
// y^2 + (b - D)y - c = 0, seeded at y0 = D.
func ComputeY(reserveIn, amp, d *uint256.Int) (*uint256.Int, error) {
	if reserveIn.IsZero() {
		return nil, ErrZeroReserve
	}
	if amp.Cmp(uint256.NewInt(APrecision)) < 0 {
		return nil, ErrInvalidAmplifier
	}

	aPrec := uint256.NewInt(APrecision)
	ann := new(uint256.Int).Mul(amp, uint256.NewInt(2))

	c := new(uint256.Int).Mul(d, d)
	c.Div(c, new(uint256.Int).Mul(uint256.NewInt(2), reserveIn))
	c.Mul(c, d)
	c.Mul(c, aPrec)
	c.Div(c, new(uint256.Int).Mul(ann, uint256.NewInt(2)))

	b := new(uint256.Int).Mul(d, aPrec)
	b.Div(b, ann)
	b.Add(b, reserveIn)

	y := d.Clone()
	for i := 0; i < invariantMaxIter; i++ {
		yPrev := y.Clone()

		num := new(uint256.Int).Mul(y, y)
		num.Add(num, c)

		den := new(uint256.Int).Mul(uint256.NewInt(2), y)
		den.Add(den, b)
		if _, under := den.SubOverflow(den, d); under {
			return nil, fmt.Errorf("compute y: %w", ErrInvariantDomain)
		}

		y = num.Div(num, den)

		if withinOne(y, yPrev) {
			return y, nil
		}
	}
	return nil, fmt.Errorf("compute y: %w", ErrNotConverged)
}

func withinOne(a, b *uint256.Int) bool {
	var diff uint256.Int
	if a.Cmp(b) >= 0 {
		diff.Sub(a, b)
	} else {
		diff.Sub(b, a)
	}
	return diff.CmpUint64(1) <= 0
}

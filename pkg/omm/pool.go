package omm

import (
	"fmt"

	"github.com/suilend/steamm-ox/pkg/decimal"
)

// QuoterType selects the pricing regime for a pool.
type QuoterType int

const (
	// QuoterLegacy prices against the oracle-anchored Newton-Raphson curve.
	QuoterLegacy QuoterType = iota
	// QuoterStable prices against the StableSwap invariant.
	QuoterStable
)

func (t QuoterType) String() string {
	switch t {
	case QuoterLegacy:
		return "legacy"
	case QuoterStable:
		return "stable"
	default:
		return fmt.Sprintf("QuoterType(%d)", int(t))
	}
}

// Pool is the static configuration of an oracle-priced pool: regime,
// amplifier, per-token decimals and the swap fee rate. Per-quote state
// (reserves, prices, ratios) travels in QuoteParams.
type Pool struct {
	Quoter     QuoterType
	Amplifier  uint32
	DecimalsX  uint32
	DecimalsY  uint32
	SwapFeeBps uint64
}

// QuoteSwap prices a swap against the pool's regime. The confidence
// intervals are required for stable pools, where the oracle uncertainty can
// widen the effective fee; legacy pools ignore them.
func (pl Pool) QuoteSwap(p QuoteParams, confidenceX, confidenceY *decimal.Decimal) (SwapQuote, error) {
	p.Amplifier = pl.Amplifier
	p.DecimalsX = pl.DecimalsX
	p.DecimalsY = pl.DecimalsY
	p.SwapFeeBps = pl.SwapFeeBps

	switch pl.Quoter {
	case QuoterStable:
		if confidenceX == nil || confidenceY == nil {
			return SwapQuote{}, ErrMissingConfidence
		}
		return QuoteStable(p, *confidenceX, *confidenceY)
	default:
		return QuoteLegacy(p)
	}
}

// QuoteSwapNoFees prices a swap against the pool's regime without fee
// assembly, returning the gross output amount.
func (pl Pool) QuoteSwapNoFees(p QuoteParams) (uint64, error) {
	p.Amplifier = pl.Amplifier
	p.DecimalsX = pl.DecimalsX
	p.DecimalsY = pl.DecimalsY
	p.SwapFeeBps = pl.SwapFeeBps

	if pl.Quoter == QuoterStable {
		return QuoteStableNoFees(p)
	}
	return QuoteLegacyNoFees(p)
}

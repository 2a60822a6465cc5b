// Package omm implements the deterministic swap-quote engine for
// oracle-price-based liquidity pools. It mirrors the on-chain pricing engine
// bit for bit so offchain callers (indexers, routers, simulators) can predict
// trade outcomes before submission. Two regimes share the same interface: a
// legacy curve solved by damped Newton-Raphson and a StableSwap-style
// invariant curve solved by fixed-point iteration.
package omm

import (
	"github.com/holiman/uint256"

	"github.com/suilend/steamm-ox/pkg/decimal"
)

// BpsScale is the basis-points denominator shared by fees and uncertainty
// ratios.
const BpsScale = 10_000

// protocolFeeNumerator takes a fixed 2% cut of the collected fee, not of the
// traded amount.
const protocolFeeNumerator = 200

// SwapQuote is the advisory result of a quote request. AmountOut is net of
// both fee components and never negative.
type SwapQuote struct {
	AmountIn     uint64 `json:"amount_in"`
	AmountOut    uint64 `json:"amount_out"`
	ProtocolFees uint64 `json:"protocol_fees"`
	PoolFees     uint64 `json:"pool_fees"`
	X2Y          bool   `json:"x2y"`
}

// QuoteParams is the pool state and trade request shared by both regimes.
// Reserves and the input amount are b-token units; prices are underlying
// oracle prices; ratios map one b-token unit to underlying units.
type QuoteParams struct {
	AmountIn   uint64
	ReserveX   uint64
	ReserveY   uint64
	PriceX     decimal.Decimal
	PriceY     decimal.Decimal
	DecimalsX  uint32
	DecimalsY  uint32
	Amplifier  uint32
	X2Y        bool
	RatioX     decimal.Decimal
	RatioY     decimal.Decimal
	SwapFeeBps uint64
}

// ComputeSwapFees splits a gross amount into protocol and pool fee shares.
// The effective fee numerator is overrideNumerator when supplied and strictly
// greater than the configured rate. Total fee and the protocol's cut both
// round up.
func ComputeSwapFees(amount, swapFeeBps uint64, overrideNumerator *uint64) (protocolFees, poolFees uint64, err error) {
	feeNum := swapFeeBps
	if overrideNumerator != nil && *overrideNumerator > swapFeeBps {
		feeNum = *overrideNumerator
	}

	totalFees, err := mulDivUp(amount, feeNum, BpsScale)
	if err != nil {
		return 0, 0, err
	}
	protocolFees, err = mulDivUp(totalFees, protocolFeeNumerator, BpsScale)
	if err != nil {
		return 0, 0, err
	}
	return protocolFees, totalFees - protocolFees, nil
}

// NewSwapQuote assembles the final quote from a gross output, saturating the
// net amount at zero.
func NewSwapQuote(amountIn, amountOut uint64, x2y bool, swapFeeBps uint64, overrideNumerator *uint64) (SwapQuote, error) {
	protocolFees, poolFees, err := ComputeSwapFees(amountOut, swapFeeBps, overrideNumerator)
	if err != nil {
		return SwapQuote{}, err
	}

	net := amountOut
	if net >= protocolFees {
		net -= protocolFees
	} else {
		net = 0
	}
	if net >= poolFees {
		net -= poolFees
	} else {
		net = 0
	}

	return SwapQuote{
		AmountIn:     amountIn,
		AmountOut:    net,
		ProtocolFees: protocolFees,
		PoolFees:     poolFees,
		X2Y:          x2y,
	}, nil
}

// PriceUncertaintyRatio expresses an oracle confidence interval as basis
// points of the price, floored: floor(confidence * 10000 / price).
func PriceUncertaintyRatio(price, confidence decimal.Decimal) (uint64, error) {
	scaled, err := confidence.Mul(decimal.FromUint64(BpsScale))
	if err != nil {
		return 0, err
	}
	ratio, err := scaled.Div(price)
	if err != nil {
		return 0, err
	}
	return ratio.Floor()
}

// mulDivUp computes ceil(a*b/c) without intermediate overflow.
func mulDivUp(a, b, c uint64) (uint64, error) {
	var n uint256.Int
	n.Mul(uint256.NewInt(a), uint256.NewInt(b))
	n.Add(&n, uint256.NewInt(c-1))
	n.Div(&n, uint256.NewInt(c))
	if !n.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return n.Uint64(), nil
}

package omm

import (
	"fmt"

	"github.com/suilend/steamm-ox/pkg/decimal"
)

// Rounding selects how a b-token/underlying conversion discards its
// fractional remainder. The two quoting regimes use different modes and the
// distinction must stay visible: merging them can move an output by one unit
// and break parity with the reference engine.
type Rounding int

const (
	// RoundFloor rounds toward negative infinity (oracle/StableSwap path).
	RoundFloor Rounding = iota
	// RoundTrunc truncates toward zero (legacy path).
	RoundTrunc
)

// ToUnderlying converts a b-token amount to its underlying amount by
// multiplying with the pool's exchange ratio.
func ToUnderlying(bTokenAmount uint64, ratio decimal.Decimal, mode Rounding) (uint64, error) {
	v, err := decimal.FromUint64(bTokenAmount).Mul(ratio)
	if err != nil {
		return 0, fmt.Errorf("to underlying: %w", err)
	}
	return roundDown(v, mode)
}

// ToBToken converts an underlying amount back to b-token units by dividing
// out the pool's exchange ratio.
func ToBToken(amount uint64, ratio decimal.Decimal, mode Rounding) (uint64, error) {
	v, err := decimal.FromUint64(amount).Div(ratio)
	if err != nil {
		return 0, fmt.Errorf("to btoken: %w", err)
	}
	return roundDown(v, mode)
}

func roundDown(d decimal.Decimal, mode Rounding) (uint64, error) {
	if mode == RoundTrunc {
		return d.Trunc()
	}
	return d.Floor()
}

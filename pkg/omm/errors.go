package omm

import "errors"

var (
	// ErrNotConverged is returned when an invariant solver exhausts its
	// iteration cap without the successive-iterate difference reaching its
	// tolerance.
	ErrNotConverged = errors.New("solver did not converge")

	// ErrDerivativeNearZero is returned when the Newton-Raphson derivative
	// falls below 1e-10 and the step can no longer be trusted.
	ErrDerivativeNearZero = errors.New("derivative near zero")

	// ErrLogOutOfBounds is returned when the logarithm term of the legacy
	// curve leaves its expected bound, which indicates z escaped (0,1).
	ErrLogOutOfBounds = errors.New("log term out of bounds")

	// ErrMissingConfidence is returned when an oracle-regime quote is
	// requested without price confidence intervals for both tokens.
	ErrMissingConfidence = errors.New("price confidence required for oracle quoter")

	// ErrZeroReserve is returned by the StableSwap solvers for an empty
	// reserve, which the invariant recurrences divide by.
	ErrZeroReserve = errors.New("zero reserve")

	// ErrInvalidAmplifier is returned when a pre-scaled amplifier is below
	// the A_PRECISION scaling constant.
	ErrInvalidAmplifier = errors.New("amplifier below precision scale")

	// ErrAmountOverflow is returned when a computed amount does not fit the
	// 64-bit token amount range.
	ErrAmountOverflow = errors.New("amount exceeds uint64 range")

	// ErrInvariantDomain is returned when the counterpart solver's
	// denominator underflows, meaning the reserve/invariant inputs are not a
	// point on the curve.
	ErrInvariantDomain = errors.New("inputs outside invariant domain")
)

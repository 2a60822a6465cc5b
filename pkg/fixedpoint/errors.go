package fixedpoint

import "errors"

var (
	// ErrOutOfRange indicates a raw value above the 128-bit magnitude bound.
	ErrOutOfRange = errors.New("value out of range")

	// ErrOverflow indicates an arithmetic result above the 128-bit bound.
	ErrOverflow = errors.New("overflow")

	// ErrUnderflow indicates a nonzero input that rounded to zero.
	ErrUnderflow = errors.New("result too small")

	// ErrNegativeResult indicates a subtraction with minuend < subtrahend.
	ErrNegativeResult = errors.New("negative result")

	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrLogOfZero indicates a logarithm evaluated at zero.
	ErrLogOfZero = errors.New("log of zero")

	// ErrNoNumerators indicates a MulDiv call with an empty numerator list.
	ErrNoNumerators = errors.New("no numerators")
)

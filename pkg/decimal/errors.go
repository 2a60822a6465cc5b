package decimal

import "errors"

var (
	// ErrOverflow indicates a result exceeding the 256-bit magnitude.
	ErrOverflow = errors.New("decimal overflow")

	// ErrNegativeResult indicates a subtraction that would go below zero.
	ErrNegativeResult = errors.New("negative result")

	// ErrDivisionByZero indicates a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOutOfRange indicates a value that does not fit the requested
	// integer width or accepted precision.
	ErrOutOfRange = errors.New("value out of range")
)

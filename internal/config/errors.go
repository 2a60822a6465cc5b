package config

import "errors"

// ErrInvalidSwapFee indicates that SWAP_FEE_BPS is not a number in the
// 0..10000 range.
var ErrInvalidSwapFee = errors.New("SWAP_FEE_BPS must be an integer between 0 and 10000")

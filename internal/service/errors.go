package service

import "errors"

var (
	ErrZeroAmount    = errors.New("amount_in must be greater than zero")
	ErrEmptyReserves = errors.New("empty reserves")
	ErrZeroPrice     = errors.New("oracle prices must be greater than zero")
	ErrZeroRatio     = errors.New("btoken ratios must be greater than zero")
	ErrZeroAmplifier = errors.New("amplifier must be greater than zero")
)

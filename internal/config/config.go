package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr       string
	LogLevel   string
	LogFormat  string
	SwapFeeBps uint64
}

func FromEnv() (*Config, error) {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":1337"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	var swapFeeBps uint64
	if raw := os.Getenv("SWAP_FEE_BPS"); raw != "" {
		fee, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || fee > 10_000 {
			return nil, ErrInvalidSwapFee
		}
		swapFeeBps = fee
	}

	cfg := &Config{
		Addr:       addr,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		SwapFeeBps: swapFeeBps,
	}

	return cfg, nil
}

package service

import (
	"log/slog"

	"github.com/suilend/steamm-ox/pkg/decimal"
	"github.com/suilend/steamm-ox/pkg/omm"
)

// QuoteService prices swaps against caller-supplied pool state. It holds no
// pool registry: the API is a pure pricing surface and every request carries
// the reserves, oracle prices and ratios it should be quoted against.
type QuoteService struct {
	BaseService
	defaultSwapFeeBps uint64
}

// NewQuoteService constructs a QuoteService. defaultSwapFeeBps applies to
// requests that do not carry an explicit fee rate.
func NewQuoteService(logger *slog.Logger, defaultSwapFeeBps uint64) *QuoteService {
	return &QuoteService{
		BaseService:       BaseService{logger: logger},
		defaultSwapFeeBps: defaultSwapFeeBps,
	}
}

// QuoteRequest is a fully parsed swap pricing request.
type QuoteRequest struct {
	Quoter    omm.QuoterType
	AmountIn  uint64
	ReserveX  uint64
	ReserveY  uint64
	PriceX    decimal.Decimal
	PriceY    decimal.Decimal
	DecimalsX uint32
	DecimalsY uint32
	Amplifier uint32
	X2Y       bool
	RatioX    decimal.Decimal
	RatioY    decimal.Decimal

	// SwapFeeBps overrides the service default when non-nil.
	SwapFeeBps *uint64

	// Confidence intervals are required for StableSwap pools and ignored
	// for legacy ones.
	ConfidenceX *decimal.Decimal
	ConfidenceY *decimal.Decimal
}

// Quote validates the request and prices it against the selected regime.
func (s *QuoteService) Quote(req QuoteRequest) (omm.SwapQuote, error) {
	s.logger.Debug("quoting swap",
		"quoter", req.Quoter.String(),
		"amount_in", req.AmountIn,
		"x2y", req.X2Y,
		"reserve_x", req.ReserveX,
		"reserve_y", req.ReserveY,
	)

	if err := s.validate(req); err != nil {
		return omm.SwapQuote{}, err
	}

	swapFeeBps := s.defaultSwapFeeBps
	if req.SwapFeeBps != nil {
		swapFeeBps = *req.SwapFeeBps
	}

	pool := omm.Pool{
		Quoter:     req.Quoter,
		Amplifier:  req.Amplifier,
		DecimalsX:  req.DecimalsX,
		DecimalsY:  req.DecimalsY,
		SwapFeeBps: swapFeeBps,
	}
	params := omm.QuoteParams{
		AmountIn: req.AmountIn,
		ReserveX: req.ReserveX,
		ReserveY: req.ReserveY,
		PriceX:   req.PriceX,
		PriceY:   req.PriceY,
		X2Y:      req.X2Y,
		RatioX:   req.RatioX,
		RatioY:   req.RatioY,
	}

	quote, err := pool.QuoteSwap(params, req.ConfidenceX, req.ConfidenceY)
	if err != nil {
		return omm.SwapQuote{}, err
	}

	s.logger.Debug("quote computed",
		"amount_out", quote.AmountOut,
		"protocol_fees", quote.ProtocolFees,
		"pool_fees", quote.PoolFees,
	)
	return quote, nil
}

func (s *QuoteService) validate(req QuoteRequest) error {
	if req.AmountIn == 0 {
		return ErrZeroAmount
	}
	if req.ReserveX == 0 || req.ReserveY == 0 {
		return ErrEmptyReserves
	}
	if req.PriceX.IsZero() || req.PriceY.IsZero() {
		return ErrZeroPrice
	}
	if req.RatioX.IsZero() || req.RatioY.IsZero() {
		return ErrZeroRatio
	}
	if req.Amplifier == 0 {
		return ErrZeroAmplifier
	}
	return nil
}

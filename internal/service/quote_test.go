package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/suilend/steamm-ox/pkg/decimal"
	"github.com/suilend/steamm-ox/pkg/omm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validRequest() QuoteRequest {
	return QuoteRequest{
		Quoter:    omm.QuoterLegacy,
		AmountIn:  10_000_000,
		ReserveX:  1_000_000_000_000,
		ReserveY:  1_000_000_000,
		PriceX:    decimal.FromUint64(3),
		PriceY:    decimal.FromUint64(1),
		DecimalsX: 9,
		DecimalsY: 6,
		Amplifier: 1,
		X2Y:       false,
		RatioX:    decimal.FromUint64(1),
		RatioY:    decimal.FromUint64(1),
	}
}

func TestQuoteLegacy(t *testing.T) {
	svc := NewQuoteService(testLogger(), 100)

	quote, err := svc.Quote(validRequest())
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.AmountOut != 3_294_506_105 {
		t.Fatalf("amount out: got %d", quote.AmountOut)
	}
	if quote.ProtocolFees != 665_557 || quote.PoolFees != 32_612_283 {
		t.Fatalf("fees: got %d/%d", quote.ProtocolFees, quote.PoolFees)
	}
}

func TestQuoteFeeOverridesDefault(t *testing.T) {
	svc := NewQuoteService(testLogger(), 100)

	req := validRequest()
	zero := uint64(0)
	req.SwapFeeBps = &zero

	quote, err := svc.Quote(req)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.AmountOut != 3_327_783_945 {
		t.Fatalf("amount out: got %d", quote.AmountOut)
	}
	if quote.ProtocolFees != 0 || quote.PoolFees != 0 {
		t.Fatalf("fees should be zero, got %d/%d", quote.ProtocolFees, quote.PoolFees)
	}
}

func TestQuoteStable(t *testing.T) {
	svc := NewQuoteService(testLogger(), 0)

	req := validRequest()
	req.Quoter = omm.QuoterStable
	conf := decimal.MustParse("0.00005")
	req.ConfidenceX = &conf
	req.ConfidenceY = &conf

	quote, err := svc.Quote(req)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.AmountOut != 5_156_539_130 {
		t.Fatalf("amount out: got %d", quote.AmountOut)
	}
}

func TestQuoteStableWithoutConfidence(t *testing.T) {
	svc := NewQuoteService(testLogger(), 0)

	req := validRequest()
	req.Quoter = omm.QuoterStable

	if _, err := svc.Quote(req); !errors.Is(err, omm.ErrMissingConfidence) {
		t.Fatalf("expected missing confidence, got %v", err)
	}
}

func TestQuoteValidation(t *testing.T) {
	svc := NewQuoteService(testLogger(), 0)

	cases := []struct {
		name   string
		mutate func(*QuoteRequest)
		want   error
	}{
		{"zero amount", func(r *QuoteRequest) { r.AmountIn = 0 }, ErrZeroAmount},
		{"zero reserve x", func(r *QuoteRequest) { r.ReserveX = 0 }, ErrEmptyReserves},
		{"zero reserve y", func(r *QuoteRequest) { r.ReserveY = 0 }, ErrEmptyReserves},
		{"zero price", func(r *QuoteRequest) { r.PriceX = decimal.FromUint64(0) }, ErrZeroPrice},
		{"zero ratio", func(r *QuoteRequest) { r.RatioY = decimal.FromUint64(0) }, ErrZeroRatio},
		{"zero amplifier", func(r *QuoteRequest) { r.Amplifier = 0 }, ErrZeroAmplifier},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := validRequest()
			c.mutate(&req)
			if _, err := svc.Quote(req); !errors.Is(err, c.want) {
				t.Fatalf("got %v, want %v", err, c.want)
			}
		})
	}
}

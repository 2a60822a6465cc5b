package handler

import (
	"strconv"

	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/suilend/steamm-ox/internal/service"
	"github.com/suilend/steamm-ox/pkg/decimal"
	"github.com/suilend/steamm-ox/pkg/omm"
)

type QuoteHandler struct {
	BaseHandler
	service *service.QuoteService
}

func NewQuoteHandler(logger *slog.Logger, svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// QuoteRequest is the raw query-string shape of a pricing request. Ratios
// default to 1.0 and the fee rate defaults to the service configuration when
// omitted.
type QuoteRequest struct {
	Quoter      string `query:"quoter" json:"quoter"`
	AmountIn    string `query:"amount_in" json:"amount_in"`
	ReserveX    string `query:"reserve_x" json:"reserve_x"`
	ReserveY    string `query:"reserve_y" json:"reserve_y"`
	PriceX      string `query:"price_x" json:"price_x"`
	PriceY      string `query:"price_y" json:"price_y"`
	DecimalsX   string `query:"decimals_x" json:"decimals_x"`
	DecimalsY   string `query:"decimals_y" json:"decimals_y"`
	Amplifier   string `query:"amplifier" json:"amplifier"`
	X2Y         string `query:"x2y" json:"x2y"`
	RatioX      string `query:"ratio_x" json:"ratio_x"`
	RatioY      string `query:"ratio_y" json:"ratio_y"`
	SwapFeeBps  string `query:"swap_fee_bps" json:"swap_fee_bps"`
	ConfidenceX string `query:"confidence_x" json:"confidence_x"`
	ConfidenceY string `query:"confidence_y" json:"confidence_y"`
}

func (h *QuoteHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		var raw QuoteRequest
		if err := c.Bind().Query(&raw); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}

		req, err := h.parseRequest(&raw)
		if err != nil {
			return err
		}

		quote, err := h.service.Quote(*req)
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("quote served", "quoter", raw.Quoter, "in", quote.AmountIn, "out", quote.AmountOut)
		return c.JSON(quote)
	}
}

func (h *QuoteHandler) parseRequest(raw *QuoteRequest) (*service.QuoteRequest, error) {
	var req service.QuoteRequest

	switch raw.Quoter {
	case "legacy":
		req.Quoter = omm.QuoterLegacy
	case "stable":
		req.Quoter = omm.QuoterStable
	default:
		return nil, ErrUnknownQuoter
	}

	var err error
	if req.AmountIn, err = parseUint64Field("amount_in", raw.AmountIn); err != nil {
		return nil, err
	}
	if req.ReserveX, err = parseUint64Field("reserve_x", raw.ReserveX); err != nil {
		return nil, err
	}
	if req.ReserveY, err = parseUint64Field("reserve_y", raw.ReserveY); err != nil {
		return nil, err
	}
	if req.PriceX, err = parseDecimalField("price_x", raw.PriceX); err != nil {
		return nil, err
	}
	if req.PriceY, err = parseDecimalField("price_y", raw.PriceY); err != nil {
		return nil, err
	}
	if req.DecimalsX, err = parseUint32Field("decimals_x", raw.DecimalsX); err != nil {
		return nil, err
	}
	if req.DecimalsY, err = parseUint32Field("decimals_y", raw.DecimalsY); err != nil {
		return nil, err
	}
	if req.Amplifier, err = parseUint32Field("amplifier", raw.Amplifier); err != nil {
		return nil, err
	}
	if req.X2Y, err = parseBoolField("x2y", raw.X2Y); err != nil {
		return nil, err
	}

	req.RatioX = decimal.FromUint64(1)
	if raw.RatioX != "" {
		if req.RatioX, err = parseDecimalField("ratio_x", raw.RatioX); err != nil {
			return nil, err
		}
	}
	req.RatioY = decimal.FromUint64(1)
	if raw.RatioY != "" {
		if req.RatioY, err = parseDecimalField("ratio_y", raw.RatioY); err != nil {
			return nil, err
		}
	}

	if raw.SwapFeeBps != "" {
		fee, err := parseUint64Field("swap_fee_bps", raw.SwapFeeBps)
		if err != nil {
			return nil, err
		}
		req.SwapFeeBps = &fee
	}

	if req.Quoter == omm.QuoterStable {
		if raw.ConfidenceX == "" || raw.ConfidenceY == "" {
			return nil, ErrConfidenceRequired
		}
		cx, err := parseDecimalField("confidence_x", raw.ConfidenceX)
		if err != nil {
			return nil, err
		}
		cy, err := parseDecimalField("confidence_y", raw.ConfidenceY)
		if err != nil {
			return nil, err
		}
		req.ConfidenceX = &cx
		req.ConfidenceY = &cy
	}

	return &req, nil
}

func parseUint64Field(field, value string) (uint64, error) {
	if value == "" {
		return 0, NewFieldRequired(field)
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, NewInvalidField(field, err)
	}
	return v, nil
}

func parseUint32Field(field, value string) (uint32, error) {
	if value == "" {
		return 0, NewFieldRequired(field)
	}
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, NewInvalidField(field, err)
	}
	return uint32(v), nil
}

func parseBoolField(field, value string) (bool, error) {
	if value == "" {
		return false, NewFieldRequired(field)
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, NewInvalidField(field, err)
	}
	return v, nil
}

func parseDecimalField(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Decimal{}, NewFieldRequired(field)
	}
	d, err := decimal.Parse(value)
	if err != nil {
		return decimal.Decimal{}, NewInvalidField(field, err)
	}
	return d, nil
}

func (h *QuoteHandler) handleServiceError(err error) error {
	switch err {
	case service.ErrZeroAmount:
		return ErrZeroAmountBadRequest
	case service.ErrEmptyReserves:
		return ErrEmptyReservesBadRequest
	case service.ErrZeroPrice:
		return ErrZeroPriceBadRequest
	case service.ErrZeroRatio:
		return ErrZeroRatioBadRequest
	case service.ErrZeroAmplifier:
		return ErrZeroAmplifierBadRequest
	default:
		h.logger.Error("service quote failed", "err", err)
		return ErrQuoteFailedInternal
	}
}

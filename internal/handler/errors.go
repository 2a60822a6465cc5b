package handler

import "github.com/gofiber/fiber/v3"

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrUnknownQuoter is returned when the quoter parameter is neither "legacy"
// nor "stable".
var ErrUnknownQuoter = fiber.NewError(fiber.StatusBadRequest, "quoter must be \"legacy\" or \"stable\"")

// ErrConfidenceRequired is returned when a stable quote request omits either
// price confidence interval.
var ErrConfidenceRequired = fiber.NewError(fiber.StatusBadRequest, "confidence_x and confidence_y are required for stable quotes")

// ErrZeroAmountBadRequest maps a zero input amount to a 400 error.
var ErrZeroAmountBadRequest = fiber.NewError(fiber.StatusBadRequest, "amount_in must be greater than zero")

// ErrEmptyReservesBadRequest maps empty-reserve pool state to a 400 error.
var ErrEmptyReservesBadRequest = fiber.NewError(fiber.StatusBadRequest, "pool has insufficient reserves")

// ErrZeroPriceBadRequest maps zero oracle prices to a 400 error.
var ErrZeroPriceBadRequest = fiber.NewError(fiber.StatusBadRequest, "oracle prices must be greater than zero")

// ErrZeroRatioBadRequest maps zero btoken ratios to a 400 error.
var ErrZeroRatioBadRequest = fiber.NewError(fiber.StatusBadRequest, "btoken ratios must be greater than zero")

// ErrZeroAmplifierBadRequest maps a zero amplifier to a 400 error.
var ErrZeroAmplifierBadRequest = fiber.NewError(fiber.StatusBadRequest, "amplifier must be greater than zero")

// ErrQuoteFailedInternal signals a generic server-side pricing error.
var ErrQuoteFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "quote failed")

// NewFieldRequired returns a 400 Bad Request for a missing query field.
func NewFieldRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" is required")
}

// NewInvalidField returns a 400 Bad Request for a malformed query field.
func NewInvalidField(field string, err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+": "+err.Error())
}

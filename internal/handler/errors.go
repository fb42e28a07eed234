package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/uniswap-pair/internal/ledger"
	"github.com/nulln0ne/uniswap-pair/internal/pair"
	"github.com/nulln0ne/uniswap-pair/internal/safemath"
	"github.com/nulln0ne/uniswap-pair/internal/service"
)

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrInvalidBody indicates that the request body is not the expected JSON.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrSameAddresses is returned when src and dst addresses are identical.
var ErrSameAddresses = fiber.NewError(fiber.StatusBadRequest, "src and dst addresses cannot be the same")

// ErrAmountRequired is returned when the amount parameter is missing.
var ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amount is required")

// ErrAmountsExclusive is returned when both src_amount and dst_amount are set.
var ErrAmountsExclusive = fiber.NewError(fiber.StatusBadRequest, "only one of src_amount and dst_amount may be set")

// ErrInvalidAmountFormat is returned when the amount cannot be parsed as a
// base-10 integer.
var ErrInvalidAmountFormat = fiber.NewError(fiber.StatusBadRequest, "invalid amount format")

// ErrAmountNonPositive is returned when the amount is zero or negative.
var ErrAmountNonPositive = fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")

// ErrSameTokenBadRequest maps a same-token validation failure to a 400 error.
var ErrSameTokenBadRequest = fiber.NewError(fiber.StatusBadRequest, "src and dst tokens cannot be the same")

// ErrEmptyReservesBadRequest maps empty-reserve pool state to a 400 error.
var ErrEmptyReservesBadRequest = fiber.NewError(fiber.StatusBadRequest, "pool has insufficient reserves")

var ErrPairMismatchBadRequest = fiber.NewError(fiber.StatusBadRequest, "src and dst are not the tokens of the pool")

var ErrUnknownTokenBadRequest = fiber.NewError(fiber.StatusBadRequest, "token is not part of the pool")

// ErrEstimationFailedInternal signals a generic server-side estimation error.
var ErrEstimationFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "estimation failed")

var ErrTransitionFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "transition failed")

// NewInvalidAmountIn wraps an amount parsing error into a 400 Bad Request with
// a descriptive message.
func NewInvalidAmountIn(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid amount_in: "+err.Error())
}

func NewInvalidAmount(field string, err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+": "+err.Error())
}

// NewAddressRequired returns a 400 Bad Request for a missing address field.
func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 Bad Request for an invalid address format.
func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// rejected lists the errors a transition reverts with because of what the
// caller asked for, as opposed to a fault of the simulator.
var rejected = []error{
	pair.ErrInsufficientOutputAmount,
	pair.ErrInsufficientLiquidity,
	pair.ErrInsufficientInputAmount,
	pair.ErrInvalidTo,
	pair.ErrKInvariantViolated,
	pair.ErrInsufficientLiquidityBurned,
	pair.ErrLiquidityIsZero,
	pair.ErrTransferFailed,
	pair.ErrLocked,
	ledger.ErrInsufficientBalance,
	ledger.ErrInsufficientAllowance,
	safemath.ErrOverflow,
	safemath.ErrUnderflow,
	service.ErrSlippage,
	service.ErrTokenTransfer,
	service.ErrInvalidAmount,
	service.ErrInsufficientLiquidity,
}

// transitionError maps a reverted transition to a 422 carrying the revert
// reason, and anything else to a generic 500.
func (h *BaseHandler) transitionError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownToken):
		return ErrUnknownTokenBadRequest
	case errors.Is(err, service.ErrEmptyReserves):
		return ErrEmptyReservesBadRequest
	}
	for _, target := range rejected {
		if errors.Is(err, target) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
	}
	h.logger.Error("transition failed", "err", err)
	return ErrTransitionFailedInternal
}

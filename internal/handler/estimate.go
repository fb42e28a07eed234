package handler

import (
	"context"
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/uniswap-pair/internal/service"
)

type EstimateHandler struct {
	BaseHandler
	service *service.EstimateService
}

func NewEstimateHandler(logger *slog.Logger, svc *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// EstimateRequest quotes either direction of a swap: src_amount asks for the
// output of selling that much src, dst_amount for the src needed to buy that
// much dst.
type EstimateRequest struct {
	Pool      string `query:"pool" json:"pool"`
	Src       string `query:"src" json:"src"`
	Dst       string `query:"dst" json:"dst"`
	AmountIn  string `query:"src_amount" json:"amount_in"`
	AmountOut string `query:"dst_amount" json:"amount_out"`
}

func (h *EstimateHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseAndValidateRequest(c)
		if err != nil {
			return err
		}

		pool := common.HexToAddress(req.Pool)
		src := common.HexToAddress(req.Src)
		dst := common.HexToAddress(req.Dst)

		if req.AmountOut != "" {
			amountOut, err := parseAmount(req.AmountOut)
			if err != nil {
				return NewInvalidAmount("dst_amount", err)
			}
			amountIn, err := h.service.EstimateIn(context.Background(), pool, src, dst, amountOut)
			if err != nil {
				return h.handleServiceError(err)
			}
			h.logger.Debug("input estimate computed", "pool", req.Pool, "src", req.Src, "dst", req.Dst, "out", amountOut.String(), "in", amountIn.String())
			return c.SendString(amountIn.String())
		}

		amountIn, err := parseAmount(req.AmountIn)
		if err != nil {
			return NewInvalidAmountIn(err)
		}

		amountOut, err := h.service.Estimate(context.Background(), pool, src, dst, amountIn)
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("estimate computed", "pool", req.Pool, "src", req.Src, "dst", req.Dst, "in", amountIn.String(), "out", amountOut.String())
		return c.SendString(amountOut.String())
	}
}

func (h *EstimateHandler) parseAndValidateRequest(c fiber.Ctx) (*EstimateRequest, error) {
	var req EstimateRequest

	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return nil, ErrInvalidQueryParameters
	}

	if err := h.validateAddresses(&req); err != nil {
		return nil, err
	}
	if req.AmountIn != "" && req.AmountOut != "" {
		return nil, ErrAmountsExclusive
	}

	return &req, nil
}

func (h *EstimateHandler) validateAddresses(req *EstimateRequest) error {
	for _, field := range []struct{ name, value string }{
		{"pool", req.Pool},
		{"src", req.Src},
		{"dst", req.Dst},
	} {
		if err := validateAddress(field.name, field.value); err != nil {
			return err
		}
	}

	if common.HexToAddress(req.Src) == common.HexToAddress(req.Dst) {
		return ErrSameAddresses
	}

	return nil
}

func (h *EstimateHandler) handleServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSameToken):
		return ErrSameTokenBadRequest
	case errors.Is(err, service.ErrEmptyReserves):
		return ErrEmptyReservesBadRequest
	case errors.Is(err, service.ErrPairMismatch):
		return ErrPairMismatchBadRequest
	case errors.Is(err, service.ErrInsufficientLiquidity):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("service estimate failed", "err", err)
		return ErrEstimationFailedInternal
	}
}

func validateAddress(field, addr string) error {
	if addr == "" {
		return NewAddressRequired(field)
	}
	if !common.IsHexAddress(addr) {
		return NewInvalidAddress(field)
	}
	return nil
}

func parseAmount(amountStr string) (*big.Int, error) {
	if amountStr == "" {
		return nil, ErrAmountRequired
	}

	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok {
		return nil, ErrInvalidAmountFormat
	}

	if amount.Sign() <= 0 {
		return nil, ErrAmountNonPositive
	}

	return amount, nil
}

package handler

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/uniswap-pair/internal/service"
)

// PoolHandler serves reads of and transitions on the simulated pool.
type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// Register mounts the pool routes on r.
func (h *PoolHandler) Register(r fiber.Router) {
	r.Get("/pool", h.State())
	r.Get("/balances/:address", h.Balances())
	r.Post("/faucet", h.Faucet())
	r.Post("/liquidity/add", h.AddLiquidity())
	r.Post("/liquidity/remove", h.RemoveLiquidity())
	r.Post("/swap", h.Swap())
}

type PoolResponse struct {
	Pair                 string `json:"pair"`
	Token0               string `json:"token0"`
	Token1               string `json:"token1"`
	FeeTo                string `json:"fee_to"`
	Reserve0             string `json:"reserve0"`
	Reserve1             string `json:"reserve1"`
	BlockTimestampLast   uint32 `json:"block_timestamp_last"`
	TotalSupply          string `json:"total_supply"`
	Price0CumulativeLast string `json:"price0_cumulative_last"`
	Price1CumulativeLast string `json:"price1_cumulative_last"`
	KLast                string `json:"k_last"`
	BlockNumber          uint64 `json:"block_number"`
}

type BalancesResponse struct {
	Token0    string `json:"token0"`
	Token1    string `json:"token1"`
	Liquidity string `json:"liquidity"`
}

type FaucetRequest struct {
	Token  string `json:"token"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type AddLiquidityRequest struct {
	Provider string `json:"provider"`
	Amount0  string `json:"amount0"`
	Amount1  string `json:"amount1"`
}

type RemoveLiquidityRequest struct {
	Provider  string `json:"provider"`
	Liquidity string `json:"liquidity"`
}

// SwapRequest sells AmountIn of TokenIn. MinOut is optional.
type SwapRequest struct {
	Trader   string `json:"trader"`
	TokenIn  string `json:"token_in"`
	AmountIn string `json:"amount_in"`
	MinOut   string `json:"min_out"`
}

func (h *PoolHandler) State() fiber.Handler {
	return func(c fiber.Ctx) error {
		st, err := h.service.Snapshot(context.Background())
		if err != nil {
			return h.transitionError(err)
		}
		return c.JSON(PoolResponse{
			Pair:                 st.Pair.Hex(),
			Token0:               st.Token0.Hex(),
			Token1:               st.Token1.Hex(),
			FeeTo:                st.FeeTo.Hex(),
			Reserve0:             st.Reserve0.String(),
			Reserve1:             st.Reserve1.String(),
			BlockTimestampLast:   st.BlockTimestampLast,
			TotalSupply:          st.TotalSupply.String(),
			Price0CumulativeLast: st.Price0CumulativeLast.String(),
			Price1CumulativeLast: st.Price1CumulativeLast.String(),
			KLast:                st.KLast.String(),
			BlockNumber:          st.BlockNumber,
		})
	}
}

func (h *PoolHandler) Balances() fiber.Handler {
	return func(c fiber.Ctx) error {
		owner := c.Params("address")
		if err := validateAddress("owner", owner); err != nil {
			return err
		}
		b, err := h.service.Balances(context.Background(), common.HexToAddress(owner))
		if err != nil {
			return h.transitionError(err)
		}
		return c.JSON(BalancesResponse{
			Token0:    b.Token0.String(),
			Token1:    b.Token1.String(),
			Liquidity: b.Liquidity.String(),
		})
	}
}

func (h *PoolHandler) Faucet() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req FaucetRequest
		if err := h.bind(c, &req); err != nil {
			return err
		}
		if err := validateAddress("token", req.Token); err != nil {
			return err
		}
		if err := validateAddress("to", req.To); err != nil {
			return err
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return NewInvalidAmount("amount", err)
		}
		if err := h.service.Faucet(context.Background(), common.HexToAddress(req.Token), common.HexToAddress(req.To), amount); err != nil {
			return h.transitionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (h *PoolHandler) AddLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req AddLiquidityRequest
		if err := h.bind(c, &req); err != nil {
			return err
		}
		if err := validateAddress("provider", req.Provider); err != nil {
			return err
		}
		amount0, err := parseAmount(req.Amount0)
		if err != nil {
			return NewInvalidAmount("amount0", err)
		}
		amount1, err := parseAmount(req.Amount1)
		if err != nil {
			return NewInvalidAmount("amount1", err)
		}
		liquidity, err := h.service.AddLiquidity(context.Background(), common.HexToAddress(req.Provider), amount0, amount1)
		if err != nil {
			return h.transitionError(err)
		}
		return c.JSON(fiber.Map{"liquidity": liquidity.String()})
	}
}

func (h *PoolHandler) RemoveLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req RemoveLiquidityRequest
		if err := h.bind(c, &req); err != nil {
			return err
		}
		if err := validateAddress("provider", req.Provider); err != nil {
			return err
		}
		liquidity, err := parseAmount(req.Liquidity)
		if err != nil {
			return NewInvalidAmount("liquidity", err)
		}
		amount0, amount1, err := h.service.RemoveLiquidity(context.Background(), common.HexToAddress(req.Provider), liquidity)
		if err != nil {
			return h.transitionError(err)
		}
		return c.JSON(fiber.Map{"amount0": amount0.String(), "amount1": amount1.String()})
	}
}

func (h *PoolHandler) Swap() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req SwapRequest
		if err := h.bind(c, &req); err != nil {
			return err
		}
		if err := validateAddress("trader", req.Trader); err != nil {
			return err
		}
		if err := validateAddress("token_in", req.TokenIn); err != nil {
			return err
		}
		amountIn, err := parseAmount(req.AmountIn)
		if err != nil {
			return NewInvalidAmountIn(err)
		}
		var minOut *big.Int
		if req.MinOut != "" {
			var ok bool
			if minOut, ok = new(big.Int).SetString(req.MinOut, 10); !ok || minOut.Sign() < 0 {
				return NewInvalidAmount("min_out", ErrInvalidAmountFormat)
			}
		}
		amountOut, err := h.service.SwapExactIn(context.Background(), common.HexToAddress(req.Trader), common.HexToAddress(req.TokenIn), amountIn, minOut)
		if err != nil {
			return h.transitionError(err)
		}
		return c.JSON(fiber.Map{"amount_out": amountOut.String()})
	}
}

func (h *PoolHandler) bind(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		h.logger.Debug("failed to bind request body", "path", c.Path(), "err", err)
		return ErrInvalidBody
	}
	return nil
}

package handler

import (
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// RPC exposes srv's JSON-RPC over HTTP POST, so wallets and ethclient can
// read the simulated chain.
func RPC(srv *rpc.Server) fiber.Handler {
	return adaptor.HTTPHandler(srv)
}

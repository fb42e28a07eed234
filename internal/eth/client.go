// Package eth connects readers to a chain over JSON-RPC: a remote node, or the
// local simulator served through Backend.
package eth

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return ethclient.DialContext(ctx, url)
}

// NewServer returns an RPC server exposing b under the eth namespace.
func NewServer(b *Backend) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", b); err != nil {
		return nil, fmt.Errorf("register eth backend: %w", err)
	}
	return srv, nil
}

// DialInProc returns a client connected to srv without a network hop.
func DialInProc(srv *rpc.Server) *ethclient.Client {
	return ethclient.NewClient(rpc.DialInProc(srv))
}

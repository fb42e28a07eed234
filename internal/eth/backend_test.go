package eth

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/chain"
	"github.com/nulln0ne/uniswap-pair/internal/contracts"
	"github.com/nulln0ne/uniswap-pair/internal/ledger"
	"github.com/nulln0ne/uniswap-pair/internal/state"
)

var holder = common.HexToAddress("0x00000000000000000000000000000000000000a1")

func newSimulatedClient(t *testing.T) (*ethclient.Client, *contracts.Pool) {
	t.Helper()
	db, err := state.Open("")
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := chain.New(db, logger, chain.WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}
	pool, err := contracts.DeployPool(c, contracts.PoolConfig{
		Deployer: common.HexToAddress("0x00000000000000000000000000000000000000d0"),
		TokenA:   ledger.Metadata{Name: "Token A", Symbol: "TKA", Decimals: 18},
		TokenB:   ledger.Metadata{Name: "Token B", Symbol: "TKB", Decimals: 18},
		LP:       ledger.DefaultMetadata,
	}, logger)
	if err != nil {
		t.Fatalf("deploy pool: %v", err)
	}
	input, err := bindings.TokenABI.Pack("mint", holder, big.NewInt(5_000))
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}
	if _, err := c.Transact(holder, pool.Token0, input); err != nil {
		t.Fatalf("faucet: %v", err)
	}

	srv, err := NewServer(NewBackend(c, logger))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ec := DialInProc(srv)
	t.Cleanup(ec.Close)
	return ec, pool
}

func TestBackend_BlockNumberAndChainID(t *testing.T) {
	ec, _ := newSimulatedClient(t)
	ctx := context.Background()

	bn, err := ec.BlockNumber(ctx)
	if err != nil {
		t.Fatalf("BlockNumber: %v", err)
	}
	// initialize + faucet
	if bn != 2 {
		t.Fatalf("unexpected block number: %d", bn)
	}

	id, err := ec.ChainID(ctx)
	if err != nil {
		t.Fatalf("ChainID: %v", err)
	}
	if id.Int64() != ChainID {
		t.Fatalf("unexpected chain id: %s", id)
	}
}

func TestBackend_StorageAt(t *testing.T) {
	ec, pool := newSimulatedClient(t)
	ctx := context.Background()

	for slot, want := range map[int64]common.Address{6: pool.Token0, 7: pool.Token1} {
		b, err := ec.StorageAt(ctx, pool.Pair, common.BigToHash(big.NewInt(slot)), nil)
		if err != nil {
			t.Fatalf("StorageAt slot %d: %v", slot, err)
		}
		if got := common.BytesToAddress(b); got != want {
			t.Fatalf("slot %d: got %s want %s", slot, got.Hex(), want.Hex())
		}
	}

	_, err := ec.StorageAt(ctx, pool.Pair, common.Hash{}, big.NewInt(100))
	if err == nil {
		t.Fatalf("expected error for a block past the head")
	}
}

func TestBackend_Call(t *testing.T) {
	ec, pool := newSimulatedClient(t)
	ctx := context.Background()

	out, err := ec.CallContract(ctx, ethereum.CallMsg{To: &pool.Token0, Data: bindings.PackBalanceOf(holder)}, nil)
	if err != nil {
		t.Fatalf("CallContract: %v", err)
	}
	balance, err := bindings.UnpackAmount("balanceOf", out)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if balance.Uint64() != 5_000 {
		t.Fatalf("unexpected balance: %s", balance.Dec())
	}

	// reverting calls surface as rpc errors
	_, err = ec.CallContract(ctx, ethereum.CallMsg{To: &pool.Pair, Data: []byte{1, 2, 3, 4}}, nil)
	if err == nil {
		t.Fatalf("expected error for unknown selector")
	}
}

package contracts

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/chain"
	"github.com/nulln0ne/uniswap-pair/internal/ledger"
)

// PoolConfig describes the pool to deploy.
type PoolConfig struct {
	// Deployer derives the contract addresses and becomes the pair's factory.
	Deployer common.Address
	TokenA   ledger.Metadata
	TokenB   ledger.Metadata
	LP       ledger.Metadata
	FeeTo    common.Address
}

// Pool is a deployed pair with its two pooled tokens.
type Pool struct {
	Pair     common.Address
	Token0   common.Address
	Token1   common.Address
	Borrower common.Address

	PairContract *Pair
	Tokens       map[common.Address]*Token
}

// DeployPool installs both tokens, the pair and a flash borrower on c at
// addresses derived from the deployer, then initializes the pair unless the
// stored state already holds an initialized one. Tokens are ordered by
// address, so token0 < token1.
func DeployPool(c *chain.Chain, cfg PoolConfig, logger *slog.Logger) (*Pool, error) {
	addrA := crypto.CreateAddress(cfg.Deployer, 0)
	addrB := crypto.CreateAddress(cfg.Deployer, 1)
	pool := &Pool{
		Pair:     crypto.CreateAddress(cfg.Deployer, 2),
		Borrower: crypto.CreateAddress(cfg.Deployer, 3),
		Tokens:   make(map[common.Address]*Token, 2),
	}

	metaA, metaB := cfg.TokenA, cfg.TokenB
	if bytes.Compare(addrA.Bytes(), addrB.Bytes()) > 0 {
		addrA, addrB = addrB, addrA
		metaA, metaB = metaB, metaA
	}
	pool.Token0, pool.Token1 = addrA, addrB

	for _, d := range []struct {
		addr common.Address
		meta ledger.Metadata
	}{{addrA, metaA}, {addrB, metaB}} {
		token := NewToken(d.addr, d.meta, c.State(), logger)
		if err := c.Deploy(d.addr, token); err != nil {
			return nil, err
		}
		pool.Tokens[d.addr] = token
	}

	pool.PairContract = NewPair(pool.Pair, cfg.LP, c, logger)
	if err := c.Deploy(pool.Pair, pool.PairContract); err != nil {
		return nil, err
	}
	if err := c.Deploy(pool.Borrower, Borrower{}); err != nil {
		return nil, err
	}

	input, err := bindings.PairABI.Pack("factory")
	if err != nil {
		return nil, err
	}
	out, err := c.StaticCall(cfg.Deployer, pool.Pair, input)
	if err != nil {
		return nil, fmt.Errorf("read factory: %w", err)
	}
	if common.BytesToAddress(out) != (common.Address{}) {
		logger.Info("pair already initialized", "pair", pool.Pair.Hex())
		return pool, nil
	}

	input, err = bindings.PairABI.Pack("initialize", pool.Token0, pool.Token1, cfg.FeeTo)
	if err != nil {
		return nil, err
	}
	if _, err := c.Transact(cfg.Deployer, pool.Pair, input); err != nil {
		return nil, fmt.Errorf("initialize pair: %w", err)
	}
	logger.Info("pool deployed", "pair", pool.Pair.Hex(), "token0", pool.Token0.Hex(), "token1", pool.Token1.Hex(), "feeTo", cfg.FeeTo.Hex())
	return pool, nil
}

package pair

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/ledger"
	"github.com/nulln0ne/uniswap-pair/internal/state"
)

var (
	pairAddr = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	factory  = common.HexToAddress("0x00000000000000000000000000000000000000fa")
	token0   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	token1   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	feeSink  = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	callee   = common.HexToAddress("0x00000000000000000000000000000000000000ca")
)

var errCallReverted = errors.New("call reverted")

// fakeGateway keeps pooled-token balances in plain maps and decodes
// transfer calls. It is not journaled, so pair reverts do not undo it.
type fakeGateway struct {
	balances map[common.Address]map[common.Address]*uint256.Int
	// returns overrides the payload a token answers to transfer with
	returns map[common.Address][]byte
	failing map[common.Address]bool
	hooks   map[common.Address]func(from common.Address, data []byte) error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		balances: map[common.Address]map[common.Address]*uint256.Int{},
		returns:  map[common.Address][]byte{},
		failing:  map[common.Address]bool{},
		hooks:    map[common.Address]func(common.Address, []byte) error{},
	}
}

func (g *fakeGateway) BalanceOf(token, owner common.Address) (*uint256.Int, error) {
	if g.failing[token] {
		return nil, errCallReverted
	}
	if b, ok := g.balances[token][owner]; ok {
		return b.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (g *fakeGateway) account(token common.Address) map[common.Address]*uint256.Int {
	if g.balances[token] == nil {
		g.balances[token] = map[common.Address]*uint256.Int{}
	}
	return g.balances[token]
}

func (g *fakeGateway) credit(token, owner common.Address, v *uint256.Int) {
	cur, _ := g.BalanceOf(token, owner)
	g.account(token)[owner] = cur.Add(cur, v)
}

func (g *fakeGateway) debit(token, owner common.Address, v *uint256.Int) error {
	cur, _ := g.BalanceOf(token, owner)
	if cur.Lt(v) {
		return errCallReverted
	}
	g.account(token)[owner] = cur.Sub(cur, v)
	return nil
}

func (g *fakeGateway) Call(from, to common.Address, input []byte) ([]byte, error) {
	if hook, ok := g.hooks[to]; ok {
		return nil, hook(from, input)
	}
	if g.failing[to] {
		return nil, errCallReverted
	}
	method, err := bindings.ERC20ABI.MethodById(input[:4])
	if err != nil || method.Name != "transfer" {
		return nil, fmt.Errorf("unsupported call %x", input)
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, err
	}
	value, _ := uint256.FromBig(args[1].(*big.Int))
	if err := g.debit(to, from, value); err != nil {
		return nil, err
	}
	g.credit(to, args[0].(common.Address), value)
	if ret, ok := g.returns[to]; ok {
		return ret, nil
	}
	return bindings.EncodeBool(true), nil
}

type testEnv struct {
	t    *testing.T
	pair *Pair
	gw   *fakeGateway
	sdb  *state.StateDB
	now  uint64
}

func newTestEnv(t *testing.T, feeTo common.Address) *testEnv {
	t.Helper()
	db, err := state.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sdb, err := state.New(db)
	require.NoError(t, err)
	gw := newFakeGateway()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(pairAddr, ledger.DefaultMetadata, sdb, gw, logger)
	require.NoError(t, p.Initialize(Msg{Sender: factory}, token0, token1, feeTo))

	return &testEnv{t: t, pair: p, gw: gw, sdb: sdb, now: 1_700_000_000}
}

func (e *testEnv) msg(sender common.Address) Msg {
	return Msg{Sender: sender, Time: e.now}
}

// deposit sends pooled tokens straight to the pair, as a router would.
func (e *testEnv) deposit(amount0, amount1 uint64) {
	e.gw.credit(token0, pairAddr, uint256.NewInt(amount0))
	e.gw.credit(token1, pairAddr, uint256.NewInt(amount1))
}

// seed puts the pair in a synced state with the given reserves and claim
// supply, all held by alice.
func (e *testEnv) seed(reserve0, reserve1, supply uint64) {
	e.t.Helper()
	e.deposit(reserve0, reserve1)
	e.pair.storeReserves(uint256.NewInt(reserve0), uint256.NewInt(reserve1), uint32(e.now))
	require.NoError(e.t, e.pair.token.Mint(alice, uint256.NewInt(supply)))
	e.sdb.TakeLogs()
}

func (e *testEnv) reserves() (uint64, uint64) {
	r0, r1, _ := e.pair.GetReserves()
	return r0.Uint64(), r1.Uint64()
}

func (e *testEnv) balance(token, owner common.Address) uint64 {
	b, _ := e.gw.BalanceOf(token, owner)
	return b.Uint64()
}

func (e *testEnv) eventNames() []string {
	var names []string
	for _, l := range e.sdb.Logs() {
		ev, err := bindings.ParseLog(l)
		require.NoError(e.t, err)
		names = append(names, ev.Name)
	}
	return names
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

package pair

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/uniswap-pair/pkg/uniswapv2"
)

const ether = 1_000_000_000_000_000_000

// expectedFee computes supply*(sqrt(k)-sqrt(kLast)) / (5*sqrt(k)+sqrt(kLast)).
func expectedFee(supply, reserve0, reserve1, kLast *big.Int) *big.Int {
	rootK := new(big.Int).Sqrt(new(big.Int).Mul(reserve0, reserve1))
	rootKLast := new(big.Int).Sqrt(kLast)
	num := new(big.Int).Mul(supply, new(big.Int).Sub(rootK, rootKLast))
	den := new(big.Int).Mul(rootK, big.NewInt(5))
	den.Add(den, rootKLast)
	return num.Div(num, den)
}

func (e *testEnv) swapExact0For1(amountIn uint64) {
	e.t.Helper()
	r0, r1, _ := e.pair.GetReserves()
	var dst, t1, t2 big.Int
	out := uniswapv2.GetAmountOut(&dst, &t1, &t2, new(big.Int).SetUint64(amountIn), r0.ToBig(), r1.ToBig())
	e.gw.credit(token0, pairAddr, u(amountIn))
	require.NoError(e.t, e.pair.Swap(e.msg(bob), u(0), u(out.Uint64()), bob, nil))
}

func TestProtocolFeeOn(t *testing.T) {
	e := newTestEnv(t, feeSink)
	e.deposit(ether, ether)
	_, err := e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)

	// first mint only records kLast
	require.True(t, e.pair.BalanceOf(feeSink).IsZero())
	kLast := e.pair.KLast().ToBig()
	require.Equal(t, new(big.Int).Mul(big.NewInt(ether), big.NewInt(ether)), kLast)

	e.swapExact0For1(ether / 10)
	e.swapExact0For1(ether / 20)

	r0, r1, _ := e.pair.GetReserves()
	supply := e.pair.TotalSupply().ToBig()
	want := expectedFee(supply, r0.ToBig(), r1.ToBig(), kLast)
	require.Positive(t, want.Sign())

	e.deposit(1_000_000, 1_000_000)
	_, err = e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)
	require.Equal(t, want, e.pair.BalanceOf(feeSink).ToBig())

	n0, n1, _ := e.pair.GetReserves()
	require.Equal(t, new(big.Int).Mul(n0.ToBig(), n1.ToBig()), e.pair.KLast().ToBig())
}

func TestProtocolFeeNoGrowth(t *testing.T) {
	e := newTestEnv(t, feeSink)
	e.deposit(ether, ether)
	_, err := e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)

	e.deposit(ether, ether)
	_, err = e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)
	require.True(t, e.pair.BalanceOf(feeSink).IsZero())
}

func TestProtocolFeeOffClearsKLast(t *testing.T) {
	e := newTestEnv(t, common.Address{})
	e.seed(ether, ether, ether)
	e.pair.storeAmount(slotKLast, u(ether))

	e.swapExact0For1(ether / 10)
	require.False(t, e.pair.KLast().IsZero(), "swaps leave kLast alone")

	e.deposit(1_000_000, 1_000_000)
	_, err := e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)
	require.True(t, e.pair.KLast().IsZero())
	require.True(t, e.pair.BalanceOf(feeSink).IsZero())
}

func TestProtocolFeeOnBurn(t *testing.T) {
	e := newTestEnv(t, feeSink)
	e.deposit(ether, ether)
	_, err := e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)
	kLast := e.pair.KLast().ToBig()

	e.swapExact0For1(ether / 5)
	r0, r1, _ := e.pair.GetReserves()
	want := expectedFee(e.pair.TotalSupply().ToBig(), r0.ToBig(), r1.ToBig(), kLast)

	require.NoError(t, e.pair.Transfer(e.msg(alice), pairAddr, u(ether/2)))
	_, _, err = e.pair.Burn(e.msg(alice), alice)
	require.NoError(t, err)
	require.Equal(t, want, e.pair.BalanceOf(feeSink).ToBig())

	n0, n1, _ := e.pair.GetReserves()
	require.Equal(t, new(big.Int).Mul(n0.ToBig(), n1.ToBig()), e.pair.KLast().ToBig())
}

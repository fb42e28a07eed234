package pair

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func q112(num, den, elapsed uint64) *uint256.Int {
	p := new(uint256.Int).Lsh(u(num), 112)
	p.Div(p, u(den))
	return p.Mul(p, u(elapsed))
}

func TestAccumulatorAdvances(t *testing.T) {
	e := newTestEnv(t, common.Address{})
	e.seed(1000, 2000, 1000)

	e.now += 10
	require.NoError(t, e.pair.Sync(e.msg(bob)))
	require.Equal(t, q112(2000, 1000, 10), e.pair.Price0CumulativeLast())
	require.Equal(t, q112(1000, 2000, 10), e.pair.Price1CumulativeLast())

	// same block: nothing accrues
	e.deposit(1000, 0)
	require.NoError(t, e.pair.Sync(e.msg(bob)))
	require.Equal(t, q112(2000, 1000, 10), e.pair.Price0CumulativeLast())

	// the next accrual uses the reserves synced above
	e.now += 5
	require.NoError(t, e.pair.Sync(e.msg(bob)))
	want0 := q112(2000, 1000, 10)
	want0.Add(want0, q112(2000, 2000, 5))
	require.Equal(t, want0, e.pair.Price0CumulativeLast())
	_, _, ts := e.pair.GetReserves()
	require.Equal(t, uint32(e.now), ts)
}

func TestAccumulatorSkipsEmptyPool(t *testing.T) {
	e := newTestEnv(t, common.Address{})
	e.deposit(10_000, 40_000)
	e.now += 100

	_, err := e.pair.Mint(e.msg(alice), alice)
	require.NoError(t, err)
	require.True(t, e.pair.Price0CumulativeLast().IsZero())
	require.True(t, e.pair.Price1CumulativeLast().IsZero())
}

func TestAccumulatorTimestampWraps(t *testing.T) {
	e := newTestEnv(t, common.Address{})
	e.deposit(1000, 1000)
	e.pair.storeReserves(u(1000), u(1000), math.MaxUint32-4)

	e.now = 1<<32 + 5
	require.NoError(t, e.pair.Sync(e.msg(bob)))
	require.Equal(t, q112(1, 1, 10), e.pair.Price0CumulativeLast())
	_, _, ts := e.pair.GetReserves()
	require.Equal(t, uint32(5), ts)
}

func TestAccumulatorValueWraps(t *testing.T) {
	e := newTestEnv(t, common.Address{})
	e.seed(1000, 1000, 1000)
	e.pair.storeAmount(slotPrice0Cumulative, new(uint256.Int).SetAllOne())

	e.now++
	require.NoError(t, e.pair.Sync(e.msg(bob)))
	want := q112(1, 1, 1)
	want.Sub(want, u(1))
	require.Equal(t, want, e.pair.Price0CumulativeLast())
}

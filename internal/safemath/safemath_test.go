package safemath

import (
	"math/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSqrt(t *testing.T) {
	cases := []struct {
		in, want uint64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{8, 2},
		{9, 3},
		{99, 9},
		{100, 10},
		{1_000_000, 1000},
		{100_000_000, 10000},
	}
	for _, tc := range cases {
		got := Sqrt(uint256.NewInt(tc.in))
		require.Equal(t, tc.want, got.Uint64(), "sqrt(%d)", tc.in)
	}
}

func TestSqrtMatchesFloorRoot(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	require.True(t, Sqrt(max).Eq(new(uint256.Int).Sqrt(max)))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		var b [32]byte
		rng.Read(b[:])
		// vary magnitude so small and large inputs are both covered
		n := rng.Intn(32) + 1
		y := new(uint256.Int).SetBytes(b[:n])
		want := new(uint256.Int).Sqrt(y)
		require.Truef(t, Sqrt(y).Eq(want), "sqrt(%s)", y.Dec())
	}
}

func TestCheckedOps(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	one := uint256.NewInt(1)

	_, err := Add(max, one)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = Sub(one, uint256.NewInt(2))
	require.ErrorIs(t, err, ErrUnderflow)

	_, err = Mul(max, uint256.NewInt(2))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = Div(one, new(uint256.Int))
	require.ErrorIs(t, err, ErrDivisionByZero)

	z, err := MulDiv(uint256.NewInt(500), uint256.NewInt(1000), uint256.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, uint64(500), z.Uint64())
}

func TestSaturatingSubAndMin(t *testing.T) {
	require.True(t, SaturatingSub(uint256.NewInt(3), uint256.NewInt(5)).IsZero())
	require.Equal(t, uint64(2), SaturatingSub(uint256.NewInt(5), uint256.NewInt(3)).Uint64())

	a, b := uint256.NewInt(4), uint256.NewInt(9)
	m := Min(a, b)
	require.Equal(t, uint64(4), m.Uint64())
	m.SetUint64(0)
	require.Equal(t, uint64(4), a.Uint64(), "Min must not alias its inputs")
}

func TestToUint112(t *testing.T) {
	v, err := ToUint112(MaxUint112())
	require.NoError(t, err)
	require.Equal(t, Uint112Bits, v.BitLen())

	tooBig := new(uint256.Int).Lsh(uint256.NewInt(1), Uint112Bits)
	_, err = ToUint112(tooBig)
	require.ErrorIs(t, err, ErrOverflow)
}

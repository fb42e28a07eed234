package service

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// fakeEth serves eth_blockNumber and eth_getStorageAt from fixed values.
type fakeEth struct {
	blockNumber uint64
	storage     map[common.Address]map[common.Hash][]byte
}

func (f *fakeEth) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	return hexutil.Uint64(f.blockNumber), nil
}

func (f *fakeEth) GetStorageAt(ctx context.Context, addr common.Address, position common.Hash, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if v, ok := f.storage[addr][position]; ok {
		return v, nil
	}
	return make(hexutil.Bytes, 32), nil
}

func newInprocEthClient(t *testing.T, fe *fakeEth) *ethclient.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	if err := srv.RegisterName("eth", fe); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	ec := ethclient.NewClient(gethrpc.DialInProc(srv))
	t.Cleanup(ec.Close)
	return ec
}

func packReserves(r0, r1 uint64, ts uint32) []byte {
	v := new(big.Int).SetUint64(uint64(ts))
	v.Lsh(v, 112).Or(v, new(big.Int).SetUint64(r1))
	v.Lsh(v, 112).Or(v, new(big.Int).SetUint64(r0))
	return v.FillBytes(make([]byte, 32))
}

func addressWord(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

var (
	testToken0 = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testToken1 = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testPool   = common.HexToAddress("0x0000000000000000000000000000000000000abc")
)

func newPoolFake(pool, token0, token1 common.Address, r0, r1 uint64) *fakeEth {
	return &fakeEth{
		blockNumber: 123,
		storage: map[common.Address]map[common.Hash][]byte{
			pool: {
				common.BigToHash(new(big.Int).SetUint64(slotToken0)):   addressWord(token0),
				common.BigToHash(new(big.Int).SetUint64(slotToken1)):   addressWord(token1),
				common.BigToHash(new(big.Int).SetUint64(slotReserves)): packReserves(r0, r1, 0),
			},
		},
	}
}

func newTestEstimator(t *testing.T, fe *fakeEth) *EstimateService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(httptest.NewRecorder(), nil))
	return NewEstimateService(logger, newInprocEthClient(t, fe))
}

func TestEstimate_Success(t *testing.T) {
	t.Parallel()

	// reserves: 1_000_000 : 2_000_000
	r0, r1 := uint64(1_000_000), uint64(2_000_000)
	amountIn := big.NewInt(1_000)
	svc := newTestEstimator(t, newPoolFake(testPool, testToken0, testToken1, r0, r1))

	out, err := svc.Estimate(context.Background(), testPool, testToken0, testToken1, amountIn)
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}

	// compute expected
	amountInWithFee := new(big.Int).Mul(amountIn, big.NewInt(997))
	numerator := new(big.Int).Mul(amountInWithFee, new(big.Int).SetUint64(r1))
	denominator := new(big.Int).Add(new(big.Int).Mul(new(big.Int).SetUint64(r0), big.NewInt(1000)), amountInWithFee)
	expected := new(big.Int).Div(numerator, denominator)

	if out.Cmp(expected) != 0 {
		t.Fatalf("unexpected amountOut: got %s want %s", out, expected)
	}
}

func TestEstimate_Errors(t *testing.T) {
	t.Parallel()

	wrong := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	cases := []struct {
		name     string
		fe       *fakeEth
		src, dst common.Address
		want     error
	}{
		{"pair_mismatch", newPoolFake(testPool, testToken0, testToken1, 1, 1), testToken0, wrong, ErrPairMismatch},
		{"same_token", newPoolFake(testPool, testToken0, testToken0, 1, 1), testToken0, testToken0, ErrSameToken},
		{"empty_reserves", newPoolFake(testPool, testToken0, testToken1, 0, 0), testToken0, testToken1, ErrEmptyReserves},
		{"one_side_empty", newPoolFake(testPool, testToken0, testToken1, 5, 0), testToken1, testToken0, ErrEmptyReserves},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestEstimator(t, tc.fe)
			_, err := svc.Estimate(context.Background(), testPool, tc.src, tc.dst, big.NewInt(1))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEstimateIn(t *testing.T) {
	t.Parallel()

	svc := newTestEstimator(t, newPoolFake(testPool, testToken0, testToken1, 1_000_000, 2_000_000))

	// token1 -> token0: reserveIn 2_000_000, reserveOut 1_000_000
	in, err := svc.EstimateIn(context.Background(), testPool, testToken1, testToken0, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("EstimateIn error: %v", err)
	}
	out, err := svc.Estimate(context.Background(), testPool, testToken1, testToken0, in)
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if out.Cmp(big.NewInt(1_000)) < 0 {
		t.Fatalf("input %s buys %s, want at least 1000", in, out)
	}

	_, err = svc.EstimateIn(context.Background(), testPool, testToken1, testToken0, big.NewInt(1_000_000))
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

package config

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	// DataDir is the leveldb directory of the simulated chain. Empty keeps
	// the chain in memory.
	DataDir string

	// RPCEndpoint points the estimator at a remote node. Empty serves
	// estimates from the local simulator.
	RPCEndpoint string

	FeeTo        common.Address
	Token0Symbol string
	Token1Symbol string
	LPName       string
	LPSymbol     string
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:         getenv("ADDR", ":1337"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    strings.ToLower(getenv("LOG_FORMAT", "text")),
		DataDir:      os.Getenv("DATA_DIR"),
		RPCEndpoint:  os.Getenv("ETH_RPC_URL"),
		Token0Symbol: getenv("TOKEN0_SYMBOL", "TKA"),
		Token1Symbol: getenv("TOKEN1_SYMBOL", "TKB"),
		LPName:       getenv("LP_NAME", "Uniswap V2"),
		LPSymbol:     getenv("LP_SYMBOL", "UNI-V2"),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, ErrInvalidLogFormat
	}

	if feeTo := os.Getenv("FEE_TO"); feeTo != "" {
		if !common.IsHexAddress(feeTo) {
			return nil, ErrInvalidFeeTo
		}
		cfg.FeeTo = common.HexToAddress(feeTo)
	}

	if cfg.Token0Symbol == cfg.Token1Symbol {
		return nil, ErrDuplicateSymbol
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

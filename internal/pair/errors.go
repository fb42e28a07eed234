package pair

import "errors"

var (
	ErrAlreadyInitialized          = errors.New("pair already initialized")
	ErrNotInitialized              = errors.New("pair not initialized")
	ErrZeroAddress                 = errors.New("zero address")
	ErrLocked                      = errors.New("pair locked")
	ErrInsufficientOutputAmount    = errors.New("insufficient output amount")
	ErrInsufficientLiquidity       = errors.New("insufficient liquidity")
	ErrInsufficientInputAmount     = errors.New("insufficient input amount")
	ErrInvalidTo                   = errors.New("invalid to")
	ErrKInvariantViolated          = errors.New("k invariant violated")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrLiquidityIsZero             = errors.New("liquidity is zero")
	ErrTransferFailed              = errors.New("transfer failed")
	ErrExternalCallFailed          = errors.New("external call failed")
)

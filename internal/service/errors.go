package service

import "errors"

var (
	ErrSameToken             = errors.New("src and dst are equal")
	ErrPairMismatch          = errors.New("pair does not match src/dst")
	ErrEmptyReserves         = errors.New("empty reserves")
	ErrInsufficientLiquidity = errors.New("amount out exceeds reserves")
	ErrUnknownToken          = errors.New("token is not part of the pool")
	ErrSlippage              = errors.New("amount out below minimum")
	ErrTokenTransfer         = errors.New("token transfer returned failure")
	ErrInvalidAmount         = errors.New("amount out of range")
)

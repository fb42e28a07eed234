package contracts

import "errors"

var (
	ErrUnknownSelector = errors.New("unknown function selector")
	ErrMalformedInput  = errors.New("malformed call input")
	ErrTransferRevert  = errors.New("token reverted transfer")
)

package config

import "errors"

// ErrInvalidFeeTo indicates that FEE_TO is set but is not a hex address.
var ErrInvalidFeeTo = errors.New("FEE_TO is not a valid address")

// ErrInvalidLogFormat indicates that LOG_FORMAT is neither text nor json.
var ErrInvalidLogFormat = errors.New("LOG_FORMAT must be text or json")

var ErrDuplicateSymbol = errors.New("TOKEN0_SYMBOL and TOKEN1_SYMBOL must differ")

package chain

import "errors"

var (
	ErrNoContract      = errors.New("no contract at address")
	ErrAlreadyDeployed = errors.New("address already has a contract")
	ErrCallDepth       = errors.New("max call depth exceeded")
	ErrNoTransition    = errors.New("call outside of a transition")
	ErrPanicked        = errors.New("contract panicked")
	ErrStateRead       = errors.New("state read failed")
)

package types

import "errors"

// Coupling errors. They indicate a structural misuse of a wagon chain and are
// returned by consist.Yard primitives wrapped in a *consist.ChainError.
var (
	ErrAlreadyConnected = errors.New("wagon is already connected")
	ErrCyclicChain      = errors.New("coupling would create a cycle")
	ErrBrokenLink       = errors.New("next and previous links disagree")
)

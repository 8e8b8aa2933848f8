package consist

import (
	"errors"
	"fmt"
)

// ErrNilYard is returned by NewTrain when no Yard is given.
var ErrNilYard = errors.New("train needs a yard")

// ChainError reports a structural violation by a Yard primitive. Err is one
// of types.ErrAlreadyConnected, types.ErrCyclicChain or types.ErrBrokenLink.
type ChainError struct {
	Op    string // primitive that failed, e.g. "attach"
	Wagon int    // id of the wagon being operated on
	Other int    // id of the other wagon involved, 0 if none
	Err   error
}

func (e *ChainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Other != 0 && e.Other != e.Wagon {
		return fmt.Sprintf("%s: wagon %d and wagon %d: %v", e.Op, e.Wagon, e.Other, e.Err)
	}
	return fmt.Sprintf("%s: wagon %d: %v", e.Op, e.Wagon, e.Err)
}

func (e *ChainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

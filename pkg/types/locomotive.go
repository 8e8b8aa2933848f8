package types

import (
	"errors"
	"fmt"
)

// Capacity errors.
var (
	ErrInvalidCapacity  = errors.New("locomotive capacity must be positive")
	ErrCapacityExceeded = errors.New("wagon count exceeds locomotive capacity")
)

// Locomotive pulls a train. MaxWagons is the largest number of wagons it may
// pull and must be positive.
type Locomotive struct {
	Number    int `json:"number" yaml:"number"`
	MaxWagons int `json:"max_wagons" yaml:"max_wagons"`
}

// NewLocomotive returns a validated locomotive.
// Returns ErrInvalidCapacity if maxWagons is not positive.
func NewLocomotive(number, maxWagons int) (Locomotive, error) {
	l := Locomotive{Number: number, MaxWagons: maxWagons}
	if err := l.Validate(); err != nil {
		return Locomotive{}, err
	}
	return l, nil
}

// Validate checks that the capacity is positive.
func (l Locomotive) Validate() error {
	if l.MaxWagons <= 0 {
		return fmt.Errorf("%w: locomotive %d has max_wagons %d", ErrInvalidCapacity, l.Number, l.MaxWagons)
	}
	return nil
}

// CanPull reports whether the locomotive can pull n wagons. The limit is
// inclusive: a locomotive with MaxWagons 3 pulls exactly 3.
func (l Locomotive) CanPull(n int) bool {
	return n >= 0 && n <= l.MaxWagons
}

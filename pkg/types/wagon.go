package types

import (
	"errors"
	"fmt"
)

// WagonKind is the closed set of wagon variants. A train carries wagons of
// exactly one kind.
type WagonKind string

// Wagon kinds.
const (
	KindPassenger WagonKind = "passenger"
	KindFreight   WagonKind = "freight"
)

// validKinds is the set of recognized wagon kinds.
var validKinds = map[WagonKind]bool{
	KindPassenger: true,
	KindFreight:   true,
}

// Wagon errors.
var (
	ErrUnknownKind  = errors.New("unknown wagon kind")
	ErrInvalidWagon = errors.New("invalid wagon")
	ErrNegativeLoad = errors.New("wagon payload must not be negative")
	ErrForeignLoad  = errors.New("wagon payload does not belong to its kind")
)

// Wagon is a single unit of rolling stock. Seats is meaningful only for
// passenger wagons and MaxWeight only for freight wagons; the other field
// stays zero.
type Wagon struct {
	ID        int       `json:"id" yaml:"id"`
	Kind      WagonKind `json:"kind" yaml:"kind"`
	Seats     int       `json:"seats,omitempty" yaml:"seats,omitempty"`
	MaxWeight int       `json:"max_weight,omitempty" yaml:"max_weight,omitempty"`
}

// NewPassengerWagon returns a passenger wagon with the given seat count.
func NewPassengerWagon(id, seats int) Wagon {
	return Wagon{ID: id, Kind: KindPassenger, Seats: seats}
}

// NewFreightWagon returns a freight wagon with the given load capacity.
func NewFreightWagon(id, maxWeight int) Wagon {
	return Wagon{ID: id, Kind: KindFreight, MaxWeight: maxWeight}
}

// IsPassenger reports whether the wagon is a passenger wagon.
func (w Wagon) IsPassenger() bool { return w.Kind == KindPassenger }

// IsFreight reports whether the wagon is a freight wagon.
func (w Wagon) IsFreight() bool { return w.Kind == KindFreight }

// Load returns the kind-specific payload: seats for a passenger wagon,
// maximum weight for a freight wagon, zero for an unknown kind.
func (w Wagon) Load() int {
	switch w.Kind {
	case KindPassenger:
		return w.Seats
	case KindFreight:
		return w.MaxWeight
	default:
		return 0
	}
}

// Validate checks that the kind is known and that the payload is
// non-negative and set only on the field owned by that kind.
// Errors wrap ErrInvalidWagon together with the specific cause.
func (w Wagon) Validate() error {
	switch w.Kind {
	case KindPassenger:
		if w.Seats < 0 {
			return invalidWagon(w, ErrNegativeLoad)
		}
		if w.MaxWeight != 0 {
			return invalidWagon(w, ErrForeignLoad)
		}
	case KindFreight:
		if w.MaxWeight < 0 {
			return invalidWagon(w, ErrNegativeLoad)
		}
		if w.Seats != 0 {
			return invalidWagon(w, ErrForeignLoad)
		}
	default:
		return invalidWagon(w, ErrUnknownKind)
	}
	return nil
}

func invalidWagon(w Wagon, cause error) error {
	return fmt.Errorf("%w %d: %w", ErrInvalidWagon, w.ID, cause)
}

// ParseKind converts a textual kind into a WagonKind.
// Returns ErrUnknownKind for anything other than "passenger" or "freight".
func ParseKind(s string) (WagonKind, error) {
	k := WagonKind(s)
	if !validKinds[k] {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

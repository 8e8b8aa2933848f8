package consist

import (
	"fmt"
	"sync/atomic"

	"github.com/mesh-intelligence/consist/pkg/types"
)

// Handle addresses a wagon in the Yard that issued it. Handles are stable for
// the lifetime of that Yard and mean nothing to any other: every Yard issues
// handles from its own range, so a handle from another Yard is not Valid. The
// zero Handle is NoWagon.
type Handle int64

// NoWagon is the absent handle: the next of a tail, the previous of a head,
// the first wagon of an empty train.
const NoWagon Handle = 0

// node is one arena slot.
type node struct {
	wagon types.Wagon
	next  Handle
	prev  Handle
}

// yardSeq numbers yards; a yard's number selects its handle range.
var yardSeq atomic.Int64

// yardShift leaves room for 2^32 wagons per yard.
const yardShift = 32

// Yard is the arena that holds every wagon that may be coupled together.
// Wagons are never removed from a Yard; uncoupled wagons simply form
// single-wagon chains.
//
// A chain headed by a Train's first wagon belongs to that Train. The exported
// mutators refuse to touch it; only Train operations rewire it.
type Yard struct {
	base  Handle
	nodes []node // handle h lives at nodes[h-base-1]

	// heads records the chain heads currently owned by a Train, so that a
	// train's chain cannot be attached to another train as a loose sequence.
	heads map[Handle]bool
}

// NewYard returns an empty Yard.
func NewYard() *Yard {
	return &Yard{
		base:  Handle(yardSeq.Add(1)) << yardShift,
		heads: make(map[Handle]bool),
	}
}

// Add validates w and stores it as a solitary wagon.
// Returns an error wrapping types.ErrInvalidWagon if w is malformed.
// Wagon id uniqueness is the caller's responsibility.
func (y *Yard) Add(w types.Wagon) (Handle, error) {
	if err := w.Validate(); err != nil {
		return NoWagon, err
	}
	y.nodes = append(y.nodes, node{wagon: w})
	return y.base + Handle(len(y.nodes)), nil
}

// Len returns the number of wagons stored in the Yard.
func (y *Yard) Len() int { return len(y.nodes) }

// Valid reports whether h addresses a wagon of this Yard.
func (y *Yard) Valid(h Handle) bool {
	return h > y.base && h-y.base <= Handle(len(y.nodes))
}

// Wagon returns the wagon stored at h.
func (y *Yard) Wagon(h Handle) (types.Wagon, bool) {
	if !y.Valid(h) {
		return types.Wagon{}, false
	}
	return y.nodes[h-y.base-1].wagon, true
}

// node returns the slot for h. An invalid handle is a programming fault.
func (y *Yard) node(h Handle) *node {
	if !y.Valid(h) {
		panic(fmt.Sprintf("consist: invalid wagon handle %d", h))
	}
	return &y.nodes[h-y.base-1]
}

func (y *Yard) id(h Handle) int {
	if !y.Valid(h) {
		return 0
	}
	return y.nodes[h-y.base-1].wagon.ID
}

func (y *Yard) chainError(op string, h, other Handle, err error) error {
	return &ChainError{Op: op, Wagon: y.id(h), Other: y.id(other), Err: err}
}

func (y *Yard) claim(h Handle) {
	if h != NoWagon {
		y.heads[h] = true
	}
}

func (y *Yard) release(h Handle) {
	delete(y.heads, h)
}

func (y *Yard) claimed(h Handle) bool {
	return y.heads[h]
}

// owned reports whether h sits anywhere in a chain whose head a Train holds.
func (y *Yard) owned(h Handle) bool {
	for steps := 0; steps < len(y.nodes); steps++ {
		prev := y.node(h).prev
		if prev == NoWagon {
			break
		}
		h = prev
	}
	return y.claimed(h)
}

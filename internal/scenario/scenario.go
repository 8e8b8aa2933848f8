// Package scenario loads shunting scenarios from YAML and runs them against
// consist trains. A scenario names a set of trains with their initial
// composition and an ordered list of steps (attach, insert, move, split,
// reverse).
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/consist/pkg/types"
)

// Step operations.
const (
	OpAttachRear  = "attach_rear"
	OpInsertFront = "insert_front"
	OpInsertAt    = "insert_at"
	OpMove        = "move"
	OpSplit       = "split"
	OpReverse     = "reverse"
)

// validOps is the set of recognized step operations.
var validOps = map[string]bool{
	OpAttachRear:  true,
	OpInsertFront: true,
	OpInsertAt:    true,
	OpMove:        true,
	OpSplit:       true,
	OpReverse:     true,
}

// Scenario errors.
var (
	ErrEmptyScenario   = errors.New("scenario is empty")
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownOp       = errors.New("unknown step operation")
	ErrUnknownTrain    = errors.New("unknown train")
	ErrDuplicateTrain  = errors.New("duplicate train name")
	ErrDuplicateWagon  = errors.New("duplicate wagon id")
	ErrMissingWagons   = errors.New("step needs at least one wagon")
)

// Scenario is the decoded YAML document.
type Scenario struct {
	Name   string      `yaml:"name" json:"name"`
	Trains []TrainSpec `yaml:"trains" json:"trains"`
	Steps  []Step      `yaml:"steps" json:"steps"`
}

// TrainSpec describes a train and the wagons it starts with, front to rear.
type TrainSpec struct {
	Name        string           `yaml:"name" json:"name"`
	Origin      string           `yaml:"origin" json:"origin"`
	Destination string           `yaml:"destination" json:"destination"`
	Engine      types.Locomotive `yaml:"engine" json:"engine"`
	Wagons      []types.Wagon    `yaml:"wagons,omitempty" json:"wagons,omitempty"`
}

// Step is one shunting operation. Which fields are read depends on Op:
// attach_rear and insert_front use Wagons; insert_at uses Position and
// Wagons; move uses Wagon and To; split uses Position and To.
type Step struct {
	Op       string        `yaml:"op" json:"op"`
	Train    string        `yaml:"train" json:"train"`
	To       string        `yaml:"to,omitempty" json:"to,omitempty"`
	Position int           `yaml:"position,omitempty" json:"position,omitempty"`
	Wagon    int           `yaml:"wagon,omitempty" json:"wagon,omitempty"`
	Wagons   []types.Wagon `yaml:"wagons,omitempty" json:"wagons,omitempty"`
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario from r, rejecting unknown fields, and validates it.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyScenario
		}
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that train names are unique, that every step refers to
// known trains and operations, and that all wagons are well-formed with
// ids unique across the scenario. Positions are not checked here: an
// out-of-range position is a rejected step, not a malformed scenario.
func (s *Scenario) Validate() error {
	trains := make(map[string]bool, len(s.Trains))
	wagons := make(map[int]bool)

	addWagons := func(where string, ws []types.Wagon) error {
		for _, w := range ws {
			if err := w.Validate(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidScenario, where, err)
			}
			if wagons[w.ID] {
				return fmt.Errorf("%w: %s: %w %d", ErrInvalidScenario, where, ErrDuplicateWagon, w.ID)
			}
			wagons[w.ID] = true
		}
		return nil
	}

	for i, ts := range s.Trains {
		where := fmt.Sprintf("train %d", i+1)
		if ts.Name == "" {
			return fmt.Errorf("%w: %s: name is required", ErrInvalidScenario, where)
		}
		if trains[ts.Name] {
			return fmt.Errorf("%w: %w %q", ErrInvalidScenario, ErrDuplicateTrain, ts.Name)
		}
		trains[ts.Name] = true
		if err := ts.Engine.Validate(); err != nil {
			return fmt.Errorf("%w: train %q: %w", ErrInvalidScenario, ts.Name, err)
		}
		if err := addWagons(fmt.Sprintf("train %q", ts.Name), ts.Wagons); err != nil {
			return err
		}
	}

	for i, st := range s.Steps {
		where := fmt.Sprintf("step %d", i+1)
		if !validOps[st.Op] {
			return fmt.Errorf("%w: %s: %w %q", ErrInvalidScenario, where, ErrUnknownOp, st.Op)
		}
		if !trains[st.Train] {
			return fmt.Errorf("%w: %s: %w %q", ErrInvalidScenario, where, ErrUnknownTrain, st.Train)
		}
		switch st.Op {
		case OpAttachRear, OpInsertFront, OpInsertAt:
			if len(st.Wagons) == 0 {
				return fmt.Errorf("%w: %s: %w", ErrInvalidScenario, where, ErrMissingWagons)
			}
			if err := addWagons(where, st.Wagons); err != nil {
				return err
			}
		case OpMove, OpSplit:
			if !trains[st.To] {
				return fmt.Errorf("%w: %s: %w %q", ErrInvalidScenario, where, ErrUnknownTrain, st.To)
			}
		}
	}
	return nil
}

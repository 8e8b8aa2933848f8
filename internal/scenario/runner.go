package scenario

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/consist/internal/logging"
	"github.com/mesh-intelligence/consist/pkg/consist"
	"github.com/mesh-intelligence/consist/pkg/types"
)

// ErrInitialComposition is returned when a train cannot take the wagons the
// scenario starts it with.
var ErrInitialComposition = errors.New("initial composition rejected")

// NamedTrain pairs a scenario train name with the train itself.
type NamedTrain struct {
	Name  string
	Train *consist.Train
}

// StepResult records the outcome of one step. A rejected step is an
// ordinary outcome: OK is false and the trains are unchanged.
type StepResult struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Train  string `json:"train"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// Report is the state after a run.
type Report struct {
	Scenario string
	Yard     *consist.Yard
	Trains   []NamedTrain // in scenario order
	Steps    []StepResult
}

// Train returns the train with the given scenario name.
func (rep *Report) Train(name string) (*consist.Train, bool) {
	for _, nt := range rep.Trains {
		if nt.Name == name {
			return nt.Train, true
		}
	}
	return nil, false
}

// Runner builds and executes scenarios.
type Runner struct {
	log     *slog.Logger
	metrics *Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMetrics records step outcomes and final train sizes in m.
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner returns a Runner that logs to log, or discards when log is nil.
func NewRunner(log *slog.Logger, opts ...RunnerOption) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	r := &Runner{log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build creates a Yard and the scenario's trains with their initial wagons.
// No steps are executed.
func (r *Runner) Build(s *Scenario) (*Report, error) {
	rep := &Report{Scenario: s.Name, Yard: consist.NewYard()}

	for _, ts := range s.Trains {
		tr, err := consist.NewTrain(rep.Yard, ts.Engine, ts.Origin, ts.Destination, consist.WithLogger(r.log))
		if err != nil {
			return nil, fmt.Errorf("train %q: %w", ts.Name, err)
		}
		if len(ts.Wagons) > 0 {
			seq, err := r.sequence(rep.Yard, ts.Wagons)
			if err != nil {
				return nil, fmt.Errorf("train %q: %w", ts.Name, err)
			}
			if !tr.AttachToRear(seq) {
				return nil, fmt.Errorf("train %q: %w", ts.Name, ErrInitialComposition)
			}
		}
		r.log.Debug("train built", "name", ts.Name, "id", tr.ID(), "wagons", tr.WagonCount())
		rep.Trains = append(rep.Trains, NamedTrain{Name: ts.Name, Train: tr})
	}

	if err := rep.Verify(); err != nil {
		return nil, err
	}
	return rep, nil
}

// Run builds the scenario and executes its steps in order.
func (r *Runner) Run(s *Scenario) (*Report, error) {
	rep, err := r.Build(s)
	if err != nil {
		return nil, err
	}

	for i, st := range s.Steps {
		res, err := r.step(rep, i+1, st)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		rep.Steps = append(rep.Steps, res)
		r.metrics.observeStep(res)
		r.log.Info("step", "index", res.Index, "op", res.Op, "train", res.Train, "ok", res.OK, "detail", res.Detail)

		if err := rep.Verify(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	r.metrics.observeTrains(rep)
	return rep, nil
}

// Verify checks the chain invariants of every train in the report.
func (rep *Report) Verify() error {
	for _, nt := range rep.Trains {
		h, ok := nt.Train.WagonAtPosition(1)
		if !ok {
			continue
		}
		if rep.Yard.HasPrevious(h) {
			return fmt.Errorf("train %q: first wagon has a predecessor", nt.Name)
		}
		if err := rep.Yard.Check(h); err != nil {
			return fmt.Errorf("train %q: %w", nt.Name, err)
		}
	}
	return nil
}

func (r *Runner) step(rep *Report, index int, st Step) (StepResult, error) {
	res := StepResult{Index: index, Op: st.Op, Train: st.Train}

	tr, ok := rep.Train(st.Train)
	if !ok {
		return res, fmt.Errorf("%w %q", ErrUnknownTrain, st.Train)
	}

	switch st.Op {
	case OpAttachRear, OpInsertFront, OpInsertAt:
		seq, err := r.sequence(rep.Yard, st.Wagons)
		if err != nil {
			return res, err
		}
		switch st.Op {
		case OpAttachRear:
			res.OK = tr.AttachToRear(seq)
			res.Detail = fmt.Sprintf("attach %s at rear", describe(st.Wagons))
		case OpInsertFront:
			res.OK = tr.InsertAtFront(seq)
			res.Detail = fmt.Sprintf("insert %s at front", describe(st.Wagons))
		default:
			res.OK = tr.InsertAtPosition(st.Position, seq)
			res.Detail = fmt.Sprintf("insert %s at position %d", describe(st.Wagons), st.Position)
		}
	case OpMove:
		to, ok := rep.Train(st.To)
		if !ok {
			return res, fmt.Errorf("%w %q", ErrUnknownTrain, st.To)
		}
		res.OK = tr.MoveOneWagon(st.Wagon, to)
		res.Detail = fmt.Sprintf("move wagon %d to %s", st.Wagon, st.To)
	case OpSplit:
		to, ok := rep.Train(st.To)
		if !ok {
			return res, fmt.Errorf("%w %q", ErrUnknownTrain, st.To)
		}
		res.OK = tr.SplitAtPosition(st.Position, to)
		res.Detail = fmt.Sprintf("split at position %d to %s", st.Position, st.To)
	case OpReverse:
		tr.Reverse()
		res.OK = true
		res.Detail = "reverse"
	default:
		return res, fmt.Errorf("%w %q", ErrUnknownOp, st.Op)
	}
	return res, nil
}

// sequence adds wagons to the yard and couples them front to rear.
func (r *Runner) sequence(y *consist.Yard, ws []types.Wagon) (consist.Handle, error) {
	hs := make([]consist.Handle, 0, len(ws))
	for _, w := range ws {
		h, err := y.Add(w)
		if err != nil {
			return consist.NoWagon, err
		}
		hs = append(hs, h)
	}
	return y.Couple(hs...)
}

func describe(ws []types.Wagon) string {
	if len(ws) == 1 {
		return fmt.Sprintf("wagon %d", ws[0].ID)
	}
	return fmt.Sprintf("%d wagons", len(ws))
}

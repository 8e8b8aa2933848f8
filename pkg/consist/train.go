package consist

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/consist/internal/logging"
	"github.com/mesh-intelligence/consist/pkg/types"
)

// Train is a locomotive with a route and at most one chain of wagons of a
// single kind. The chain is reachable only through Train methods.
type Train struct {
	id          string
	origin      string
	destination string
	engine      types.Locomotive
	yard        *Yard
	first       Handle
	log         *slog.Logger
}

// Option configures a Train at construction.
type Option func(*Train)

// WithLogger sets the logger that receives rejected operations at debug
// level. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(t *Train) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTrain returns an empty train drawing its wagons from yard.
// Returns ErrNilYard when yard is nil and an error wrapping
// types.ErrInvalidCapacity when the engine cannot pull anything.
func NewTrain(yard *Yard, engine types.Locomotive, origin, destination string, opts ...Option) (*Train, error) {
	if yard == nil {
		return nil, ErrNilYard
	}
	if err := engine.Validate(); err != nil {
		return nil, err
	}
	t := &Train{
		id:          generateID(),
		origin:      origin,
		destination: destination,
		engine:      engine,
		yard:        yard,
		log:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("train", t.id)
	return t, nil
}

// generateID generates a new UUID v7 for train identity.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// ID returns the train's UUID. IDs are time-ordered, which gives callers a
// fixed order for locking two trains.
func (t *Train) ID() string { return t.id }

// Origin returns the departure label.
func (t *Train) Origin() string { return t.origin }

// Destination returns the arrival label.
func (t *Train) Destination() string { return t.destination }

// SetOrigin replaces the departure label.
func (t *Train) SetOrigin(origin string) { t.origin = origin }

// SetDestination replaces the arrival label.
func (t *Train) SetDestination(destination string) { t.destination = destination }

// Engine returns the locomotive.
func (t *Train) Engine() types.Locomotive { return t.engine }

// SetEngine swaps the locomotive. The new engine must be valid and able to
// pull the current chain; otherwise the old engine stays and an error
// wrapping types.ErrInvalidCapacity or types.ErrCapacityExceeded is returned.
func (t *Train) SetEngine(engine types.Locomotive) error {
	if err := engine.Validate(); err != nil {
		return err
	}
	if n := t.WagonCount(); !engine.CanPull(n) {
		return fmt.Errorf("%w: %d wagons, locomotive %d pulls %d",
			types.ErrCapacityExceeded, n, engine.Number, engine.MaxWagons)
	}
	t.engine = engine
	return nil
}

// HasWagons reports whether the train has at least one wagon.
func (t *Train) HasWagons() bool { return t.first != NoWagon }

// Kind returns the kind of the train's wagons; false for an empty train.
func (t *Train) Kind() (types.WagonKind, bool) {
	if t.first == NoWagon {
		return "", false
	}
	return t.yard.node(t.first).wagon.Kind, true
}

// IsPassengerTrain reports whether the train carries passenger wagons.
func (t *Train) IsPassengerTrain() bool {
	k, ok := t.Kind()
	return ok && k == types.KindPassenger
}

// IsFreightTrain reports whether the train carries freight wagons.
func (t *Train) IsFreightTrain() bool {
	k, ok := t.Kind()
	return ok && k == types.KindFreight
}

// WagonCount returns the number of wagons, 0 when empty.
func (t *Train) WagonCount() int {
	if t.first == NoWagon {
		return 0
	}
	return t.yard.ChainLength(t.first)
}

// TotalSeats sums the seats of a passenger train; 0 for any other train.
func (t *Train) TotalSeats() int {
	if !t.IsPassengerTrain() {
		return 0
	}
	return t.totalLoad()
}

// TotalMaxWeight sums the load capacity of a freight train; 0 for any other
// train.
func (t *Train) TotalMaxWeight() int {
	if !t.IsFreightTrain() {
		return 0
	}
	return t.totalLoad()
}

func (t *Train) totalLoad() int {
	sum := 0
	for _, w := range t.Wagons() {
		sum += w.Load()
	}
	return sum
}

// WagonAtPosition returns the wagon at a 1-based position from the front.
func (t *Train) WagonAtPosition(position int) (Handle, bool) {
	if position < 1 {
		return NoWagon, false
	}
	pos := 1
	for h := range t.Handles() {
		if pos == position {
			return h, true
		}
		pos++
	}
	return NoWagon, false
}

// WagonByID returns the first wagon from the front with the given id.
func (t *Train) WagonByID(id int) (Handle, bool) {
	for h := range t.Handles() {
		if t.yard.node(h).wagon.ID == id {
			return h, true
		}
	}
	return NoWagon, false
}

// LastWagon returns the rear wagon.
func (t *Train) LastWagon() (Handle, bool) {
	if t.first == NoWagon {
		return NoWagon, false
	}
	return t.yard.LastInChain(t.first), true
}

// Handles yields the handles of the train's wagons from front to rear. The
// sequence may be ranged over repeatedly; mutating the train while ranging is
// not supported.
func (t *Train) Handles() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for h := t.first; h != NoWagon; h = t.yard.node(h).next {
			if !yield(h) {
				return
			}
		}
	}
}

// Wagons yields 1-based positions and wagons from front to rear, with the
// same restrictions as Handles.
func (t *Train) Wagons() iter.Seq2[int, types.Wagon] {
	return func(yield func(int, types.Wagon) bool) {
		pos := 1
		for h := range t.Handles() {
			if !yield(pos, t.yard.node(h).wagon) {
				return
			}
			pos++
		}
	}
}

// CanAttach reports whether the sequence headed by seq could be coupled to
// this train. The sequence must be a loose chain head issued by this train's
// Yard, all of one kind, of the train's kind when the train is not empty, and
// short enough that the locomotive can still pull the result.
func (t *Train) CanAttach(seq Handle) bool {
	return t.checkAttach(seq) == ""
}

// AttachToRear couples seq behind the last wagon, or makes it the whole
// chain of an empty train. Returns false and changes nothing when CanAttach
// is false.
func (t *Train) AttachToRear(seq Handle) bool {
	if reason := t.checkAttach(seq); reason != "" {
		return t.reject("attach_rear", reason, "sequence", t.yard.id(seq))
	}
	t.attachRear(seq)
	return true
}

// InsertAtFront couples the current chain behind seq's tail and makes seq
// the first wagon. Returns false and changes nothing when CanAttach is false.
func (t *Train) InsertAtFront(seq Handle) bool {
	if reason := t.checkAttach(seq); reason != "" {
		return t.reject("insert_front", reason, "sequence", t.yard.id(seq))
	}
	t.insertFront(seq)
	return true
}

// InsertAtPosition splices seq in so that its head ends up at the given
// 1-based position. Position WagonCount()+1 appends at the rear. Returns
// false and changes nothing when the position is out of range or CanAttach is
// false.
func (t *Train) InsertAtPosition(position int, seq Handle) bool {
	count := t.WagonCount()
	if position < 1 || position > count+1 {
		return t.reject("insert_at", "position out of range", "position", position, "wagons", count)
	}
	if reason := t.checkAttach(seq); reason != "" {
		return t.reject("insert_at", reason, "sequence", t.yard.id(seq), "position", position)
	}

	switch position {
	case 1:
		t.insertFront(seq)
	case count + 1:
		t.attachRear(seq)
	default:
		before, _ := t.WagonAtPosition(position - 1)
		after := t.yard.Next(before)
		t.yard.detachFromNext(before)
		t.must(t.yard.attach(seq, before))
		t.must(t.yard.attach(after, t.yard.LastInChain(seq)))
	}
	return true
}

// MoveOneWagon takes the wagon with the given id out of this train, closing
// the gap it leaves, and couples it behind the last wagon of to. Returns
// false and changes neither train when the wagon is missing, to is not a
// different train of the same Yard, or to cannot take one more wagon of
// that kind.
func (t *Train) MoveOneWagon(wagonID int, to *Train) bool {
	h, ok := t.WagonByID(wagonID)
	if !ok {
		return t.reject("move", "wagon not found", "wagon", wagonID)
	}
	if reason := t.checkTransfer(to); reason != "" {
		return t.reject("move", reason, "wagon", wagonID)
	}
	w := t.yard.node(h).wagon
	if reason := to.checkAccept(w.Kind, 1); reason != "" {
		return t.reject("move", reason, "wagon", wagonID, "to", to.id)
	}

	if h == t.first {
		t.setFirst(t.yard.Next(h))
	}
	t.yard.removeFromChain(h)
	to.attachRear(h)
	return true
}

// SplitAtPosition uncouples the wagons from the given 1-based position to
// the rear and couples them, in order, behind the last wagon of to. Splitting
// at position 1 empties this train. Returns false and changes neither train
// when the position is out of range, to is not a different train of the same
// Yard, or to cannot take the detached wagons.
func (t *Train) SplitAtPosition(position int, to *Train) bool {
	count := t.WagonCount()
	if position < 1 || position > count {
		return t.reject("split", "position out of range", "position", position, "wagons", count)
	}
	if reason := t.checkTransfer(to); reason != "" {
		return t.reject("split", reason, "position", position)
	}
	h, _ := t.WagonAtPosition(position)
	kind := t.yard.node(h).wagon.Kind
	if reason := to.checkAccept(kind, count-position+1); reason != "" {
		return t.reject("split", reason, "position", position, "to", to.id)
	}

	if position == 1 {
		t.setFirst(NoWagon)
	} else {
		t.yard.detachFromPrevious(h)
	}
	to.attachRear(h)
	return true
}

// Reverse turns the chain around: the last wagon becomes the first. No-op
// for trains with fewer than two wagons.
func (t *Train) Reverse() {
	if t.first == NoWagon || !t.yard.HasNext(t.first) {
		return
	}
	t.setFirst(t.yard.reverseChain(t.first))
}

// checkAttach returns why seq cannot be attached, or "" if it can.
func (t *Train) checkAttach(seq Handle) string {
	if !t.yard.Valid(seq) {
		return "unknown sequence"
	}
	if t.yard.HasPrevious(seq) || t.yard.claimed(seq) {
		return "sequence is part of another chain"
	}
	kind := t.yard.node(seq).wagon.Kind
	n := 0
	for h := seq; h != NoWagon; h = t.yard.node(h).next {
		if t.yard.node(h).wagon.Kind != kind {
			return "sequence mixes wagon kinds"
		}
		n++
	}
	return t.checkAccept(kind, n)
}

// checkAccept returns why n wagons of kind cannot join this train, or "".
func (t *Train) checkAccept(kind types.WagonKind, n int) string {
	if k, ok := t.Kind(); ok && k != kind {
		return "wagon kind does not match train"
	}
	if !t.engine.CanPull(t.WagonCount() + n) {
		return "insufficient locomotive capacity"
	}
	return ""
}

// checkTransfer returns why wagons cannot be transferred to to, or "".
func (t *Train) checkTransfer(to *Train) string {
	switch {
	case to == nil:
		return "no target train"
	case to == t:
		return "target is the source train"
	case to.yard != t.yard:
		return "target train uses another yard"
	}
	return ""
}

// attachRear couples an already validated sequence at the rear.
func (t *Train) attachRear(seq Handle) {
	if t.first == NoWagon {
		t.setFirst(seq)
		return
	}
	t.must(t.yard.attach(seq, t.yard.LastInChain(t.first)))
}

// insertFront couples an already validated sequence at the front.
func (t *Train) insertFront(seq Handle) {
	old := t.first
	tail := t.yard.LastInChain(seq)
	t.setFirst(seq)
	if old != NoWagon {
		t.must(t.yard.attach(old, tail))
	}
}

func (t *Train) setFirst(h Handle) {
	t.yard.release(t.first)
	t.first = h
	t.yard.claim(h)
}

// must panics on a structural error. Train validates every precondition
// before touching links, so an error here is a broken invariant.
func (t *Train) must(err error) {
	if err != nil {
		panic(fmt.Sprintf("consist: train %s: %v", t.id, err))
	}
}

func (t *Train) reject(op, reason string, attrs ...any) bool {
	t.log.Debug("operation rejected", append([]any{"op", op, "reason", reason}, attrs...)...)
	return false
}

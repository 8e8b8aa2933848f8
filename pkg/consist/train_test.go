package consist

import (
	"bytes"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/consist/internal/logging"
	"github.com/mesh-intelligence/consist/pkg/types"
)

func newTestTrain(t *testing.T, y *Yard, maxWagons int) *Train {
	t.Helper()
	engine, err := types.NewLocomotive(1, maxWagons)
	require.NoError(t, err)
	tr, err := NewTrain(y, engine, "Amsterdam", "Paris")
	require.NoError(t, err)
	return tr
}

// sequence adds the wagons to the yard and couples them into a loose chain.
func sequence(t *testing.T, y *Yard, wagons ...types.Wagon) Handle {
	t.Helper()
	hs := make([]Handle, 0, len(wagons))
	for _, w := range wagons {
		h, err := y.Add(w)
		require.NoError(t, err)
		hs = append(hs, h)
	}
	head, err := y.Couple(hs...)
	require.NoError(t, err)
	return head
}

func passengers(ids ...int) []types.Wagon {
	ws := make([]types.Wagon, 0, len(ids))
	for _, id := range ids {
		ws = append(ws, types.NewPassengerWagon(id, 10))
	}
	return ws
}

func freights(ids ...int) []types.Wagon {
	ws := make([]types.Wagon, 0, len(ids))
	for _, id := range ids {
		ws = append(ws, types.NewFreightWagon(id, 100))
	}
	return ws
}

// trainIDs lists the wagon ids of a train from front to rear.
func trainIDs(tr *Train) []int {
	ids := []int{}
	for _, w := range tr.Wagons() {
		ids = append(ids, w.ID)
	}
	return ids
}

// requireSound asserts the train's structural and domain invariants.
func requireSound(t *testing.T, tr *Train) {
	t.Helper()
	if !tr.HasWagons() {
		return
	}
	first, ok := tr.WagonAtPosition(1)
	require.True(t, ok)
	require.False(t, tr.yard.HasPrevious(first), "first wagon must be a head")
	require.NoError(t, tr.yard.Check(first))
	require.LessOrEqual(t, tr.WagonCount(), tr.Engine().MaxWagons)
	kind, _ := tr.Kind()
	for _, w := range tr.Wagons() {
		require.Equal(t, kind, w.Kind)
	}
}

func TestNewTrain(t *testing.T) {
	y := NewYard()
	engine, err := types.NewLocomotive(3, 5)
	require.NoError(t, err)

	tr, err := NewTrain(y, engine, "Utrecht", "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Utrecht", tr.Origin())
	assert.Equal(t, "Berlin", tr.Destination())
	assert.Equal(t, engine, tr.Engine())
	assert.NotEmpty(t, tr.ID())
	assert.False(t, tr.HasWagons())
	assert.Equal(t, 0, tr.WagonCount())
	assert.False(t, tr.IsPassengerTrain())
	assert.False(t, tr.IsFreightTrain())
	_, ok := tr.LastWagon()
	assert.False(t, ok)

	other, err := NewTrain(y, engine, "Utrecht", "Berlin")
	require.NoError(t, err)
	assert.NotEqual(t, tr.ID(), other.ID())

	_, err = NewTrain(nil, engine, "a", "b")
	assert.ErrorIs(t, err, ErrNilYard)

	_, err = NewTrain(y, types.Locomotive{Number: 9}, "a", "b")
	assert.ErrorIs(t, err, types.ErrInvalidCapacity)
}

func TestRouteSetters(t *testing.T) {
	tr := newTestTrain(t, NewYard(), 1)
	tr.SetOrigin("Den Haag")
	tr.SetDestination("Brussel")
	assert.Equal(t, "Den Haag", tr.Origin())
	assert.Equal(t, "Brussel", tr.Destination())
}

func TestScenarioAttachToEmptyTrain(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 3)

	ok := tr.AttachToRear(sequence(t, y, passengers(1, 2)...))

	assert.True(t, ok)
	assert.Equal(t, 2, tr.WagonCount())
	assert.True(t, tr.IsPassengerTrain())
	assert.False(t, tr.IsFreightTrain())
	requireSound(t, tr)
}

func TestScenarioIncompatibleAttach(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 5)
	require.True(t, tr.AttachToRear(sequence(t, y,
		types.NewFreightWagon(1, 10),
		types.NewFreightWagon(2, 20),
		types.NewFreightWagon(3, 30),
	)))
	assert.Equal(t, 60, tr.TotalMaxWeight())
	assert.Equal(t, 0, tr.TotalSeats())

	seq := sequence(t, y, passengers(4)...)
	assert.False(t, tr.CanAttach(seq))
	assert.False(t, tr.AttachToRear(seq))
	assert.Equal(t, 3, tr.WagonCount())
	assert.Equal(t, []int{1, 2, 3}, trainIDs(tr))
	assert.False(t, y.HasPrevious(seq), "rejected sequence stays loose")
	requireSound(t, tr)
}

func TestTotalSeats(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 5)
	require.True(t, tr.AttachToRear(sequence(t, y,
		types.NewPassengerWagon(1, 36),
		types.NewPassengerWagon(2, 18),
		types.NewPassengerWagon(3, 0),
	)))
	assert.Equal(t, 54, tr.TotalSeats())
	assert.Equal(t, 0, tr.TotalMaxWeight())
}

func TestAttachToRearLengthProperty(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		added    int
		max      int
		wantOK   bool
	}{
		{name: "room to spare", existing: 2, added: 1, max: 5, wantOK: true},
		{name: "exactly at capacity", existing: 2, added: 3, max: 5, wantOK: true},
		{name: "one over capacity", existing: 2, added: 4, max: 5, wantOK: false},
		{name: "empty train at capacity", existing: 0, added: 3, max: 3, wantOK: true},
		{name: "empty train over capacity", existing: 0, added: 4, max: 3, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := NewYard()
			tr := newTestTrain(t, y, tt.max)
			nextID := 1
			if tt.existing > 0 {
				ids := make([]int, tt.existing)
				for i := range ids {
					ids[i] = nextID
					nextID++
				}
				require.True(t, tr.AttachToRear(sequence(t, y, passengers(ids...)...)))
			}
			ids := make([]int, tt.added)
			for i := range ids {
				ids[i] = nextID
				nextID++
			}
			seq := sequence(t, y, passengers(ids...)...)

			assert.Equal(t, tt.wantOK, tr.CanAttach(seq))
			ok := tr.AttachToRear(seq)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.existing+tt.added, tr.WagonCount())
			} else {
				assert.Equal(t, tt.existing, tr.WagonCount())
			}
			requireSound(t, tr)
		})
	}
}

func TestCanAttachRejectsForeignChains(t *testing.T) {
	y := NewYard()
	a := newTestTrain(t, y, 10)
	b := newTestTrain(t, y, 10)
	require.True(t, a.AttachToRear(sequence(t, y, passengers(1, 2, 3)...)))

	head, _ := a.WagonAtPosition(1)
	middle, _ := a.WagonAtPosition(2)

	assert.False(t, a.CanAttach(head), "own chain")
	assert.False(t, b.CanAttach(head), "another train's chain")
	assert.False(t, b.CanAttach(middle), "wagon inside a chain")
	assert.False(t, b.CanAttach(Handle(99)), "unknown handle")
	assert.False(t, b.AttachToRear(head))
	assert.Equal(t, []int{1, 2, 3}, trainIDs(a))
	assert.Equal(t, 0, b.WagonCount())

	mixed := sequence(t, y, types.NewPassengerWagon(4, 1), types.NewFreightWagon(5, 1))
	assert.False(t, b.CanAttach(mixed), "mixed sequence")
}

func TestHandlesBelongToTheirYard(t *testing.T) {
	y, other := NewYard(), NewYard()
	tr := newTestTrain(t, y, 10)
	require.True(t, tr.AttachToRear(sequence(t, y, passengers(1)...)))

	// Same slot, different yard: must not alias wagon 1.
	stray := sequence(t, other, passengers(7, 8)...)
	assert.False(t, y.Valid(stray))
	_, ok := y.Wagon(stray)
	assert.False(t, ok)
	assert.False(t, tr.CanAttach(stray))
	assert.False(t, tr.AttachToRear(stray))
	assert.False(t, tr.InsertAtFront(stray))
	assert.Equal(t, []int{1}, trainIDs(tr))
	assert.Panics(t, func() { y.Next(stray) })
	assert.Equal(t, []int{7, 8}, chainIDs(other, stray))
}

func TestInsertAtFront(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 4)

	require.True(t, tr.InsertAtFront(sequence(t, y, passengers(3, 4)...)))
	assert.Equal(t, []int{3, 4}, trainIDs(tr))

	require.True(t, tr.InsertAtFront(sequence(t, y, passengers(1, 2)...)))
	assert.Equal(t, []int{1, 2, 3, 4}, trainIDs(tr))
	requireSound(t, tr)

	assert.False(t, tr.InsertAtFront(sequence(t, y, passengers(0)...)), "capacity")
	assert.Equal(t, []int{1, 2, 3, 4}, trainIDs(tr))
	requireSound(t, tr)
}

func TestInsertAtFrontRejectsKindMismatch(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 4)
	require.True(t, tr.AttachToRear(sequence(t, y, freights(1)...)))

	assert.False(t, tr.InsertAtFront(sequence(t, y, passengers(2)...)))
	assert.Equal(t, []int{1}, trainIDs(tr))
}

func TestInsertAtPosition(t *testing.T) {
	tests := []struct {
		name     string
		position int
		wantOK   bool
		wantIDs  []int
	}{
		{name: "front", position: 1, wantOK: true, wantIDs: []int{8, 9, 1, 2, 3}},
		{name: "middle", position: 2, wantOK: true, wantIDs: []int{1, 8, 9, 2, 3}},
		{name: "before last", position: 3, wantOK: true, wantIDs: []int{1, 2, 8, 9, 3}},
		{name: "rear", position: 4, wantOK: true, wantIDs: []int{1, 2, 3, 8, 9}},
		{name: "zero", position: 0, wantOK: false, wantIDs: []int{1, 2, 3}},
		{name: "beyond rear", position: 5, wantOK: false, wantIDs: []int{1, 2, 3}},
		{name: "negative", position: -1, wantOK: false, wantIDs: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := NewYard()
			tr := newTestTrain(t, y, 10)
			require.True(t, tr.AttachToRear(sequence(t, y, passengers(1, 2, 3)...)))
			seq := sequence(t, y, passengers(8, 9)...)

			assert.Equal(t, tt.wantOK, tr.InsertAtPosition(tt.position, seq))
			assert.Equal(t, tt.wantIDs, trainIDs(tr))
			requireSound(t, tr)
			if !tt.wantOK {
				assert.Equal(t, 2, y.ChainLength(seq), "rejected sequence stays intact")
				assert.False(t, y.HasPrevious(seq))
			}
		})
	}
}

func TestInsertAtPositionValidation(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 3)

	assert.True(t, tr.InsertAtPosition(1, sequence(t, y, freights(1)...)), "empty train accepts position 1")
	assert.False(t, tr.InsertAtPosition(2, sequence(t, y, passengers(2)...)), "kind mismatch")
	assert.False(t, tr.InsertAtPosition(2, sequence(t, y, freights(3, 4, 5)...)), "capacity")
	assert.True(t, tr.InsertAtPosition(2, sequence(t, y, freights(6, 7)...)), "fills to capacity")
	assert.Equal(t, []int{1, 6, 7}, trainIDs(tr))
	requireSound(t, tr)
}

func TestScenarioMoveOneWagon(t *testing.T) {
	y := NewYard()
	src := newTestTrain(t, y, 5)
	dst := newTestTrain(t, y, 5)
	require.True(t, src.AttachToRear(sequence(t, y, passengers(1, 2, 3)...)))

	require.True(t, src.MoveOneWagon(2, dst))

	assert.Equal(t, []int{1, 3}, trainIDs(src))
	assert.Equal(t, []int{2}, trainIDs(dst))
	one, _ := src.WagonByID(1)
	three, _ := src.WagonByID(3)
	assert.Equal(t, three, y.Next(one), "gap closed")
	assert.Equal(t, one, y.Previous(three))
	requireSound(t, src)
	requireSound(t, dst)
}

func TestMoveOneWagonEnds(t *testing.T) {
	y := NewYard()
	src := newTestTrain(t, y, 5)
	dst := newTestTrain(t, y, 5)
	require.True(t, src.AttachToRear(sequence(t, y, passengers(1, 2, 3)...)))
	require.True(t, dst.AttachToRear(sequence(t, y, passengers(10)...)))

	require.True(t, src.MoveOneWagon(1, dst))
	assert.Equal(t, []int{2, 3}, trainIDs(src))
	assert.Equal(t, []int{10, 1}, trainIDs(dst))

	require.True(t, src.MoveOneWagon(3, dst))
	assert.Equal(t, []int{2}, trainIDs(src))
	assert.Equal(t, []int{10, 1, 3}, trainIDs(dst))

	require.True(t, src.MoveOneWagon(2, dst))
	assert.False(t, src.HasWagons())
	assert.Equal(t, []int{10, 1, 3, 2}, trainIDs(dst))
	requireSound(t, src)
	requireSound(t, dst)

	// The emptied train can take wagons again.
	assert.True(t, src.AttachToRear(sequence(t, y, freights(20)...)))
	assert.True(t, src.IsFreightTrain())
}

func TestMoveOneWagonRejections(t *testing.T) {
	y := NewYard()
	src := newTestTrain(t, y, 5)
	require.True(t, src.AttachToRear(sequence(t, y, passengers(1, 2)...)))

	freightTrain := newTestTrain(t, y, 5)
	require.True(t, freightTrain.AttachToRear(sequence(t, y, freights(10)...)))

	fullTrain := newTestTrain(t, y, 1)
	require.True(t, fullTrain.AttachToRear(sequence(t, y, passengers(20)...)))

	otherYard := newTestTrain(t, NewYard(), 5)

	tests := []struct {
		name string
		id   int
		to   *Train
	}{
		{name: "unknown wagon", id: 99, to: freightTrain},
		{name: "kind mismatch", id: 1, to: freightTrain},
		{name: "no capacity", id: 1, to: fullTrain},
		{name: "nil target", id: 1, to: nil},
		{name: "same train", id: 1, to: src},
		{name: "different yard", id: 1, to: otherYard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, src.MoveOneWagon(tt.id, tt.to))
			assert.Equal(t, []int{1, 2}, trainIDs(src))
			assert.Equal(t, []int{10}, trainIDs(freightTrain))
			assert.Equal(t, []int{20}, trainIDs(fullTrain))
			assert.Equal(t, 0, otherYard.WagonCount())
			requireSound(t, src)
		})
	}
}

func TestScenarioSplitAtPosition(t *testing.T) {
	y := NewYard()
	src := newTestTrain(t, y, 5)
	dst := newTestTrain(t, y, 5)
	require.True(t, src.AttachToRear(sequence(t, y, passengers(1, 2, 3, 4)...)))

	before := src.WagonCount() + dst.WagonCount()
	require.True(t, src.SplitAtPosition(3, dst))

	assert.Equal(t, []int{1, 2}, trainIDs(src))
	assert.Equal(t, []int{3, 4}, trainIDs(dst))
	assert.Equal(t, before, src.WagonCount()+dst.WagonCount())
	last, _ := src.LastWagon()
	w, _ := y.Wagon(last)
	assert.Equal(t, 2, w.ID, "wagon before the split point is the new rear")
	requireSound(t, src)
	requireSound(t, dst)
}

func TestSplitAtPositionOneEmptiesTrain(t *testing.T) {
	y := NewYard()
	src := newTestTrain(t, y, 5)
	dst := newTestTrain(t, y, 5)
	require.True(t, src.AttachToRear(sequence(t, y, passengers(1, 2, 3)...)))
	require.True(t, dst.AttachToRear(sequence(t, y, passengers(7)...)))

	require.True(t, src.SplitAtPosition(1, dst))
	assert.False(t, src.HasWagons())
	assert.Equal(t, []int{7, 1, 2, 3}, trainIDs(dst))
	requireSound(t, dst)

	// Everything can be moved back wagon by wagon.
	for _, id := range []int{1, 2, 3} {
		require.True(t, dst.MoveOneWagon(id, src))
	}
	assert.Equal(t, []int{1, 2, 3}, trainIDs(src))
	assert.Equal(t, []int{7}, trainIDs(dst))
	requireSound(t, src)
	requireSound(t, dst)
}

func TestSplitAtPositionRejections(t *testing.T) {
	y := NewYard()
	src := newTestTrain(t, y, 5)
	require.True(t, src.AttachToRear(sequence(t, y, passengers(1, 2, 3, 4)...)))
	small := newTestTrain(t, y, 2)
	require.True(t, small.AttachToRear(sequence(t, y, passengers(10)...)))
	freightTrain := newTestTrain(t, y, 10)
	require.True(t, freightTrain.AttachToRear(sequence(t, y, freights(20)...)))

	tests := []struct {
		name     string
		position int
		to       *Train
	}{
		{name: "position zero", position: 0, to: small},
		{name: "position past rear", position: 5, to: small},
		{name: "capacity", position: 2, to: small},
		{name: "kind mismatch", position: 4, to: freightTrain},
		{name: "nil target", position: 4, to: nil},
		{name: "same train", position: 2, to: src},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, src.SplitAtPosition(tt.position, tt.to))
			assert.Equal(t, []int{1, 2, 3, 4}, trainIDs(src))
			assert.Equal(t, []int{10}, trainIDs(small))
			assert.Equal(t, []int{20}, trainIDs(freightTrain))
			requireSound(t, src)
		})
	}

	// Splitting off exactly what fits succeeds.
	assert.True(t, src.SplitAtPosition(4, small))
	assert.Equal(t, []int{10, 4}, trainIDs(small))
}

func TestReverse(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 10)

	tr.Reverse()
	assert.False(t, tr.HasWagons())

	require.True(t, tr.AttachToRear(sequence(t, y, passengers(1)...)))
	tr.Reverse()
	assert.Equal(t, []int{1}, trainIDs(tr))

	require.True(t, tr.AttachToRear(sequence(t, y, passengers(2, 3, 4)...)))
	tr.Reverse()
	assert.Equal(t, []int{4, 3, 2, 1}, trainIDs(tr))
	requireSound(t, tr)

	tr.Reverse()
	assert.Equal(t, []int{1, 2, 3, 4}, trainIDs(tr))
	for pos, id := range []int{1, 2, 3, 4} {
		h, ok := tr.WagonAtPosition(pos + 1)
		require.True(t, ok)
		w, _ := y.Wagon(h)
		assert.Equal(t, id, w.ID)
	}
	requireSound(t, tr)
}

func TestReversedTrainKeepsOwnership(t *testing.T) {
	y := NewYard()
	a := newTestTrain(t, y, 10)
	b := newTestTrain(t, y, 10)
	require.True(t, a.AttachToRear(sequence(t, y, passengers(1, 2)...)))
	oldFirst, _ := a.WagonAtPosition(1)

	a.Reverse()
	newFirst, _ := a.WagonAtPosition(1)

	assert.False(t, b.CanAttach(newFirst), "new first wagon is owned by a")
	assert.False(t, b.CanAttach(oldFirst), "old first wagon is now inside the chain")
}

func TestScenarioPositionBounds(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 10)
	_, ok := tr.WagonAtPosition(1)
	assert.False(t, ok, "empty train")

	require.True(t, tr.AttachToRear(sequence(t, y, passengers(5, 6, 7)...)))

	_, ok = tr.WagonAtPosition(0)
	assert.False(t, ok)
	_, ok = tr.WagonAtPosition(tr.WagonCount() + 1)
	assert.False(t, ok)

	h, ok := tr.WagonAtPosition(3)
	require.True(t, ok)
	w, _ := y.Wagon(h)
	assert.Equal(t, 7, w.ID)
}

func TestWagonByID(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 10)
	require.True(t, tr.AttachToRear(sequence(t, y, passengers(5, 6, 5)...)))

	h, ok := tr.WagonByID(5)
	require.True(t, ok)
	first, _ := tr.WagonAtPosition(1)
	assert.Equal(t, first, h, "first match from the front")

	_, ok = tr.WagonByID(42)
	assert.False(t, ok)
}

func TestWagonsTraversal(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 10)

	assert.Empty(t, trainIDs(tr))

	require.True(t, tr.AttachToRear(sequence(t, y, passengers(1, 2, 3)...)))

	seq := tr.Wagons()
	var first, second []int
	for _, w := range seq {
		first = append(first, w.ID)
	}
	for _, w := range seq {
		second = append(second, w.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, first)
	assert.Equal(t, first, second, "traversal is restartable")

	var positions []int
	for pos := range tr.Wagons() {
		positions = append(positions, pos)
		if pos == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, positions)

	handles := slices.Collect(tr.Handles())
	assert.Len(t, handles, 3)
}

func TestSetEngine(t *testing.T) {
	y := NewYard()
	tr := newTestTrain(t, y, 5)
	require.True(t, tr.AttachToRear(sequence(t, y, freights(1, 2, 3)...)))

	err := tr.SetEngine(types.Locomotive{Number: 2, MaxWagons: 2})
	assert.ErrorIs(t, err, types.ErrCapacityExceeded)
	assert.Equal(t, 5, tr.Engine().MaxWagons)

	err = tr.SetEngine(types.Locomotive{Number: 3})
	assert.ErrorIs(t, err, types.ErrInvalidCapacity)

	require.NoError(t, tr.SetEngine(types.Locomotive{Number: 4, MaxWagons: 3}))
	assert.Equal(t, 4, tr.Engine().Number)
	assert.False(t, tr.AttachToRear(sequence(t, y, freights(4)...)))
}

func TestRejectionsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	y := NewYard()
	engine, err := types.NewLocomotive(1, 1)
	require.NoError(t, err)
	tr, err := NewTrain(y, engine, "a", "b", WithLogger(logging.NewWriter(&buf, slog.LevelDebug)))
	require.NoError(t, err)

	assert.False(t, tr.AttachToRear(sequence(t, y, passengers(1, 2)...)))

	out := buf.String()
	assert.Contains(t, out, "op=attach_rear")
	assert.Contains(t, out, "insufficient locomotive capacity")
	assert.Contains(t, out, "train="+tr.ID())
}

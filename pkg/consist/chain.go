package consist

import "github.com/mesh-intelligence/consist/pkg/types"

// HasNext reports whether h has a successor.
func (y *Yard) HasNext(h Handle) bool { return y.node(h).next != NoWagon }

// HasPrevious reports whether h has a predecessor.
func (y *Yard) HasPrevious(h Handle) bool { return y.node(h).prev != NoWagon }

// Next returns the successor of h, or NoWagon.
func (y *Yard) Next(h Handle) Handle { return y.node(h).next }

// Previous returns the predecessor of h, or NoWagon.
func (y *Yard) Previous(h Handle) Handle { return y.node(h).prev }

// LastInChain follows next links from h to the tail of its chain. A wagon
// without a successor is its own tail.
func (y *Yard) LastInChain(h Handle) Handle {
	for y.node(h).next != NoWagon {
		h = y.node(h).next
	}
	return h
}

// ChainLength counts the wagons from h to the tail, both included.
func (y *Yard) ChainLength(h Handle) int {
	n := 1
	for h = y.node(h).next; h != NoWagon; h = y.node(h).next {
		n++
	}
	return n
}

// AttachTo couples h directly behind pred.
//
// h must not have a predecessor, pred must not have a successor, and neither
// may belong to a Train; otherwise types.ErrAlreadyConnected is returned. If
// pred is the tail of h's own chain the coupling would close a loop and
// types.ErrCyclicChain is returned. No link changes on error.
func (y *Yard) AttachTo(h, pred Handle) error {
	if err := y.checkLoose("attach", h, pred); err != nil {
		return err
	}
	return y.attach(h, pred)
}

func (y *Yard) attach(h, pred Handle) error {
	n, p := y.node(h), y.node(pred)
	if n.prev != NoWagon || p.next != NoWagon {
		return y.chainError("attach", h, pred, types.ErrAlreadyConnected)
	}
	if y.LastInChain(h) == pred {
		return y.chainError("attach", h, pred, types.ErrCyclicChain)
	}
	p.next = h
	n.prev = pred
	return nil
}

// DetachFromPrevious severs h from its predecessor. No-op when h is a head.
// Fails with types.ErrAlreadyConnected when h belongs to a Train.
func (y *Yard) DetachFromPrevious(h Handle) error {
	if err := y.checkLoose("detach_previous", h, NoWagon); err != nil {
		return err
	}
	y.detachFromPrevious(h)
	return nil
}

func (y *Yard) detachFromPrevious(h Handle) {
	n := y.node(h)
	if n.prev == NoWagon {
		return
	}
	y.node(n.prev).next = NoWagon
	n.prev = NoWagon
}

// DetachFromNext severs h from its successor and reports whether there was
// one to sever. Fails with types.ErrAlreadyConnected when h belongs to a
// Train.
func (y *Yard) DetachFromNext(h Handle) (bool, error) {
	if err := y.checkLoose("detach_next", h, NoWagon); err != nil {
		return false, err
	}
	return y.detachFromNext(h), nil
}

func (y *Yard) detachFromNext(h Handle) bool {
	n := y.node(h)
	if n.next == NoWagon {
		return false
	}
	y.node(n.next).prev = NoWagon
	n.next = NoWagon
	return true
}

// ReattachTo moves h behind pred, first detaching h from its predecessor and
// pred from its successor. It fails, before anything is changed, only when
// the rewire would close a loop (pred at or behind h in the same chain,
// types.ErrCyclicChain) or h or pred belongs to a Train
// (types.ErrAlreadyConnected).
func (y *Yard) ReattachTo(h, pred Handle) error {
	if err := y.checkLoose("reattach", h, pred); err != nil {
		return err
	}
	for cur := h; cur != NoWagon; cur = y.node(cur).next {
		if cur == pred {
			return y.chainError("reattach", h, pred, types.ErrCyclicChain)
		}
	}
	y.detachFromPrevious(h)
	y.detachFromNext(pred)
	return y.attach(h, pred)
}

// RemoveFromChain excises h and couples its former neighbours to each other.
// Afterwards h is solitary. Fails with types.ErrAlreadyConnected when h
// belongs to a Train.
func (y *Yard) RemoveFromChain(h Handle) error {
	if err := y.checkLoose("remove", h, NoWagon); err != nil {
		return err
	}
	y.removeFromChain(h)
	return nil
}

func (y *Yard) removeFromChain(h Handle) {
	n := y.node(h)
	prev, next := n.prev, n.next
	if prev != NoWagon {
		y.node(prev).next = next
	}
	if next != NoWagon {
		y.node(next).prev = prev
	}
	n.prev, n.next = NoWagon, NoWagon
}

// ReverseChain reverses h and all of its successors in place and returns the
// new first wagon of that section (the former tail). A predecessor of h stays
// coupled, now to the new first wagon. Returns h when it has no successor.
// Fails with types.ErrAlreadyConnected when h belongs to a Train.
func (y *Yard) ReverseChain(h Handle) (Handle, error) {
	if err := y.checkLoose("reverse", h, NoWagon); err != nil {
		return h, err
	}
	return y.reverseChain(h), nil
}

func (y *Yard) reverseChain(h Handle) Handle {
	start := y.node(h)
	if start.next == NoWagon {
		return h
	}
	pred := start.prev

	last := h
	for cur := h; cur != NoWagon; {
		n := y.node(cur)
		n.next, n.prev = n.prev, n.next
		last = cur
		cur = n.prev
	}

	// The old first wagon now points back at pred; it is the new tail.
	start.next = NoWagon
	y.node(last).prev = pred
	if pred != NoWagon {
		y.node(pred).next = last
	}
	return last
}

// checkLoose fails with types.ErrAlreadyConnected when h, or other unless it
// is NoWagon, belongs to a Train.
func (y *Yard) checkLoose(op string, h, other Handle) error {
	if y.owned(h) || (other != NoWagon && y.owned(other)) {
		return y.chainError(op, h, other, types.ErrAlreadyConnected)
	}
	return nil
}

// Couple joins the chains headed by hs, in order, into one chain and returns
// its head. Every handle must be a loose chain head (no predecessor, not the
// first wagon of a train) and appear once; otherwise nothing is coupled.
func (y *Yard) Couple(hs ...Handle) (Handle, error) {
	if len(hs) == 0 {
		return NoWagon, nil
	}
	seen := make(map[Handle]bool, len(hs))
	for _, h := range hs {
		if y.node(h).prev != NoWagon || y.claimed(h) {
			return NoWagon, y.chainError("couple", h, NoWagon, types.ErrAlreadyConnected)
		}
		if seen[h] {
			return NoWagon, y.chainError("couple", h, h, types.ErrCyclicChain)
		}
		seen[h] = true
	}
	for i := 1; i < len(hs); i++ {
		if err := y.attach(hs[i], y.LastInChain(hs[i-1])); err != nil {
			return NoWagon, err
		}
	}
	return hs[0], nil
}

// Check verifies the chain that contains h: links agree in both directions
// and neither direction loops. It does not modify the Yard.
func (y *Yard) Check(h Handle) error {
	limit := len(y.nodes)

	head := h
	for steps := 0; y.node(head).prev != NoWagon; steps++ {
		if steps >= limit {
			return y.chainError("check", h, NoWagon, types.ErrCyclicChain)
		}
		prev := y.node(head).prev
		if y.node(prev).next != head {
			return y.chainError("check", prev, head, types.ErrBrokenLink)
		}
		head = prev
	}

	seen := 0
	for cur := head; cur != NoWagon; cur = y.node(cur).next {
		seen++
		if seen > limit {
			return y.chainError("check", h, NoWagon, types.ErrCyclicChain)
		}
		next := y.node(cur).next
		if next != NoWagon && y.node(next).prev != cur {
			return y.chainError("check", cur, next, types.ErrBrokenLink)
		}
	}
	return nil
}

package cia

import "container/heap"

// bestThenDiveQueue implements the "btd" strategy of spec.md section 4.2: a
// global best-first heap backs the frontier, but whenever a batch of
// children is pushed, the preferred child (smallest lb, tied by smallest
// max sigma) is set aside as the current dive target and dispensed next,
// ahead of anything already in the heap. Its siblings go into the heap
// normally, available once the dive line runs out.
type bestThenDiveQueue struct {
	h    bestFirstHeap
	dive *Node
}

func newBestThenDiveQueue() NodeQueue {
	q := &bestThenDiveQueue{}
	heap.Init(&q.h)
	return q
}

func (q *bestThenDiveQueue) Size() int {
	n := q.h.Len()
	if q.dive != nil {
		n++
	}
	return n
}

func (q *bestThenDiveQueue) Empty() bool {
	return q.dive == nil && q.h.Len() == 0
}

func (q *bestThenDiveQueue) Top() *Node {
	if q.dive != nil {
		return q.dive
	}
	return q.h[0]
}

func (q *bestThenDiveQueue) Pop() {
	if q.dive != nil {
		q.dive = nil
		return
	}
	heap.Pop(&q.h)
}

func (q *bestThenDiveQueue) Push(children []*Node) {
	if len(children) == 0 {
		return
	}
	// A dive target can only be set while the previous one has already
	// been dispensed (Top/Pop always consumes the current dive before the
	// driver branches and pushes its children); if one somehow survives,
	// fold it back into the heap rather than lose it.
	if q.dive != nil {
		heap.Push(&q.h, q.dive)
		q.dive = nil
	}

	best := children[0]
	for _, c := range children[1:] {
		if c.lb < best.lb || (c.lb == best.lb && c.maxSigma() < best.maxSigma()) {
			best = c
		}
	}
	q.dive = best
	for _, c := range children {
		if c == best {
			continue
		}
		heap.Push(&q.h, c)
	}
}

func (q *bestThenDiveQueue) Clear(release func(*Node)) {
	if q.dive != nil {
		release(q.dive)
		q.dive = nil
	}
	for _, n := range q.h {
		release(n)
	}
	q.h = nil
}

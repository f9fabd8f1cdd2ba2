package cia

import "sort"

// dfsQueue is a depth-first stack: Pop always returns the most recently
// pushed node. Within one Push batch, children are ordered so that the
// least-worse child (spec.md section 4.1's ordering) ends up on top of the
// stack and is therefore dispensed first.
type dfsQueue struct {
	stack []*Node
}

func newDFSQueue() NodeQueue {
	return &dfsQueue{}
}

func (q *dfsQueue) Size() int  { return len(q.stack) }
func (q *dfsQueue) Empty() bool { return len(q.stack) == 0 }

func (q *dfsQueue) Top() *Node {
	return q.stack[len(q.stack)-1]
}

func (q *dfsQueue) Pop() {
	q.stack = q.stack[:len(q.stack)-1]
}

func (q *dfsQueue) Push(children []*Node) {
	batch := append([]*Node(nil), children...)
	sort.SliceStable(batch, func(i, j int) bool {
		return worseThan(batch[j], batch[i]) // batch[i] better than batch[j] sorts first
	})
	// Push worst-first so the best child lands on top of the stack.
	for i := len(batch) - 1; i >= 0; i-- {
		q.stack = append(q.stack, batch[i])
	}
}

func (q *dfsQueue) Clear(release func(*Node)) {
	for _, n := range q.stack {
		release(n)
	}
	q.stack = nil
}

package cia

import "container/heap"

// bestFirstHeap is a container/heap.Interface min-heap over the worseThan
// ordering: the least-worse node is always at index 0. No example repo in
// the retrieval pack wires a third-party priority-queue library (checked:
// none import a binary-heap or skip-list package), so container/heap is
// used directly — it is the idiomatic and only observed Go mechanism for
// this in the corpus.
type bestFirstHeap []*Node

func (h bestFirstHeap) Len() int { return len(h) }
func (h bestFirstHeap) Less(i, j int) bool {
	return worseThan(h[j], h[i]) // h[i] better than h[j]
}
func (h bestFirstHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *bestFirstHeap) Push(x interface{}) {
	*h = append(*h, x.(*Node))
}

func (h *bestFirstHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// bestFirstQueue implements the "bfs" strategy of spec.md section 4.2:
// best-first by the worseThan ordering (shallower depth first, then smaller
// lb, then larger max sigma).
type bestFirstQueue struct {
	h bestFirstHeap
}

func newBestFirstQueue() NodeQueue {
	q := &bestFirstQueue{}
	heap.Init(&q.h)
	return q
}

func (q *bestFirstQueue) Size() int   { return q.h.Len() }
func (q *bestFirstQueue) Empty() bool { return q.h.Len() == 0 }

func (q *bestFirstQueue) Top() *Node {
	return q.h[0]
}

func (q *bestFirstQueue) Pop() {
	heap.Pop(&q.h)
}

func (q *bestFirstQueue) Push(children []*Node) {
	for _, c := range children {
		heap.Push(&q.h, c)
	}
}

func (q *bestFirstQueue) Clear(release func(*Node)) {
	for _, n := range q.h {
		release(n)
	}
	q.h = nil
}

package cia

import "testing"

func mkNode(seq uint64, depth int, lb float64, sigma []int) *Node {
	return &Node{seqNum: seq, depth: depth, lb: lb, sigma: sigma}
}

func TestNewQueue_KnownStrategies(t *testing.T) {
	for _, name := range []string{"dfs", "bfs", "btd", "dbt"} {
		t.Run(name, func(t *testing.T) {
			q, err := NewQueue(name)
			if err != nil {
				t.Fatalf("NewQueue(%q): %v", name, err)
			}
			if !q.Empty() {
				t.Errorf("fresh %q queue should be empty", name)
			}
		})
	}
}

func TestNewQueue_UnknownStrategy(t *testing.T) {
	_, err := NewQueue("not-a-strategy")
	if err == nil {
		t.Fatal("NewQueue(unknown): want error, got nil")
	}
}

func TestNewQueue_EmptyNameUsesDefault(t *testing.T) {
	q, err := NewQueue("")
	if err != nil {
		t.Fatalf("NewQueue(\"\"): %v", err)
	}
	if q == nil {
		t.Fatal("NewQueue(\"\") returned nil queue")
	}
}

func TestDFSQueue_LIFOWithinBatchOrderedByWorseThan(t *testing.T) {
	q := newDFSQueue()
	a := mkNode(1, 1, 0.5, []int{0})
	b := mkNode(2, 1, 0.1, []int{0}) // smaller lb, same depth: better (dispensed first)
	q.Push([]*Node{a, b})

	got := q.Top()
	if got.SeqNum() != 2 {
		t.Errorf("Top().SeqNum() = %d, want 2 (smallest lb at same depth)", got.SeqNum())
	}
}

func TestBestFirstQueue_DispensesSmallestLbFirst(t *testing.T) {
	q := newBestFirstQueue()
	a := mkNode(1, 0, 0.9, []int{0})
	b := mkNode(2, 0, 0.2, []int{0})
	c := mkNode(3, 0, 0.5, []int{0})
	q.Push([]*Node{a, b, c})

	var order []uint64
	for !q.Empty() {
		order = append(order, q.Top().SeqNum())
		q.Pop()
	}
	want := []uint64{2, 3, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("dispense order = %v, want %v", order, want)
		}
	}
}

func TestBestThenDiveQueue_DivesIntoPreferredChild(t *testing.T) {
	q := newBestThenDiveQueue()
	a := mkNode(1, 0, 0.9, []int{0})
	b := mkNode(2, 0, 0.2, []int{0}) // smallest lb: the dive target
	c := mkNode(3, 0, 0.5, []int{0})
	q.Push([]*Node{a, b, c})

	if got := q.Top(); got.SeqNum() != 2 {
		t.Fatalf("Top().SeqNum() = %d, want 2 (dive target)", got.SeqNum())
	}
	q.Pop()
	// The siblings remain in the heap, best-first ordered.
	if got := q.Top(); got.SeqNum() != 3 {
		t.Fatalf("Top().SeqNum() after dive = %d, want 3", got.SeqNum())
	}
}

func TestDynamicBacktrackQueue_StartsPureDFS(t *testing.T) {
	q := newDynamicBacktrackQueue().(*dynamicBacktrackQueue)
	q.UpdateBounds(Inf, 0) // no incumbent yet: beta = 1, pure DFS
	a := mkNode(1, 0, 0.1, []int{0})
	b := mkNode(2, 0, 0.2, []int{0})
	q.Push([]*Node{a, b})
	if q.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", q.Size())
	}
	// With beta=1 and ub=Inf, cutoff is Inf, so both nodes stay on the
	// stack (pure depth-first): last pushed comes out first.
	if got := q.Top(); got.SeqNum() != 2 {
		t.Errorf("Top().SeqNum() = %d, want 2 (stack LIFO)", got.SeqNum())
	}
}

func TestDynamicBacktrackQueue_BetaIsMonotonicNonIncreasing(t *testing.T) {
	q := newDynamicBacktrackQueue().(*dynamicBacktrackQueue)
	q.UpdateBounds(1.0, 5)
	first := q.cutoff()
	q.UpdateBounds(1.0, 0) // fewer solutions later should not push beta back up
	second := q.cutoff()
	if second > first+1e-9 {
		t.Errorf("cutoff grew from %v to %v after beta should have stayed clamped", first, second)
	}
}

func TestQueue_ClearReleasesEveryNode(t *testing.T) {
	var released []uint64
	release := func(n *Node) { released = append(released, n.SeqNum()) }

	for _, name := range []string{"dfs", "bfs", "btd", "dbt"} {
		t.Run(name, func(t *testing.T) {
			released = nil
			q, err := NewQueue(name)
			if err != nil {
				t.Fatalf("NewQueue(%q): %v", name, err)
			}
			q.Push([]*Node{mkNode(1, 0, 0.1, []int{0}), mkNode(2, 0, 0.2, []int{0})})
			q.Clear(release)
			if !q.Empty() {
				t.Errorf("queue not empty after Clear")
			}
			if len(released) != 2 {
				t.Errorf("Clear released %d nodes, want 2", len(released))
			}
		})
	}
}

package cia

// reconstruct implements spec.md section 4.6: walk the incumbent's parent
// chain and paint the N_c x N_t binary matrix. Each node "owns" the
// interval range [parent.depth, node.depth) — or [0, node.depth) when it
// has no parent, i.e. a root child — and every interval in that range is
// assigned to the node's active control.
func reconstruct(incumbent *Node, nc, nt int) [][]bool {
	bBin := make([][]bool, nc)
	for i := range bBin {
		bBin[i] = make([]bool, nt)
	}
	for n := incumbent; n != nil; n = n.Parent() {
		begin := 0
		if n.Parent() != nil {
			begin = n.Parent().Depth()
		}
		for t := begin; t < n.Depth(); t++ {
			bBin[n.BActive()][t] = true
		}
	}
	return bBin
}

// countSwitches counts, per control, the number of contiguous runs of 1s in
// bBin (SPEC_FULL.md supplemented feature 3).
func countSwitches(bBin [][]bool, dt []float64) []int {
	nc := len(bBin)
	nt := len(dt)
	out := make([]int, nc)
	for i := 0; i < nc; i++ {
		prev := false
		for t := 0; t < nt; t++ {
			if bBin[i][t] && !prev {
				out[i]++
			}
			prev = bBin[i][t]
		}
	}
	return out
}

// activationDurations returns, per control, the dt-weighted length of each
// contiguous run of 1s in bBin, in the order the runs occur (SPEC_FULL.md
// supplemented feature 3).
func activationDurations(bBin [][]bool, dt []float64) [][]float64 {
	nc := len(bBin)
	nt := len(dt)
	out := make([][]float64, nc)
	for i := 0; i < nc; i++ {
		running := false
		cur := 0.0
		for t := 0; t < nt; t++ {
			if bBin[i][t] {
				cur += dt[t]
				running = true
			} else if running {
				out[i] = append(out[i], cur)
				cur = 0
				running = false
			}
		}
		if running {
			out[i] = append(out[i], cur)
		}
	}
	return out
}

package cia

import "fmt"

// seedUpperBound computes the final eta vector and the infinity-norm bound
// a completed binary trajectory bBin would produce, replaying the same
// per-interval deviation contribution the kernel's extend step
// accumulates; lb is the largest |eta[i]| reached after any interval. Used to seed UB below the trivial sum(dt) bound before a
// warm-started search begins (SPEC_FULL.md supplemented feature 1),
// mirroring the original solver's b_bin_prev field.
func (k *kernel) seedUpperBound(bBin [][]bool) (eta []float64, lb float64, err error) {
	p := k.p
	nc, nt := p.NumControls(), p.NumIntervals()

	if len(bBin) != nc {
		return nil, 0, fmt.Errorf("%w: %d rows, want %d", ErrInvalidWarmStart, len(bBin), nc)
	}
	for i := 0; i < nc; i++ {
		if len(bBin[i]) != nt {
			return nil, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidWarmStart, i, len(bBin[i]), nt)
		}
	}

	eta = make([]float64, nc)
	for t := 0; t < nt; t++ {
		active := -1
		for i := 0; i < nc; i++ {
			if !bBin[i][t] {
				continue
			}
			if active != -1 {
				return nil, 0, fmt.Errorf("%w: column %d has more than one active control", ErrInvalidWarmStart, t)
			}
			active = i
		}
		if active == -1 {
			return nil, 0, fmt.Errorf("%w: column %d has no active control", ErrInvalidWarmStart, t)
		}

		d := p.Dt[t]
		for i := 0; i < nc; i++ {
			ind := 0.0
			if i == active {
				ind = 1
			}
			eta[i] += d * (p.BRel[i][t] - ind)
		}

		for _, v := range eta {
			if v < 0 {
				v = -v
			}
			if v > lb {
				lb = v
			}
		}
	}
	return eta, lb, nil
}

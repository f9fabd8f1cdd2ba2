// Package cia implements the branch-and-bound search engine for the
// Combinatorial Integral Approximation problem: rounding a relaxed,
// fractional multi-control trajectory into a binary one (exactly one
// control active per time interval) while minimizing the worst-case
// integrated deviation between the two, subject to switch-count, dwell-time,
// forbidden-interval, and forbidden-transition constraints.
//
// The package is organized leaf-first, the way the search tree itself is
// built: Problem and Node are immutable data; the NodeQueue strategies and
// the bounding kernel are pure functions over that data; Engine is the
// single stateful driver that ties them together.
package cia

import "fmt"

// Inf is used for max_up_time / total_max_up_time fields that have no
// finite bound.
const Inf = float64(1<<63 - 1)

// Problem is the read-only instance handed to an Engine once at
// construction. None of its fields are mutated by the search.
type Problem struct {
	// Dt holds the width of each of NumIntervals time intervals.
	Dt []float64

	// BRel is the relaxed trajectory, shape NumControls x NumIntervals;
	// BRel[i][t] is control i's fractional activity in interval t. Columns
	// (fixed t, varying i) must sum to 1.
	BRel [][]float64

	// NMaxSwitches[i] upper-bounds the number of activations of control i.
	NMaxSwitches []int

	// MinUpTime[i]/MinDownTime[i] are minimum contiguous dwell durations,
	// once control i turns on/off respectively.
	MinUpTime   []float64
	MinDownTime []float64

	// MaxUpTime[i] bounds a single activation's contiguous duration;
	// TotalMaxUpTime[i] bounds the sum of all of control i's on-time.
	// Use Inf for "no bound".
	MaxUpTime      []float64
	TotalMaxUpTime []float64

	// BValid[i][t] is false when control i is forbidden in interval t.
	BValid [][]bool

	// BAdjacencies[j][i] is false when switching directly from control i to
	// control j is forbidden.
	BAdjacencies [][]bool

	// BActivePre is the control active just before interval 0, or
	// NumControls to mean "no predecessor".
	BActivePre int
}

// NumControls returns N_c.
func (p *Problem) NumControls() int { return len(p.BRel) }

// NumIntervals returns N_t.
func (p *Problem) NumIntervals() int { return len(p.Dt) }

// NewProblem validates and constructs a Problem. Validation here covers the
// structural invariants the bounding kernel relies on (dimension agreement,
// fractions in range, columns summing to 1, positive time steps, a
// b_active_pre that is either a valid index or the N_c sentinel); the host
// binding layer referenced in spec.md section 1 is responsible for anything
// upstream of these arrays (e.g. deriving Dt from a time grid).
func NewProblem(
	dt []float64,
	bRel [][]float64,
	nMaxSwitches []int,
	minUpTime, minDownTime, maxUpTime, totalMaxUpTime []float64,
	bValid [][]bool,
	bAdjacencies [][]bool,
	bActivePre int,
) (*Problem, error) {
	nt := len(dt)
	nc := len(bRel)

	if nc == 0 {
		return nil, fmt.Errorf("%w: need at least one control", ErrDimensionMismatch)
	}
	for _, d := range dt {
		if d <= 0 {
			return nil, fmt.Errorf("%w: dt entries must be positive, got %v", ErrNonPositiveTimeStep, d)
		}
	}

	checkLen := func(name string, n int) error {
		if n != nc {
			return fmt.Errorf("%w: %s has length %d, want %d (N_c)", ErrDimensionMismatch, name, n, nc)
		}
		return nil
	}
	for _, e := range []struct {
		name string
		n    int
	}{
		{"n_max_switches", len(nMaxSwitches)},
		{"min_up_time", len(minUpTime)},
		{"min_down_time", len(minDownTime)},
		{"max_up_time", len(maxUpTime)},
		{"total_max_up_time", len(totalMaxUpTime)},
		{"b_valid", len(bValid)},
		{"b_adjacencies", len(bAdjacencies)},
	} {
		if err := checkLen(e.name, e.n); err != nil {
			return nil, err
		}
	}

	for i := 0; i < nc; i++ {
		if len(bRel[i]) != nt {
			return nil, fmt.Errorf("%w: b_rel[%d] has length %d, want %d (N_t)", ErrDimensionMismatch, i, len(bRel[i]), nt)
		}
		if len(bValid[i]) != nt {
			return nil, fmt.Errorf("%w: b_valid[%d] has length %d, want %d (N_t)", ErrDimensionMismatch, i, len(bValid[i]), nt)
		}
		if len(bAdjacencies[i]) != nc {
			return nil, fmt.Errorf("%w: b_adjacencies[%d] has length %d, want %d (N_c)", ErrDimensionMismatch, i, len(bAdjacencies[i]), nc)
		}
		for t := 0; t < nt; t++ {
			if bRel[i][t] < 0 || bRel[i][t] > 1 {
				return nil, fmt.Errorf("%w: b_rel[%d][%d] = %v", ErrInvalidFraction, i, t, bRel[i][t])
			}
		}
	}

	for t := 0; t < nt; t++ {
		sum := 0.0
		for i := 0; i < nc; i++ {
			sum += bRel[i][t]
		}
		if sum < 1-1e-9 || sum > 1+1e-9 {
			return nil, fmt.Errorf("%w: column %d sums to %v", ErrColumnNotNormalized, t, sum)
		}
	}

	if bActivePre < 0 || bActivePre > nc {
		return nil, fmt.Errorf("%w: b_active_pre = %d, N_c = %d", ErrInvalidActivePre, bActivePre, nc)
	}

	return &Problem{
		Dt:             append([]float64(nil), dt...),
		BRel:           copyMatrixF(bRel),
		NMaxSwitches:   append([]int(nil), nMaxSwitches...),
		MinUpTime:      append([]float64(nil), minUpTime...),
		MinDownTime:    append([]float64(nil), minDownTime...),
		MaxUpTime:      append([]float64(nil), maxUpTime...),
		TotalMaxUpTime: append([]float64(nil), totalMaxUpTime...),
		BValid:         copyMatrixB(bValid),
		BAdjacencies:   copyMatrixB(bAdjacencies),
		BActivePre:     bActivePre,
	}, nil
}

func copyMatrixF(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func copyMatrixB(m [][]bool) [][]bool {
	out := make([][]bool, len(m))
	for i, row := range m {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

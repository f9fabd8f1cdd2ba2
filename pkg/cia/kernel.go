package cia

// kernel holds the problem-derived lookup tables and implements the two
// pure helpers of spec.md section 4.3: forbidden? and extend. It is the
// algorithmic heart of the search; everything else (queues, the driver)
// only ever touches nodes through it.
//
// It is grounded on the original solver's compute_eta_of_current_node /
// increment_sigma_and_eta pair (original_source/src/combina_bnb_solver and
// pycombina/src/CombinaBnBSolver.cpp), generalized from "switch caps only"
// to the fuller constraint set this package exposes: minimum dwell times,
// forbidden intervals, forbidden transitions and on-time budgets.
type kernel struct {
	p *Problem

	// sumEta0[i][t] = sum_{τ>=t} dt[τ]*bRel[i][τ] — the deviation control i
	// would still accrue if it is never chosen again from t onward.
	sumEta0 [][]float64

	// sumEta1[i][t] = sum_{τ>=t} dt[τ]*(bRel[i][τ]-1) — the deviation
	// control i would accrue if it ran every remaining interval from t.
	sumEta1 [][]float64
}

func newKernel(p *Problem) *kernel {
	nc, nt := p.NumControls(), p.NumIntervals()
	k := &kernel{
		p:       p,
		sumEta0: make([][]float64, nc),
		sumEta1: make([][]float64, nc),
	}
	for i := 0; i < nc; i++ {
		k.sumEta0[i] = make([]float64, nt)
		k.sumEta1[i] = make([]float64, nt)
		k.sumEta0[i][nt-1] = p.Dt[nt-1] * p.BRel[i][nt-1]
		k.sumEta1[i][nt-1] = p.Dt[nt-1] * (p.BRel[i][nt-1] - 1)
		for t := nt - 2; t >= 0; t-- {
			k.sumEta0[i][t] = k.sumEta0[i][t+1] + p.Dt[t]*p.BRel[i][t]
			k.sumEta1[i][t] = k.sumEta1[i][t+1] + p.Dt[t]*(p.BRel[i][t]-1)
		}
	}
	return k
}

// initialUpperBound is the trivial bound eta_max = sum(dt): the worst any
// feasible trajectory can do is deviate by a whole interval's width summed
// over the horizon.
func (k *kernel) initialUpperBound() float64 {
	sum := 0.0
	for _, d := range k.p.Dt {
		sum += d
	}
	return sum
}

func (k *kernel) sumEta0At(i, t int) float64 {
	if t >= k.p.NumIntervals() {
		return 0
	}
	return k.sumEta0[i][t]
}

func (k *kernel) sumEta1At(i, t int) float64 {
	if t >= k.p.NumIntervals() {
		return 0
	}
	return k.sumEta1[i][t]
}

func (k *kernel) dtAt(t int) float64 {
	if t >= len(k.p.Dt) {
		return 0
	}
	return k.p.Dt[t]
}

// branchState is the mutable context threaded into forbidden/extend: the
// counters a parent (real or the synthetic root) carries forward, plus the
// interval its open range currently ends at.
type branchState struct {
	cParent          int
	sigma            []int
	minDownRemaining []float64
	upTimeCurrent    []float64
	totalUpTime      []float64
	depth            int
}

// rootState builds the branchState for the synthetic predecessor of the
// search: depth 0, every counter at zero, b_active_pre standing in for
// c_parent (spec.md section 9's open question on b_active_pre = N_c is
// honored automatically since the forbidden/extend checks below already
// skip switch bookkeeping whenever c_parent >= N_c).
func rootState(p *Problem) branchState {
	nc := p.NumControls()
	return branchState{
		cParent:          p.BActivePre,
		sigma:            make([]int, nc),
		minDownRemaining: make([]float64, nc),
		upTimeCurrent:    make([]float64, nc),
		totalUpTime:      make([]float64, nc),
		depth:            0,
	}
}

func stateFromNode(n *Node) branchState {
	return branchState{
		cParent:          n.bActive,
		sigma:            n.sigma,
		minDownRemaining: n.minDownTimeRemaining,
		upTimeCurrent:    n.upTimeCurrent,
		totalUpTime:      n.totalUpTime,
		depth:            n.depth,
	}
}

// forbidden implements spec.md section 4.3(a): the five feasibility checks
// a tentative branch into cChild must pass before extend is even attempted.
func (k *kernel) forbidden(s branchState, cChild int) bool {
	p := k.p
	nc := p.NumControls()

	if s.sigma[cChild] >= p.NMaxSwitches[cChild] {
		return true
	}
	if s.cParent < nc && s.sigma[s.cParent] >= p.NMaxSwitches[s.cParent] {
		return true
	}
	if s.minDownRemaining[cChild] > 0 {
		return true
	}
	if s.cParent < nc && !p.BAdjacencies[cChild][s.cParent] {
		return true
	}

	depthTest := s.depth
	minUpFulfilled := 0.0
	upTimeTest := 0.0
	if cChild == s.cParent {
		minUpFulfilled = p.MinUpTime[cChild]
		upTimeTest = s.upTimeCurrent[cChild]
	}
	totalUpTimeTest := s.totalUpTime[cChild]

	for {
		if !p.BValid[cChild][depthTest] {
			return true
		}
		d := p.Dt[depthTest]
		minUpFulfilled += d
		upTimeTest += d
		totalUpTimeTest += d
		depthTest++
		if minUpFulfilled >= p.MinUpTime[cChild] || depthTest == p.NumIntervals() {
			break
		}
	}

	if upTimeTest > p.MaxUpTime[cChild] {
		return true
	}
	if totalUpTimeTest > p.TotalMaxUpTime[cChild] {
		return true
	}
	return false
}

// extend implements spec.md section 4.3(b). The caller must already have
// established !forbidden(s, cChild). parentEta/parentLb come from the
// parent node (or the zero vector/zero bound for the synthetic root).
// It returns the new node and true on success; if the resulting bound
// meets or exceeds ub the branch is fathomed and extend returns (nil,
// false) without allocating a node.
func (k *kernel) extend(parent *Node, s branchState, cChild int, parentEta []float64, parentLb float64, ub float64, acc *nodeAccounting, seqNum uint64) (*Node, bool) {
	p := k.p
	nc := p.NumControls()
	nt := p.NumIntervals()

	eta := append([]float64(nil), parentEta...)
	sigma := append([]int(nil), s.sigma...)
	minDownRemaining := append([]float64(nil), s.minDownRemaining...)
	upTimeCurrent := append([]float64(nil), s.upTimeCurrent...)
	totalUpTime := append([]float64(nil), s.totalUpTime...)

	depth := s.depth
	minUpFulfilled := 0.0
	if cChild == s.cParent {
		minUpFulfilled = p.MinUpTime[cChild]
	} else {
		upTimeCurrent[cChild] = 0
	}

	for {
		d := p.Dt[depth]
		for i := 0; i < nc; i++ {
			if sigma[i] < p.NMaxSwitches[i] {
				ind := 0.0
				if i == cChild {
					ind = 1
				}
				eta[i] += d * (p.BRel[i][depth] - ind)
			}
			minDownRemaining[i] -= d
			if minDownRemaining[i] < 0 {
				minDownRemaining[i] = 0
			}
		}
		upTimeCurrent[cChild] += d
		totalUpTime[cChild] += d
		minUpFulfilled += d
		depth++
		if minUpFulfilled >= p.MinUpTime[cChild] || depth == nt {
			break
		}
	}

	if cChild != s.cParent && s.cParent < nc {
		sigma[s.cParent]++
		sigma[cChild]++
		if sigma[s.cParent] > p.NMaxSwitches[s.cParent] || sigma[cChild] > p.NMaxSwitches[cChild] {
			panicInvariant("kernel.extend", "sigma exceeded n_max_switches after admission (parent=%d child=%d)", s.cParent, cChild)
		}

		minDownRemaining[s.cParent] = p.MinDownTime[s.cParent] - k.dtAt(depth)
		if minDownRemaining[s.cParent] < 0 {
			minDownRemaining[s.cParent] = 0
		}

		if sigma[s.cParent] == p.NMaxSwitches[s.cParent] {
			eta[s.cParent] += k.sumEta0At(s.cParent, depth)
		}
		if sigma[cChild] == p.NMaxSwitches[cChild] {
			eta[cChild] += k.sumEta1At(cChild, depth)
			for i := 0; i < nc; i++ {
				if i == cChild {
					continue
				}
				if sigma[i] < p.NMaxSwitches[i] {
					eta[i] += k.sumEta0At(i, depth)
				}
			}
			depth = nt
		}
	}

	lb := parentLb
	for _, v := range eta {
		if v < 0 {
			v = -v
		}
		if v > lb {
			lb = v
		}
	}

	if lb >= ub {
		return nil, false
	}

	child := acc.newNode(parent, cChild, sigma, minDownRemaining, upTimeCurrent, totalUpTime, depth, eta, lb, seqNum)
	return child, true
}

// branchOutcome classifies what happened when the driver tried to extend
// a parent into a single candidate control, for monitor notifications
// (spec.md section 4.4 step 5).
type branchOutcome int

const (
	outcomeForbidden branchOutcome = iota
	outcomeFathomed
	outcomeCreated
)

// branch runs forbidden then extend for one candidate control and reports
// which of the three outcomes applies.
func (k *kernel) branch(parent *Node, s branchState, cChild int, parentEta []float64, parentLb, ub float64, acc *nodeAccounting, seqNum uint64) (*Node, branchOutcome) {
	if k.forbidden(s, cChild) {
		return nil, outcomeForbidden
	}
	child, ok := k.extend(parent, s, cChild, parentEta, parentLb, ub, acc, seqNum)
	if !ok {
		return nil, outcomeFathomed
	}
	return child, outcomeCreated
}

package cia

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type engineState int32

const (
	engineIdle engineState = iota
	engineRunning
	engineTerminated
)

// Engine is the single stateful driver tying a Problem, the bounding
// kernel, a pluggable NodeQueue and an optional Monitor together. One
// Engine solves one Problem; construct a fresh Engine per solve (the
// internal/batch worker pool gives every concurrent solve its own).
//
// Grounded on the teacher's single-goal-per-call shape (pkg/minikanren
// search functions take a store and return a result with no shared
// mutable state between calls) generalized to a long-lived driver object
// because spec.md section 6 exposes Stop/GetStatus/GetNumSol as methods
// queried after Run returns, not just a return value.
type Engine struct {
	problem  *Problem
	warmBBin [][]bool
	kernel   *kernel
	cfg      Config
	monitor  Monitor
	log      *logrus.Logger

	state engineState
	stop  int32 // atomic bool, set by Stop from another goroutine

	acc     nodeAccounting
	nextSeq uint64

	ub        float64
	incumbent *Node
	status    Status
	numSol    int
	nIter     int
	runtime   time.Duration
}

// NewEngine constructs an Engine for p. warmBBin is an optional previously
// computed binary assignment (SPEC_FULL.md supplemented feature 1); pass
// nil if there is none. monitor may be nil (no observation). log may be
// nil (defaults to logrus's standard logger).
func NewEngine(p *Problem, warmBBin [][]bool, monitor Monitor, log *logrus.Logger, opts ...Option) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if monitor == nil {
		monitor = NewCompositeMonitor()
	}
	return &Engine{
		problem:  p,
		warmBBin: warmBBin,
		kernel:   newKernel(p),
		cfg:      resolved(opts),
		monitor:  monitor,
		log:      log,
		status:   StatusRunning,
	}
}

// Stop requests early termination. Safe to call from any goroutine, any
// number of times, before or during Run; a call before Run has no effect
// beyond ensuring the first loop iteration exits immediately.
func (e *Engine) Stop() {
	atomic.StoreInt32(&e.stop, 1)
}

func (e *Engine) stopped() bool {
	return atomic.LoadInt32(&e.stop) != 0
}

// Run executes the branch-and-bound search to completion or termination.
// When useWarmStart is true and the Engine was constructed with a warm
// start b_bin, UB is seeded just above that trajectory's deviation before
// the search begins, which can only shrink the tree explored, never change
// the optimal answer: every node on the path of a solution at least as good
// as the warm start still has lb below UB and is explored.
func (e *Engine) Run(useWarmStart bool) (err error) {
	if !atomic.CompareAndSwapInt32((*int32)(&e.state), int32(engineIdle), int32(engineRunning)) {
		return ErrEngineNotIdle
	}
	defer atomic.StoreInt32((*int32)(&e.state), int32(engineTerminated))

	start := time.Now()
	defer func() { e.runtime = time.Since(start) }()

	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(*InvariantViolation); ok {
				e.log.WithField("where", iv.Where).Error(iv.Error())
				err = iv
				e.status = StatusUserInterrupt
				return
			}
			panic(r)
		}
	}()

	nc, nt := e.problem.NumControls(), e.problem.NumIntervals()

	queue, qerr := NewQueue(e.cfg.strategy)
	if qerr != nil {
		return qerr
	}

	mon := e.monitor
	var recorder *TreeRecorder
	if e.cfg.vbcFile != "" {
		recorder, err = NewTreeRecorder(e.cfg.vbcFile, e.cfg.vbcTiming, e.cfg.vbcTimeDilation, e.log)
		if err != nil {
			return err
		}
		mon = NewCompositeMonitor(e.monitor, recorder)
	}

	e.ub = e.kernel.initialUpperBound()
	if useWarmStart && e.warmBBin != nil {
		if _, lb, werr := e.kernel.seedUpperBound(e.warmBBin); werr == nil && lb < e.ub {
			// Slightly above lb, so a node reaching exactly the warm
			// start's deviation is not fathomed and can become incumbent.
			e.ub = lb + 1e-9*(1+lb)
		} else if werr != nil {
			e.log.WithError(werr).Warn("cia: ignoring unusable warm start")
		}
	}

	mon.OnStartSearch(e.ub)

	// Seed the queue from the synthetic root.
	rs := rootState(e.problem)
	rootEta := make([]float64, nc)
	var roots []*Node
	for c := 0; c < nc; c++ {
		child, outcome := e.kernel.branch(nil, rs, c, rootEta, 0, e.ub, &e.acc, e.nextSeqNum())
		if outcome == outcomeCreated {
			roots = append(roots, child)
			mon.OnCreate(child)
		}
	}
	if len(roots) > 0 {
		queue.Push(roots)
	}

	if bv, ok := queue.(BoundsAware); ok {
		bv.UpdateBounds(e.ub, e.numSol)
	}

	for {
		if e.stopped() {
			e.status = StatusUserInterrupt
			break
		}
		if e.cfg.maxIter > 0 && e.nIter >= e.cfg.maxIter {
			e.status = StatusIterLimit
			break
		}
		if e.cfg.maxCPUTime > 0 && time.Since(start) >= e.cfg.maxCPUTime {
			e.status = StatusTimeLimit
			break
		}
		if queue.Empty() {
			e.status = StatusOptimal
			break
		}

		e.nIter++
		n := queue.Top()
		queue.Pop()
		mon.OnSelect(n)

		if n.Lb() >= e.ub {
			mon.OnChange(n, StateFathomed)
			e.acc.release(n)
			continue
		}

		if n.Depth() == nt {
			if e.incumbent != nil {
				e.acc.release(e.incumbent)
			}
			e.incumbent = n
			e.ub = n.Lb()
			e.numSol++
			mon.OnChange(n, StateInteger)
			if e.cfg.verbosity >= 1 {
				e.log.WithFields(logrus.Fields{"iter": e.nIter, "eta": e.ub, "n_sol": e.numSol}).Info("cia: improved incumbent")
			}
			if bv, ok := queue.(BoundsAware); ok {
				bv.UpdateBounds(e.ub, e.numSol)
			}
			continue
		}

		var children []*Node
		anyForbidden, anyFathomed := false, false
		for c := 0; c < nc; c++ {
			child, outcome := e.kernel.branch(n, stateFromNode(n), c, n.Eta(), n.Lb(), e.ub, &e.acc, e.nextSeqNum())
			switch outcome {
			case outcomeForbidden:
				anyForbidden = true
			case outcomeFathomed:
				anyFathomed = true
			case outcomeCreated:
				children = append(children, child)
				mon.OnCreate(child)
			}
		}
		if len(children) > 0 {
			queue.Push(children)
		}
		switch {
		case len(children) > 0:
			mon.OnChange(n, StateSolved)
		case anyFathomed:
			mon.OnChange(n, StateFathomed)
		case anyForbidden:
			mon.OnChange(n, StateInfeasible)
		}
		if e.cfg.verbosity >= 2 {
			e.log.WithFields(logrus.Fields{"iter": e.nIter, "node": n.SeqNum(), "children": len(children)}).Debug("cia: branched")
		}
		e.acc.release(n)
	}

	queue.Clear(e.acc.release)
	mon.OnStopSearch(e.status)

	if e.cfg.verbosity >= 1 {
		e.log.WithFields(logrus.Fields{"status": e.status.String(), "eta": e.ub, "n_sol": e.numSol, "iters": e.nIter}).Info("cia: search finished")
	}

	return nil
}

func (e *Engine) nextSeqNum() uint64 {
	e.nextSeq++
	return e.nextSeq
}

// GetEta returns the final best infinity-norm deviation. 0 if no solution
// was ever accepted.
func (e *Engine) GetEta() float64 {
	if e.incumbent == nil {
		return 0
	}
	return e.incumbent.Lb()
}

// GetBBin reconstructs and returns the N_c x N_t binary assignment matrix
// (spec.md section 4.6). A zero matrix if no solution was ever accepted.
func (e *Engine) GetBBin() [][]bool {
	nc, nt := e.problem.NumControls(), e.problem.NumIntervals()
	if e.incumbent == nil {
		out := make([][]bool, nc)
		for i := range out {
			out[i] = make([]bool, nt)
		}
		return out
	}
	return reconstruct(e.incumbent, nc, nt)
}

// GetStatus returns the engine's terminal status, or StatusRunning if Run
// has not yet returned.
func (e *Engine) GetStatus() Status { return e.status }

// GetNumSol returns the number of incumbents accepted during the search.
func (e *Engine) GetNumSol() int { return e.numSol }

// NumControls returns N_c.
func (e *Engine) NumControls() int { return e.problem.NumControls() }

// NumIntervals returns N_t.
func (e *Engine) NumIntervals() int { return e.problem.NumIntervals() }

// Runtime returns the wall-clock duration of the most recently completed
// Run call (SPEC_FULL.md supplemented feature: exposed for diagnostics,
// not part of spec.md's original accessor list).
func (e *Engine) Runtime() time.Duration { return e.runtime }

// NumSwitches returns, per control, the number of activations in the
// incumbent's reconstructed trajectory (SPEC_FULL.md supplemented feature
// 3, mirroring CombinaBnBSolver.cpp's end-of-solve diagnostics). nil if no
// solution was ever accepted.
func (e *Engine) NumSwitches() []int {
	if e.incumbent == nil {
		return nil
	}
	return countSwitches(reconstruct(e.incumbent, e.problem.NumControls(), e.problem.NumIntervals()), e.problem.Dt)
}

// ActivationDurations returns, per control, the duration of each
// contiguous run of activity in the incumbent's reconstructed trajectory
// (SPEC_FULL.md supplemented feature 3). nil if no solution was ever
// accepted.
func (e *Engine) ActivationDurations() [][]float64 {
	if e.incumbent == nil {
		return nil
	}
	return activationDurations(reconstruct(e.incumbent, e.problem.NumControls(), e.problem.NumIntervals()), e.problem.Dt)
}

// Package instance provides the on-disk JSON representation of a CIA
// problem instance and its solution, the file format the cia-solve CLI
// reads and writes. It is deliberately separate from pkg/cia: that
// package's Problem is an in-memory validated value, not a serialization
// format, and spec.md section 1 leaves the host binding's file layout
// unspecified.
package instance

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adbuerger/pycombina/pkg/cia"
)

// Instance is the JSON shape of one problem file, field names mirroring
// spec.md section 2's notation directly so an instance file reads like the
// spec.
type Instance struct {
	Dt             []float64   `json:"dt"`
	BRel           [][]float64 `json:"b_rel"`
	NMaxSwitches   []int       `json:"n_max_switches"`
	MinUpTime      []float64   `json:"min_up_time"`
	MinDownTime    []float64   `json:"min_down_time"`
	MaxUpTime      []float64   `json:"max_up_time,omitempty"`
	TotalMaxUpTime []float64   `json:"total_max_up_time,omitempty"`
	BValid         [][]bool    `json:"b_valid,omitempty"`
	BAdjacencies   [][]bool    `json:"b_adjacencies,omitempty"`
	BActivePre     *int        `json:"b_active_pre,omitempty"`

	// WarmBBin is an optional previously computed binary assignment, spec.md
	// section 1's warm-start input (SPEC_FULL.md supplemented feature 1).
	WarmBBin [][]bool `json:"warm_b_bin,omitempty"`
}

// Solution is the JSON shape cia-solve writes after a solve.
type Solution struct {
	Status  string   `json:"status"`
	Eta     float64  `json:"eta"`
	NumSol  int      `json:"n_sol"`
	BBin    [][]bool `json:"b_bin"`
	Runtime string   `json:"runtime"`
	Source  string   `json:"source,omitempty"`
}

// Load reads and parses an Instance file.
func Load(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("instance: reading %q: %w", path, err)
	}
	var inst Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("instance: parsing %q: %w", path, err)
	}
	return &inst, nil
}

// Problem builds a validated cia.Problem from the instance, filling in the
// permissive defaults spec.md documents for the fields a minimal instance
// file may omit: no per-control on-time caps, every interval valid for
// every control, every transition allowed, and no predecessor control.
func (inst *Instance) Problem() (*cia.Problem, error) {
	nc := len(inst.BRel)
	nt := len(inst.Dt)

	maxUpTime := inst.MaxUpTime
	if maxUpTime == nil {
		maxUpTime = fillF(nc, cia.Inf)
	}
	totalMaxUpTime := inst.TotalMaxUpTime
	if totalMaxUpTime == nil {
		totalMaxUpTime = fillF(nc, cia.Inf)
	}
	bValid := inst.BValid
	if bValid == nil {
		bValid = fillAllB(nc, nt, true)
	}
	bAdjacencies := inst.BAdjacencies
	if bAdjacencies == nil {
		bAdjacencies = fillAllB(nc, nc, true)
	}
	bActivePre := nc
	if inst.BActivePre != nil {
		bActivePre = *inst.BActivePre
	}

	return cia.NewProblem(
		inst.Dt,
		inst.BRel,
		inst.NMaxSwitches,
		inst.MinUpTime,
		inst.MinDownTime,
		maxUpTime,
		totalMaxUpTime,
		bValid,
		bAdjacencies,
		bActivePre,
	)
}

func fillF(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func fillAllB(rows, cols int, v bool) [][]bool {
	out := make([][]bool, rows)
	for i := range out {
		out[i] = make([]bool, cols)
		for j := range out[i] {
			out[i][j] = v
		}
	}
	return out
}

// Save writes sol as indented JSON to path.
func (sol *Solution) Save(path string) error {
	data, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return fmt.Errorf("instance: encoding solution: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("instance: writing %q: %w", path, err)
	}
	return nil
}

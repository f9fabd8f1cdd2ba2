package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/adbuerger/pycombina/internal/instance"
	"github.com/adbuerger/pycombina/pkg/cia"
)

var (
	solveStrategy   string
	solveMaxIter    int
	solveMaxCPUTime time.Duration
	solveVBCFile    string
	solveWarmStart  bool
	solveOut        string
)

var solveCmd = &cobra.Command{
	Use:   "solve <instance.json>",
	Short: "Solve a single problem instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveStrategy, "strategy", "dfs", "search strategy: dfs, bfs, btd, dbt")
	solveCmd.Flags().IntVar(&solveMaxIter, "max-iter", 0, "iteration cap, 0 for unbounded")
	solveCmd.Flags().DurationVar(&solveMaxCPUTime, "max-cpu-time", 0, "wall-clock cap, 0 for unbounded")
	solveCmd.Flags().StringVar(&solveVBCFile, "vbc-file", "", "write a VBC-format search trace to this path (.zst/.gz compresses)")
	solveCmd.Flags().BoolVar(&solveWarmStart, "warm-start", false, "seed the upper bound from the instance's warm_b_bin, if present")
	solveCmd.Flags().StringVar(&solveOut, "out", "", "write the solution as JSON to this path instead of stdout")
	viper.BindPFlag("strategy", solveCmd.Flags().Lookup("strategy"))
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	path := args[0]
	inst, err := instance.Load(path)
	if err != nil {
		return err
	}
	p, err := inst.Problem()
	if err != nil {
		return fmt.Errorf("building problem from %q: %w", path, err)
	}

	strategy := viper.GetString("strategy")
	if strategy == "" {
		strategy = solveStrategy
	}

	opts := []cia.Option{
		cia.WithStrategy(strategy),
		cia.WithMaxIter(solveMaxIter),
		cia.WithMaxCPUTime(solveMaxCPUTime),
		cia.WithVerbosity(verbosity),
	}
	if solveVBCFile != "" {
		opts = append(opts, cia.WithVBCFile(solveVBCFile))
	}

	eng := cia.NewEngine(p, inst.WarmBBin, nil, log, opts...)
	if err := eng.Run(solveWarmStart); err != nil {
		return fmt.Errorf("solving %q: %w", path, err)
	}

	sol := &instance.Solution{
		Status:  eng.GetStatus().String(),
		Eta:     eng.GetEta(),
		NumSol:  eng.GetNumSol(),
		BBin:    eng.GetBBin(),
		Runtime: eng.Runtime().String(),
		Source:  path,
	}

	if solveOut != "" {
		if err := sol.Save(solveOut); err != nil {
			return err
		}
		fmt.Printf("wrote solution to %s (status=%s eta=%v n_sol=%d)\n", solveOut, sol.Status, sol.Eta, sol.NumSol)
		return nil
	}

	fmt.Printf("status=%s eta=%v n_sol=%d runtime=%s\n", sol.Status, sol.Eta, sol.NumSol, sol.Runtime)
	for i, row := range sol.BBin {
		fmt.Printf("b_bin[%d] = %v\n", i, boolRow(row))
	}
	return nil
}

func boolRow(row []bool) []int {
	out := make([]int, len(row))
	for i, v := range row {
		if v {
			out[i] = 1
		}
	}
	return out
}

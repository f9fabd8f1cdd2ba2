package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/adbuerger/pycombina/internal/batch"
	"github.com/adbuerger/pycombina/internal/instance"
	"github.com/adbuerger/pycombina/pkg/cia"
)

var (
	batchStrategy string
	batchWorkers  int
	batchOutDir   string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Solve every *.json instance in a directory concurrently",
	Long: `batch fans a directory of problem instances out across a bounded,
dynamically scaled worker pool (internal/batch.WorkerPool). Each instance
gets its own cia.Engine; engines are never shared across goroutines.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", "dfs", "search strategy: dfs, bfs, btd, dbt")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "max concurrent solves, 0 for NumCPU")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "write each solution as <name>.solution.json here; stdout if empty")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("listing %q: %w", dir, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no *.json instance files found in %q", dir)
	}

	pool := batch.NewWorkerPool(batchWorkers)
	ctx := context.Background()

	var mu sync.Mutex
	var failures []string
	var wg sync.WaitGroup

	for _, path := range matches {
		path := path
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := solveOne(path); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
			}
		}
		if err := pool.Submit(ctx, task); err != nil {
			wg.Done()
			mu.Lock()
			failures = append(failures, fmt.Sprintf("%s: submit: %v", path, err))
			mu.Unlock()
		}
	}

	wg.Wait()
	pool.Shutdown()

	log.Info(pool.Stats().String())
	if len(failures) > 0 {
		return fmt.Errorf("batch: %d of %d instances failed:\n%s", len(failures), len(matches), strings.Join(failures, "\n"))
	}
	return nil
}

func solveOne(path string) error {
	inst, err := instance.Load(path)
	if err != nil {
		return err
	}
	p, err := inst.Problem()
	if err != nil {
		return fmt.Errorf("building problem: %w", err)
	}

	eng := cia.NewEngine(p, inst.WarmBBin, nil, log, cia.WithStrategy(batchStrategy))
	if err := eng.Run(inst.WarmBBin != nil); err != nil {
		return fmt.Errorf("solving: %w", err)
	}

	sol := &instance.Solution{
		Status:  eng.GetStatus().String(),
		Eta:     eng.GetEta(),
		NumSol:  eng.GetNumSol(),
		BBin:    eng.GetBBin(),
		Runtime: eng.Runtime().String(),
		Source:  path,
	}

	if batchOutDir == "" {
		log.WithFields(map[string]interface{}{
			"instance": path,
			"status":   sol.Status,
			"eta":      sol.Eta,
		}).Info("solved")
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(batchOutDir, base+".solution.json")
	return sol.Save(out)
}

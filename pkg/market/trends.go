package market

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/strataview/marketgraph/pkg/algorithms"
	"github.com/strataview/marketgraph/pkg/graph"
	"github.com/strataview/marketgraph/pkg/parallel"
)

// GraphSnapshot pairs a labeled timestamp with the graph observed at that
// time.
type GraphSnapshot struct {
	Timestamp string
	Graph     *graph.Graph
}

// TrendConfig configures consolidation trend tracking.
type TrendConfig struct {
	// Louvain configures the detector run on every snapshot.
	Louvain algorithms.LouvainConfig
	// Workers bounds the number of snapshots analyzed concurrently.
	// 0 means GOMAXPROCS. Snapshots are independent, so fanning out does
	// not change any single snapshot's result.
	Workers int
}

// TrackConsolidation runs Louvain over an ordered sequence of graph
// snapshots and returns one market-structure snapshot per timestamp, in
// input order. A falling modularity alongside a rising consolidation index
// across the series signals market integration. The metric sequence is
// reported raw: no smoothing or outlier rejection.
func TrackConsolidation(ctx context.Context, snapshots []GraphSnapshot, cfg TrendConfig) ([]*Snapshot, error) {
	if len(snapshots) == 0 {
		return []*Snapshot{}, nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(snapshots) {
		workers = len(snapshots)
	}

	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return nil, fmt.Errorf("trend tracking: %w", err)
	}

	results := make([]*Snapshot, len(snapshots))
	errs := make([]error, len(snapshots))
	var wg sync.WaitGroup

	for i, snap := range snapshots {
		i, snap := i, snap
		wg.Add(1)
		task := func() {
			defer wg.Done()
			partition, err := algorithms.Louvain(ctx, snap.Graph, cfg.Louvain)
			if err != nil {
				errs[i] = fmt.Errorf("snapshot %q: %w", snap.Timestamp, err)
				return
			}
			report := AnalyzeStructure(snap.Graph, partition)
			report.Timestamp = snap.Timestamp
			results[i] = report
		}
		if err := pool.SubmitCtx(ctx, task); err != nil {
			wg.Done()
			pool.Close()
			return nil, fmt.Errorf("trend tracking: %w", err)
		}
	}

	wg.Wait()
	pool.Close()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

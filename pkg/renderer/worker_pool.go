package renderer

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   Tile
	TaskID int // index into the result slice
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// TileFunc renders one tile. Tiles never overlap, so implementations may
// write their pixels into shared buffers without locking.
type TileFunc func(ctx context.Context, tile Tile) (RenderStats, error)

// WorkerPool renders tiles in parallel on a fixed number of workers
type WorkerPool struct {
	numWorkers int
	logger     *slog.Logger
}

// NewWorkerPool creates a worker pool; numWorkers <= 0 uses one per CPU
func NewWorkerPool(numWorkers int, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{numWorkers: numWorkers, logger: logger}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Run renders every tile and returns once all have finished, acting as
// the barrier between dispatches. The first error or a cancelled context
// stops the remaining tasks. Results are indexed by task, so the merged
// stats do not depend on completion order.
func (wp *WorkerPool) Run(ctx context.Context, tiles []Tile, render TileFunc) ([]TileResult, error) {
	g, ctx := errgroup.WithContext(ctx)

	taskQueue := make(chan TileTask)
	results := make([]TileResult, len(tiles))

	g.Go(func() error {
		defer close(taskQueue)
		for i, tile := range tiles {
			select {
			case taskQueue <- TileTask{Tile: tile, TaskID: i}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	workers := min(wp.numWorkers, max(1, len(tiles)))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for task := range taskQueue {
				if err := ctx.Err(); err != nil {
					return err
				}
				stats, err := render(ctx, task.Tile)
				if err != nil {
					return err
				}
				results[task.TaskID] = TileResult{TaskID: task.TaskID, Stats: stats}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		wp.logger.Debug("tile dispatch stopped", "error", err)
		return nil, err
	}
	return results, nil
}

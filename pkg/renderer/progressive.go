package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
)

// ErrRendererClosed is returned when rendering on a closed renderer
var ErrRendererClosed = errors.New("renderer closed")

// ProgressiveRenderer drives frames over a persistent accumulation buffer.
// Every frame dispatches SamplesPerFrame samples per pixel, each with its
// own sample index; the buffer and index reset whenever the image size or
// configuration changes.
type ProgressiveRenderer struct {
	mu          sync.Mutex
	cfg         *config.Config
	scene       *Scene
	width       int
	height      int
	buffer      *AccumulationBuffer
	scratch     *AccumulationBuffer
	tiles       []Tile
	tileSize    int
	sampleIndex uint32
	frame       int
	workerPool  *WorkerPool
	logger      *slog.Logger
	metrics     *Metrics
	closed      bool
}

// NewProgressiveRenderer creates a renderer sized from cfg.Image. A nil
// logger uses slog.Default(); metrics may be nil.
func NewProgressiveRenderer(cfg *config.Config, scene *Scene, logger *slog.Logger, metrics *Metrics) *ProgressiveRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	pr := &ProgressiveRenderer{
		cfg:        cfg.Clone(),
		scene:      scene,
		workerPool: NewWorkerPool(cfg.Image.Workers, logger),
		logger:     logger,
		metrics:    metrics,
	}
	pr.resize(cfg.Image.Width, cfg.Image.Height)
	return pr
}

func (pr *ProgressiveRenderer) resize(width, height int) {
	pr.width, pr.height = width, height
	pr.buffer = NewAccumulationBuffer(width, height)
	pr.scratch = NewAccumulationBuffer(width, height)
	pr.tileSize = pr.cfg.Image.TileSize
	pr.tiles = NewTileGrid(width, height, pr.tileSize)
	pr.sampleIndex = 0
	pr.frame = 0
}

// Update applies a new image size and configuration. If either changed,
// the accumulation buffer and sample index are reset and Update reports
// true. The sky scene is replaced only when scene is non-nil.
func (pr *ProgressiveRenderer) Update(width, height int, cfg *config.Config, scene *Scene) bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	sizeChanged := width != pr.width || height != pr.height
	configChanged := !reflect.DeepEqual(cfg, pr.cfg)
	if scene != nil {
		pr.scene = scene
		configChanged = true
	}

	if !sizeChanged && !configChanged {
		return false
	}

	pr.cfg = cfg.Clone()
	if sizeChanged || pr.cfg.Image.TileSize != pr.tileSize {
		pr.resize(width, height)
	}
	pr.buffer.Reset()
	pr.sampleIndex = 0
	pr.frame = 0
	pr.metrics.ObserveReset()
	pr.logger.Info("accumulation reset", "width", width, "height", height, "features", pr.cfg.Features.String())
	return true
}

// SampleIndex returns the index the next dispatch will use
func (pr *ProgressiveRenderer) SampleIndex() uint32 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.sampleIndex
}

// Config returns a copy of the active configuration
func (pr *ProgressiveRenderer) Config() *config.Config {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.cfg.Clone()
}

// RenderFrame renders one frame and returns its statistics
func (pr *ProgressiveRenderer) RenderFrame(ctx context.Context) (FrameStats, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.closed {
		return FrameStats{}, ErrRendererClosed
	}

	start := time.Now()
	var samples RenderStats

	for i := 0; i < pr.cfg.Image.SamplesPerFrame; i++ {
		stats, err := pr.dispatch(ctx)
		if err != nil {
			return FrameStats{}, fmt.Errorf("sample %d: %w", pr.sampleIndex, err)
		}
		samples.Merge(stats)
		pr.sampleIndex++
	}

	pr.frame++
	mean, std := LuminanceStats(pr.buffer)
	fs := FrameStats{
		Frame:         pr.frame,
		SampleIndex:   pr.sampleIndex,
		Samples:       samples,
		Duration:      time.Since(start),
		MeanLuminance: mean,
		LuminanceStd:  std,
	}

	pr.metrics.ObserveFrame(fs)
	pr.logger.Info("frame",
		"frame", fs.Frame,
		"sample", fs.SampleIndex,
		"duration", fs.Duration,
		"discarded", samples.Discarded,
		"invalid", samples.Invalid)

	return fs, nil
}

// dispatch runs one sample over every pixel. The worker pool returns only
// after all tiles are done, so the next dispatch sees every blend. Tiles
// blend into a scratch copy that replaces the buffer only when every tile
// finished; a stopped dispatch leaves the buffer at the previous sample.
func (pr *ProgressiveRenderer) dispatch(ctx context.Context) (RenderStats, error) {
	rc := pr.cfg.RenderConfig(pr.sampleIndex)
	kernel := NewKernel(rc, pr.width, pr.height, pr.cfg.Gamma, pr.scene.Sky(rc.Features))

	copy(pr.scratch.Pix, pr.buffer.Pix)
	results, err := pr.workerPool.Run(ctx, pr.tiles, func(_ context.Context, tile Tile) (RenderStats, error) {
		var stats RenderStats
		kernel.Dispatch(tile.Bounds, pr.scratch, &stats)
		return stats, nil
	})
	if err != nil {
		return RenderStats{}, err
	}
	pr.buffer, pr.scratch = pr.scratch, pr.buffer

	var stats RenderStats
	for _, r := range results {
		stats.Merge(r.Stats)
	}
	return stats, nil
}

// Image returns the accumulated image
func (pr *ProgressiveRenderer) Image() *image.RGBA {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.buffer.Image()
}

// Close stops the renderer; later frames fail with ErrRendererClosed
func (pr *ProgressiveRenderer) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.closed = true
}

// FrameResult contains the result of a single frame
type FrameResult struct {
	Stats  FrameStats
	Image  *image.RGBA
	IsLast bool
}

// RenderProgressive renders frames in the background until maxFrames
// frames are done or ctx is cancelled. The error channel receives at most
// one error; both channels are closed when rendering stops.
func (pr *ProgressiveRenderer) RenderProgressive(ctx context.Context, maxFrames int) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		pr.logger.Info("starting progressive rendering", "frames", maxFrames, "workers", pr.workerPool.NumWorkers())

		for frame := 1; frame <= maxFrames; frame++ {
			// Check if client disconnected before starting this frame
			select {
			case <-ctx.Done():
				pr.logger.Info("rendering cancelled", "frame", frame)
				errChan <- ctx.Err()
				return
			default:
			}

			stats, err := pr.RenderFrame(ctx)
			if err != nil {
				errChan <- err
				return
			}

			result := FrameResult{
				Stats:  stats,
				Image:  pr.Image(),
				IsLast: frame == maxFrames,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frameChan, errChan
}

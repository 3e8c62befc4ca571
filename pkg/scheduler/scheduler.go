// Package scheduler distributes tile-sized rendering jobs across a fixed
// worker pool, each tile rendered with its own PCG RNG stream, and reports
// progress through a mutex-guarded, wall-clock-throttled callback.
// Progressive builds on top of Scheduler to repeat that tile sweep across
// several passes of growing sample counts, so a caller can refine an
// in-progress image rather than waiting for one full-budget render.
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Tile is a render job: a raster-space rectangle and the RNG seed derived
// for it.
type Tile struct {
	Bounds geometry.Bounds2[int]
	Seed   uint64
	Index  int
}

// RenderTileFunc renders one tile with a dedicated RNG stream; the caller
// supplies this to bridge to the integrator/camera without the scheduler
// needing to know about either.
type RenderTileFunc func(tile Tile, rng *rtmath.PCG)

// ProgressFunc receives progress in [0,1] along with raw pixel counts.
type ProgressFunc func(progress float64, pixelsDone, pixelsTotal int64)

// Config carries the render-parameter fields the scheduler itself
// consumes: worker count, tile size, and the global seed.
type Config struct {
	TileSize     int
	WorkerCount  int
	GlobalSeed   uint64
	ProgressEach time.Duration
}

// DefaultConfig matches the conventional scheduling defaults.
func DefaultConfig() Config {
	return Config{TileSize: 32, WorkerCount: 1, ProgressEach: 1000 * time.Millisecond}
}

// progressState tracks the shared pixel counter and throttles callback
// invocations to at most one per ProgressEach, under a single mutex.
type progressState struct {
	mu          sync.Mutex
	done        int64
	total       int64
	lastEmitted time.Time
	interval    time.Duration
	callback    ProgressFunc
}

func (p *progressState) add(n int64) {
	if p.callback == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += n
	now := time.Now()
	if now.Sub(p.lastEmitted) >= p.interval || p.done >= p.total {
		p.lastEmitted = now
		p.callback(float64(p.done)/float64(p.total), p.done, p.total)
	}
}

// Scheduler owns the tile queue and the worker goroutines that drain it.
type Scheduler struct {
	cfg Config
}

func NewScheduler(cfg Config) *Scheduler {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.TileSize < 1 {
		cfg.TileSize = 32
	}
	return &Scheduler{cfg: cfg}
}

// BuildTiles partitions renderBounds into TileSize-strided tiles,
// row-major, each carrying a seed derived from the global seed and its
// index via rtmath.DeriveSeed.
func (s *Scheduler) BuildTiles(renderBounds geometry.Bounds2[int]) []Tile {
	var tiles []Tile
	idx := 0
	for y := renderBounds.Min[1]; y < renderBounds.Max[1]; y += s.cfg.TileSize {
		for x := renderBounds.Min[0]; x < renderBounds.Max[0]; x += s.cfg.TileSize {
			maxX := x + s.cfg.TileSize
			if maxX > renderBounds.Max[0] {
				maxX = renderBounds.Max[0]
			}
			maxY := y + s.cfg.TileSize
			if maxY > renderBounds.Max[1] {
				maxY = renderBounds.Max[1]
			}
			tiles = append(tiles, Tile{
				Bounds: geometry.NewBounds2([2]int{x, y}, [2]int{maxX, maxY}),
				Seed:   rtmath.DeriveSeed(s.cfg.GlobalSeed, uint64(idx)),
				Index:  idx,
			})
			idx++
		}
	}
	return tiles
}

// Run distributes tiles across s.cfg.WorkerCount goroutines pulling from a
// shared channel queue, each tile rendered with a fresh PCG seeded from
// that tile's seed,
// and reports progress through onProgress. Run blocks until every tile is
// rendered.
func (s *Scheduler) Run(renderBounds geometry.Bounds2[int], render RenderTileFunc, onProgress ProgressFunc) {
	tiles := s.BuildTiles(renderBounds)

	totalPixels := int64(0)
	for _, t := range tiles {
		totalPixels += int64(t.Bounds.Width()) * int64(t.Bounds.Height())
	}

	progress := &progressState{total: totalPixels, interval: s.cfg.ProgressEach, callback: onProgress}

	queue := make(chan Tile, len(tiles))
	for _, t := range tiles {
		queue <- t
	}
	close(queue)

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < s.cfg.WorkerCount; w++ {
		g.Go(func() error {
			for tile := range queue {
				rng := rtmath.NewPCG(tile.Seed)
				render(tile, rng)
				progress.add(int64(tile.Bounds.Width()) * int64(tile.Bounds.Height()))
			}
			return nil
		})
	}
	_ = g.Wait()
}

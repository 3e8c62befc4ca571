package scheduler

import (
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
)

// PassSamples splits a maxSamples-per-pixel budget into up to maxPasses
// passes: an initial single-sample preview pass, then the remaining budget
// divided evenly across the rest, with the final pass absorbing any
// remainder so the cumulative total always lands on maxSamples exactly.
func PassSamples(maxSamples, maxPasses int) []int {
	if maxPasses <= 1 || maxSamples <= 1 {
		return []int{maxSamples}
	}
	passes := []int{1}
	remaining := maxSamples - 1
	remainingPasses := maxPasses - 1
	perPass := remaining / remainingPasses
	if perPass < 1 {
		perPass = 1
	}
	cumulative := 1
	for i := 1; i < maxPasses && cumulative < maxSamples; i++ {
		target := cumulative + perPass
		if i == maxPasses-1 || target > maxSamples {
			target = maxSamples
		}
		passes = append(passes, target-cumulative)
		cumulative = target
	}
	return passes
}

// PassResult reports the cumulative state after one progressive pass.
type PassResult struct {
	PassNumber int
	Samples    int // cumulative samples per pixel completed so far
	IsLast     bool
}

// PassCallback receives a PassResult after each completed pass, typically
// used to write out an intermediate preview image.
type PassCallback func(PassResult)

// Progressive reuses a single Scheduler's tile queue across successive
// refinement passes, growing the per-pixel sample count each pass instead
// of rendering the full budget in one shot, so a caller gets a quick,
// noisy preview immediately and a converged image once the passes exhaust
// the sample budget.
type Progressive struct {
	sched *Scheduler
}

func NewProgressive(sched *Scheduler) *Progressive { return &Progressive{sched: sched} }

// TileRenderFactory builds the RenderTileFunc for one pass, given how many
// additional samples per pixel that pass should accumulate. The returned
// func is responsible for adding its samples on top of whatever running
// per-pixel sum the caller is keeping across passes.
type TileRenderFactory func(samplesThisPass int) RenderTileFunc

// Run executes PassSamples(maxSamples, maxPasses) passes in sequence,
// driving the underlying Scheduler once per pass over renderBounds, and
// invokes onPass after each pass's tiles have all completed. onProgress, if
// non-nil, reports fine-grained pixel progress within each pass.
func (p *Progressive) Run(renderBounds geometry.Bounds2[int], maxSamples, maxPasses int, makeRender TileRenderFactory, onPass PassCallback, onProgress ProgressFunc) {
	schedule := PassSamples(maxSamples, maxPasses)
	cumulative := 0
	for i, samples := range schedule {
		p.sched.Run(renderBounds, makeRender(samples), onProgress)
		cumulative += samples
		if onPass != nil {
			onPass(PassResult{PassNumber: i + 1, Samples: cumulative, IsLast: i == len(schedule)-1})
		}
	}
}

package scheduler

import (
	"sync/atomic"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestPassSamplesSumsToMaxSamples(t *testing.T) {
	for _, tc := range []struct {
		maxSamples, maxPasses int
	}{
		{50, 7}, {1, 1}, {10, 1}, {5, 10}, {100, 3},
	} {
		schedule := PassSamples(tc.maxSamples, tc.maxPasses)
		sum := 0
		for _, s := range schedule {
			if s < 1 {
				t.Fatalf("PassSamples(%d,%d) produced a non-positive pass %d: %v", tc.maxSamples, tc.maxPasses, s, schedule)
			}
			sum += s
		}
		if sum != tc.maxSamples {
			t.Errorf("PassSamples(%d,%d) = %v, sums to %d, want %d", tc.maxSamples, tc.maxPasses, schedule, sum, tc.maxSamples)
		}
	}
}

func TestPassSamplesFirstPassIsOneWhenMultiplePasses(t *testing.T) {
	schedule := PassSamples(50, 7)
	if schedule[0] != 1 {
		t.Errorf("first pass = %d, want 1 (quick preview)", schedule[0])
	}
}

func TestProgressiveRunInvokesEveryPass(t *testing.T) {
	s := NewScheduler(Config{TileSize: 4, WorkerCount: 2})
	p := NewProgressive(s)
	bounds := geometry.NewBounds2([2]int{0, 0}, [2]int{8, 8})

	var samplesRendered int64
	var passNumbers []int

	p.Run(bounds, 8, 3, func(samplesThisPass int) RenderTileFunc {
		return func(tile Tile, rng *rtmath.PCG) {
			atomic.AddInt64(&samplesRendered, int64(samplesThisPass*tile.Bounds.Width()*tile.Bounds.Height()))
		}
	}, func(result PassResult) {
		passNumbers = append(passNumbers, result.PassNumber)
	}, nil)

	schedule := PassSamples(8, 3)
	if len(passNumbers) != len(schedule) {
		t.Errorf("onPass invoked %d times, want %d", len(passNumbers), len(schedule))
	}
	wantTotal := int64(0)
	for _, samples := range schedule {
		wantTotal += int64(samples * bounds.Width() * bounds.Height())
	}
	if samplesRendered != wantTotal {
		t.Errorf("total samples rendered = %d, want %d", samplesRendered, wantTotal)
	}
}

func TestProgressiveRunLastPassReachesMaxSamples(t *testing.T) {
	s := NewScheduler(Config{TileSize: 4, WorkerCount: 1})
	p := NewProgressive(s)
	bounds := geometry.NewBounds2([2]int{0, 0}, [2]int{4, 4})

	var last PassResult
	p.Run(bounds, 32, 5, func(int) RenderTileFunc {
		return func(Tile, *rtmath.PCG) {}
	}, func(result PassResult) {
		last = result
	}, nil)

	if !last.IsLast {
		t.Errorf("final PassResult.IsLast = false, want true")
	}
	if last.Samples != 32 {
		t.Errorf("final PassResult.Samples = %d, want 32", last.Samples)
	}
}

// Command raytracer renders a YAML scene description to a PNG, driving
// the scheduler/integrator/camera stack over a fixed worker pool.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	"github.com/df07/go-progressive-raytracer/pkg/loaders"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
	"github.com/df07/go-progressive-raytracer/pkg/scheduler"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run implements the full CLI contract and returns the process exit code
// instead of calling os.Exit directly, so it can be exercised by a test
// harness.
func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	workers := fs.Int("j", 0, "worker count (default: number of scene description workers, minimum 1)")
	output := fs.String("o", "", "output PNG path (required)")
	resolution := fs.String("resolution", "", "override resolution, COLSxROWS")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	passes := fs.Int("passes", 1, "progressive refinement passes (>1 writes an intermediate PNG to -o after each pass)")
	help := fs.Bool("h", false, "show usage")
	fs.BoolVar(help, "help", false, "show usage")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: raytracer [-j N] -o PATH [--resolution COLSxROWS] [--passes N] [--quiet] SCENE.yaml")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		// flag already printed a diagnostic via fs.Usage/Output.
		return 1
	}
	if *help {
		fs.Usage()
		return 0
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		fmt.Fprintln(stderr, "raytracer: exactly one scene description argument is required")
		return 1
	}
	scenePath := remaining[0]

	if *output == "" {
		fmt.Fprintln(stderr, "raytracer: -o PATH is required")
		return 1
	}

	var cols, rows int
	if *resolution != "" {
		var err error
		cols, rows, err = parseResolution(*resolution)
		if err != nil {
			fmt.Fprintf(stderr, "raytracer: --resolution: %v\n", err)
			return 1
		}
	}

	logLevel := zerolog.InfoLevel
	if *quiet {
		logLevel = zerolog.ErrorLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(logLevel).
		With().Timestamp().Logger()

	loaded, err := loaders.LoadScene(scenePath, log)
	if err != nil {
		fmt.Fprintf(stderr, "raytracer: %v\n", err)
		return 1
	}

	if cols > 0 && rows > 0 {
		loaded.Resolution = [2]int{cols, rows}
	}
	if *workers > 0 {
		loaded.Scheduler.WorkerCount = *workers
	}

	width, height := loaded.Resolution[0], loaded.Resolution[1]
	pixels := make([]rtmath.Vec3, width*height)

	pt := integrator.NewPathTracer(loaded.Scene, loaded.Integrator)
	sched := scheduler.NewScheduler(loaded.Scheduler)

	spp := loaded.SPP
	start := time.Now()

	var progress scheduler.ProgressFunc
	if !*quiet {
		progress = func(p float64, done, total int64) {
			fmt.Fprintf(stderr, "\rrendering... %5.1f%% (%d/%d px)", p*100, done, total)
		}
	}

	renderBounds := geometry.NewBounds2([2]int{0, 0}, [2]int{width, height})

	if *passes <= 1 {
		render := func(tile scheduler.Tile, rng *rtmath.PCG) {
			for y := tile.Bounds.Min[1]; y < tile.Bounds.Max[1]; y++ {
				for x := tile.Bounds.Min[0]; x < tile.Bounds.Max[0]; x++ {
					var sum rtmath.Vec3
					for s := 0; s < spp; s++ {
						jx, jy := rng.Float64(), rng.Float64()
						lu, lv := rng.Float64(), rng.Float64()
						ray := loaded.Scene.Camera.GenerateRay(float64(x)+jx, float64(y)+jy, lu, lv)
						sum = sum.Add(pt.RayColor(ray, rng))
					}
					pixels[y*width+x] = sum.Multiply(1.0 / float64(spp))
				}
			}
		}
		sched.Run(renderBounds, render, progress)
	} else {
		sampleCounts := make([]int, width*height)
		prog := scheduler.NewProgressive(sched)
		makeRender := func(samplesThisPass int) scheduler.RenderTileFunc {
			return func(tile scheduler.Tile, rng *rtmath.PCG) {
				for y := tile.Bounds.Min[1]; y < tile.Bounds.Max[1]; y++ {
					for x := tile.Bounds.Min[0]; x < tile.Bounds.Max[0]; x++ {
						idx := y*width + x
						for s := 0; s < samplesThisPass; s++ {
							jx, jy := rng.Float64(), rng.Float64()
							lu, lv := rng.Float64(), rng.Float64()
							ray := loaded.Scene.Camera.GenerateRay(float64(x)+jx, float64(y)+jy, lu, lv)
							pixels[idx] = pixels[idx].Add(pt.RayColor(ray, rng))
						}
						sampleCounts[idx] += samplesThisPass
					}
				}
			}
		}
		onPass := func(result scheduler.PassResult) {
			if !*quiet {
				fmt.Fprintf(stderr, "\rpass %d: %d samples/pixel so far", result.PassNumber, result.Samples)
			}
			preview := make([]rtmath.Vec3, len(pixels))
			for i, sum := range pixels {
				preview[i] = sum.Multiply(1.0 / float64(sampleCounts[i]))
			}
			if err := loaders.SaveImage(*output, width, height, preview); err != nil && !*quiet {
				fmt.Fprintf(stderr, "\nraytracer: pass %d preview: %v\n", result.PassNumber, err)
			}
		}
		prog.Run(renderBounds, spp, *passes, makeRender, onPass, progress)
		for i, sum := range pixels {
			pixels[i] = sum.Multiply(1.0 / float64(sampleCounts[i]))
		}
		if !*quiet {
			fmt.Fprintln(stderr)
		}
		if err := loaders.SaveImage(*output, width, height, pixels); err != nil {
			fmt.Fprintf(stderr, "raytracer: %v\n", err)
			return 1
		}
		if !*quiet {
			fmt.Fprintf(stdout, "rendered %s (%dx%d, %d spp, %d passes) in %v\n", *output, width, height, spp, *passes, time.Since(start))
		}
		return 0
	}

	if !*quiet {
		fmt.Fprintln(stderr)
	}

	if err := loaders.SaveImage(*output, width, height, pixels); err != nil {
		fmt.Fprintf(stderr, "raytracer: %v\n", err)
		return 1
	}

	if !*quiet {
		fmt.Fprintf(stdout, "rendered %s (%dx%d, %d spp) in %v\n", *output, width, height, spp, time.Since(start))
	}
	return 0
}

func parseResolution(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected COLSxROWS, got %q", s)
	}
	cols, err := strconv.Atoi(parts[0])
	if err != nil || cols < 1 {
		return 0, 0, fmt.Errorf("invalid column count %q", parts[0])
	}
	rows, err := strconv.Atoi(parts[1])
	if err != nil || rows < 1 {
		return 0, 0, fmt.Errorf("invalid row count %q", parts[1])
	}
	return cols, rows, nil
}

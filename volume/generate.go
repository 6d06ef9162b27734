package volume

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/voltex/noise"
)

// parallelThreshold is the minimum resolution worth spreading over workers.
const parallelThreshold = 32

// ProgressFunc receives the completed percentage after each z-slice.
// Values are non-decreasing and end at 100.
type ProgressFunc func(percent float64)

// Generator produces density volumes. Workers sets the number of slice
// workers: 0 uses GOMAXPROCS, 1 forces sequential generation. Output is
// bit-identical for any worker count.
type Generator struct {
	Workers int
}

// Generate builds a volume sequentially.
func Generate(cfg Config, progress ProgressFunc) (*Volume, error) {
	return Generator{Workers: 1}.Generate(cfg, progress)
}

// Generate builds the permutation table once and evaluates warp, fBm and
// remap for every voxel of cfg.Resolution^3.
func (g Generator) Generate(cfg Config, progress ProgressFunc) (*Volume, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	params := cfg.NoiseParams()
	vol := New(cfg.Resolution)

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, cfg.Resolution)

	if workers == 1 || cfg.Resolution < parallelThreshold {
		for z := 0; z < vol.N; z++ {
			fillSlice(vol, z, cfg, params)
			report(progress, z+1, vol.N)
		}
		return vol, nil
	}

	generateParallel(vol, cfg, params, workers, progress)
	return vol, nil
}

// generateParallel hands out z-slices to a fixed pool of workers. Progress
// is reported from this goroutine only, so it stays ordered.
func generateParallel(vol *Volume, cfg Config, params noise.Params, workers int, progress ProgressFunc) {
	workChan := make(chan int, vol.N)
	doneChan := make(chan struct{}, vol.N)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for z := range workChan {
				fillSlice(vol, z, cfg, params)
				doneChan <- struct{}{}
			}
		}()
	}

	for z := 0; z < vol.N; z++ {
		workChan <- z
	}
	close(workChan)

	for done := 1; done <= vol.N; done++ {
		<-doneChan
		report(progress, done, vol.N)
	}
	wg.Wait()
}

// fillSlice writes every voxel of slice z. Slices never overlap, so
// concurrent calls for distinct z are safe.
func fillSlice(vol *Volume, z int, cfg Config, params noise.Params) {
	n := vol.N
	invN := 1.0 / float64(n)
	warp := cfg.Warped()
	tz := float64(z) * invN

	row := vol.Slice(z)
	for y := 0; y < n; y++ {
		ty := float64(y) * invN
		for x := 0; x < n; x++ {
			tx := float64(x) * invN

			sx, sy, sz := tx, ty, tz
			if warp {
				sx, sy, sz = noise.Warp(tx, ty, tz, cfg.WarpStrength, params)
			}

			// [-1, 1] -> [0, 1]
			d := noise.FBM(sx, sy, sz, params)*0.5 + 0.5
			row[y*n+x] = float32(cfg.Remap(d))
		}
	}
}

func report(progress ProgressFunc, done, total int) {
	if progress != nil {
		progress(float64(done) / float64(total) * 100)
	}
}

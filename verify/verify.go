// Package verify checks that the noise behind a volume tiles seamlessly by
// comparing fBm samples on opposite faces of the unit cube.
package verify

import (
	"fmt"
	"math"

	"github.com/pthm-cable/voltex/noise"
	"github.com/pthm-cable/voltex/volume"
)

// Tolerance is the largest boundary difference still counted as exact.
const Tolerance = 1e-10

// maxTestRes caps the per-axis sample grid.
const maxTestRes = 32

// Status labels a verification outcome.
type Status string

const (
	StatusPass        Status = "PASS"
	StatusApproximate Status = "APPROXIMATE"
	StatusFail        Status = "FAIL"
)

// Result is the outcome of a tileability check. Tileable reflects the
// measured error of the unwarped noise; Status also accounts for warp.
type Result struct {
	Tileable bool    `json:"tileable"`
	MaxError float64 `json:"maxError"`
	Status   Status  `json:"status"`
}

// Tileability re-derives the noise parameters from cfg and measures the
// largest |fBm(0) - fBm(1)| along each axis over a min(N, 32)^2 grid of
// the remaining two coordinates. The unwarped fBm is sampled directly, so
// the result is independent of any generated volume. Warped
// configurations are always labelled approximate.
func Tileability(cfg volume.Config) Result {
	params := cfg.NoiseParams()
	maxErr := MaxBoundaryError(params, min(max(cfg.Resolution, 1), maxTestRes))

	r := Result{
		Tileable: maxErr < Tolerance,
		MaxError: maxErr,
	}
	switch {
	case cfg.Warped():
		r.Status = StatusApproximate
	case r.Tileable:
		r.Status = StatusPass
	default:
		r.Status = StatusFail
	}
	return r
}

// MaxBoundaryError samples testRes^2 points on each pair of opposite faces.
func MaxBoundaryError(params noise.Params, testRes int) float64 {
	var maxErr float64
	invTest := 1.0 / float64(testRes)

	for a := 0; a < testRes; a++ {
		ta := float64(a) * invTest
		for b := 0; b < testRes; b++ {
			tb := float64(b) * invTest

			maxErr = math.Max(maxErr, math.Abs(noise.FBM(0, ta, tb, params)-noise.FBM(1, ta, tb, params)))
			maxErr = math.Max(maxErr, math.Abs(noise.FBM(ta, 0, tb, params)-noise.FBM(ta, 1, tb, params)))
			maxErr = math.Max(maxErr, math.Abs(noise.FBM(ta, tb, 0, params)-noise.FBM(ta, tb, 1, params)))
		}
	}
	return maxErr
}

// String renders the result the way the control surface shows it.
func (r Result) String() string {
	switch r.Status {
	case StatusApproximate:
		return fmt.Sprintf("Tileability: APPROXIMATE (domain warp active, max error: %.2e)", r.MaxError)
	case StatusPass:
		return fmt.Sprintf("Tileability: PASS (max boundary error: %.2e)", r.MaxError)
	default:
		return fmt.Sprintf("Tileability: FAIL (max boundary error: %.2e)", r.MaxError)
	}
}

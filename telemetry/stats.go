// Package telemetry computes density statistics and stage timings for
// generated volumes and writes them as CSV.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/voltex/volume"
)

// SliceStats summarizes the densities of one Z-slice.
type SliceStats struct {
	Slice    int     `csv:"slice"`
	Mean     float64 `csv:"mean"`
	Std      float64 `csv:"std"`
	Min      float64 `csv:"min"`
	P10      float64 `csv:"p10"`
	P50      float64 `csv:"p50"`
	P90      float64 `csv:"p90"`
	Max      float64 `csv:"max"`
	Coverage float64 `csv:"coverage"` // fraction of voxels above zero
}

// VolumeStats summarizes a whole volume.
type VolumeStats struct {
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
	Coverage float64
}

// Percentile returns the p-th empirical quantile of sorted values.
// p should be in [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Summarize computes mean, std, range and coverage of values.
func Summarize(values []float64) VolumeStats {
	if len(values) == 0 {
		return VolumeStats{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return VolumeStats{
		Mean:     mean,
		Std:      std,
		Min:      floats.Min(values),
		Max:      floats.Max(values),
		Coverage: coverage(values),
	}
}

// ComputeSliceStats returns one SliceStats per Z-slice of vol.
func ComputeSliceStats(vol *volume.Volume) []SliceStats {
	out := make([]SliceStats, vol.N)
	buf := make([]float64, vol.N*vol.N)

	for z := range out {
		for i, d := range vol.Slice(z) {
			buf[i] = float64(d)
		}
		s := Summarize(buf)

		slices.Sort(buf)
		out[z] = SliceStats{
			Slice:    z,
			Mean:     s.Mean,
			Std:      s.Std,
			Min:      s.Min,
			P10:      Percentile(buf, 0.10),
			P50:      Percentile(buf, 0.50),
			P90:      Percentile(buf, 0.90),
			Max:      s.Max,
			Coverage: s.Coverage,
		}
	}
	return out
}

// ComputeVolumeStats summarizes every voxel of vol.
func ComputeVolumeStats(vol *volume.Volume) VolumeStats {
	values := make([]float64, len(vol.Data))
	for i, d := range vol.Data {
		values[i] = float64(d)
	}
	return Summarize(values)
}

func coverage(values []float64) float64 {
	var n int
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// LogValue implements slog.LogValuer for structured logging.
func (s VolumeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("coverage", s.Coverage),
	)
}

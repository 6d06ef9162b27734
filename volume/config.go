// Package volume generates dense 3D density fields from periodic fBm noise.
package volume

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/voltex/noise"
)

// ErrEmptyVolume is returned when the resolution cannot describe a volume.
var ErrEmptyVolume = errors.New("volume: resolution must be at least 1")

// Config is the immutable generation request. Range checks for the
// interactive bounds live in the config package; Check only rejects values
// that would produce no output at all.
type Config struct {
	Resolution   int     `yaml:"resolution" json:"resolution"` // cubic side N
	Seed         uint32  `yaml:"seed" json:"seed"`
	Frequency    int     `yaml:"frequency" json:"frequency"` // base cycles per unit cube
	Octaves      int     `yaml:"octaves" json:"octaves"`
	Lacunarity   float64 `yaml:"lacunarity" json:"lacunarity"`
	Gain         float64 `yaml:"gain" json:"gain"`
	WarpStrength float64 `yaml:"warp_strength" json:"warpStrength"` // 0 disables warp

	// Remap
	Gamma      float64 `yaml:"gamma" json:"gamma"`
	Brightness float64 `yaml:"brightness" json:"brightness"`
	Contrast   float64 `yaml:"contrast" json:"contrast"`
	Threshold  float64 `yaml:"threshold" json:"threshold"`
}

// Check fails fast on configurations that cannot produce a volume.
func (c Config) Check() error {
	if c.Resolution < 1 {
		return fmt.Errorf("%w: got %d", ErrEmptyVolume, c.Resolution)
	}
	return nil
}

// Warped reports whether domain warp is active.
func (c Config) Warped() bool {
	return c.WarpStrength > 0
}

// NoiseParams derives the fractal noise settings for this configuration.
func (c Config) NoiseParams() noise.Params {
	return noise.NewParams(c.Seed, c.Frequency, c.Octaves, c.Lacunarity, c.Gain)
}

// Remap applies threshold, contrast, brightness, gamma and clamping to a
// density in that order. The order changes the output and must be kept.
func (c Config) Remap(d float64) float64 {
	if d < c.Threshold {
		d = 0
	}

	// Contrast around the 0.5 midpoint
	d = (d-0.5)*c.Contrast + 0.5

	d += c.Brightness

	// Pow is only defined for d >= 0 here
	if d < 0 {
		d = 0
	}
	if c.Gamma != 1.0 {
		d = math.Pow(d, c.Gamma)
	}

	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	return d
}

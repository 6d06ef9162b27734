package verify

import (
	"strings"
	"testing"

	"github.com/pthm-cable/voltex/volume"
)

func baseConfig() volume.Config {
	return volume.Config{
		Resolution: 16,
		Seed:       42,
		Frequency:  4,
		Octaves:    3,
		Lacunarity: 2.0,
		Gain:       0.5,
		Gamma:      1,
		Contrast:   1,
	}
}

func TestTileabilityUnwarped(t *testing.T) {
	tests := []struct {
		name string
		edit func(*volume.Config)
	}{
		{"default", func(*volume.Config) {}},
		{"single octave", func(c *volume.Config) { c.Octaves = 1 }},
		{"eight octaves", func(c *volume.Config) { c.Octaves = 8 }},
		{"high frequency", func(c *volume.Config) { c.Frequency = 32; c.Octaves = 4 }},
		{"lacunarity 3", func(c *volume.Config) { c.Lacunarity = 3 }},
		{"remap ignored", func(c *volume.Config) { c.Gamma = 2.2; c.Contrast = 3; c.Threshold = 0.4 }},
		{"large N", func(c *volume.Config) { c.Resolution = 128; c.Seed = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.edit(&cfg)
			r := Tileability(cfg)
			if !r.Tileable || r.MaxError >= Tolerance {
				t.Errorf("Tileability = %+v, want tileable", r)
			}
			if r.Status != StatusPass {
				t.Errorf("Status = %s, want PASS", r.Status)
			}
		})
	}
}

func TestTileabilityWarpIsApproximate(t *testing.T) {
	cfg := baseConfig()
	cfg.WarpStrength = 0.25
	r := Tileability(cfg)
	if r.Status != StatusApproximate {
		t.Errorf("Status = %s, want APPROXIMATE", r.Status)
	}
	// The base noise itself still tiles.
	if !r.Tileable {
		t.Errorf("base noise not tileable: %+v", r)
	}
	if !strings.HasPrefix(r.String(), "Tileability: APPROXIMATE") {
		t.Errorf("String() = %q", r.String())
	}
}

func TestTileabilityFractionalLacunarityFails(t *testing.T) {
	cfg := baseConfig()
	cfg.Lacunarity = 2.3
	r := Tileability(cfg)
	if r.Tileable || r.Status != StatusFail {
		t.Errorf("Tileability = %+v, want FAIL", r)
	}
	if !strings.HasPrefix(r.String(), "Tileability: FAIL") {
		t.Errorf("String() = %q", r.String())
	}
}

func TestTileabilityDegenerateResolution(t *testing.T) {
	cfg := baseConfig()
	cfg.Resolution = 0
	r := Tileability(cfg)
	if r.Status != StatusPass {
		t.Errorf("Tileability(N=0) = %+v, want PASS on a 1x1 grid", r)
	}
}

func TestResultString(t *testing.T) {
	r := Result{Tileable: true, MaxError: 0, Status: StatusPass}
	if got, want := r.String(), "Tileability: PASS (max boundary error: 0.00e+00)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

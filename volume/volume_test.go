package volume

import (
	"errors"
	"math"
	"testing"
)

func testConfig(n int) Config {
	return Config{
		Resolution: n,
		Seed:       42,
		Frequency:  4,
		Octaves:    3,
		Lacunarity: 2.0,
		Gain:       0.5,
		Gamma:      1,
		Contrast:   1,
	}
}

func TestRemap(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		in   float64
		want float64
	}{
		{"identity", Config{Gamma: 1, Contrast: 1}, 0.3, 0.3},
		{"threshold zeroes", Config{Gamma: 1, Contrast: 1, Threshold: 0.4}, 0.3, 0},
		{"threshold keeps", Config{Gamma: 1, Contrast: 1, Threshold: 0.4}, 0.5, 0.5},
		{"contrast", Config{Gamma: 1, Contrast: 2}, 0.75, 1},
		{"contrast low", Config{Gamma: 1, Contrast: 2}, 0.375, 0.25},
		{"brightness", Config{Gamma: 1, Contrast: 1, Brightness: 0.25}, 0.5, 0.75},
		{"brightness clamps", Config{Gamma: 1, Contrast: 1, Brightness: -0.75}, 0.5, 0},
		{"gamma", Config{Gamma: 2, Contrast: 1}, 0.5, 0.25},
		{"gamma after clamp", Config{Gamma: 0.5, Contrast: 1, Brightness: -1}, 0.5, 0},
		{"clamp high", Config{Gamma: 1, Contrast: 1, Brightness: 2}, 0.5, 1},
		// threshold runs before contrast: 0 -> (0-0.5)*0+0.5
		{"order threshold then contrast", Config{Gamma: 1, Contrast: 0, Threshold: 0.9}, 0.1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Remap(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Remap(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRemapIdentityUnchanged(t *testing.T) {
	cfg := Config{Gamma: 1, Contrast: 1}
	for k := 0; k <= 1024; k++ {
		d := float64(k) / 1024
		if got := cfg.Remap(d); got != d {
			t.Fatalf("Remap(%v) = %v, want unchanged", d, got)
		}
	}
}

func TestCheck(t *testing.T) {
	for _, n := range []int{0, -4} {
		cfg := testConfig(n)
		if err := cfg.Check(); !errors.Is(err, ErrEmptyVolume) {
			t.Errorf("Check(N=%d) = %v, want ErrEmptyVolume", n, err)
		}
		if _, err := Generate(cfg, nil); !errors.Is(err, ErrEmptyVolume) {
			t.Errorf("Generate(N=%d) = %v, want ErrEmptyVolume", n, err)
		}
	}
	if err := testConfig(1).Check(); err != nil {
		t.Errorf("Check(N=1) = %v, want nil", err)
	}
}

func TestGenerateRangeAndSize(t *testing.T) {
	vol, err := Generate(testConfig(16), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vol.Data) != 16*16*16 {
		t.Fatalf("len = %d, want %d", len(vol.Data), 16*16*16)
	}
	var lo, hi float32 = 1, 0
	for i, d := range vol.Data {
		if d < 0 || d > 1 {
			t.Fatalf("voxel %d = %v, out of [0, 1]", i, d)
		}
		lo = min(lo, d)
		hi = max(hi, d)
	}
	if hi-lo < 0.05 {
		t.Errorf("volume is nearly flat: [%v, %v]", lo, hi)
	}
}

func TestGenerateProgress(t *testing.T) {
	var got []float64
	_, err := Generate(testConfig(20), func(p float64) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("progress calls = %d, want 20", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Errorf("progress decreased: %v -> %v", got[i-1], got[i])
		}
	}
	if got[0] != 5 || got[len(got)-1] != 100 {
		t.Errorf("progress = %v ... %v, want 5 ... 100", got[0], got[len(got)-1])
	}
}

func TestGenerateParallelMatchesSequential(t *testing.T) {
	cfg := testConfig(32)
	cfg.WarpStrength = 0.2

	seq, err := Generator{Workers: 1}.Generate(cfg, nil)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}

	var calls int
	var last float64
	par, err := Generator{Workers: 4}.Generate(cfg, func(p float64) {
		if p < last {
			t.Errorf("progress decreased: %v -> %v", last, p)
		}
		last = p
		calls++
	})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if calls != 32 || last != 100 {
		t.Errorf("parallel progress: %d calls ending at %v", calls, last)
	}
	for i := range seq.Data {
		if seq.Data[i] != par.Data[i] {
			t.Fatalf("voxel %d: sequential %v, parallel %v", i, seq.Data[i], par.Data[i])
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate(testConfig(16), nil)
	b, _ := Generate(testConfig(16), nil)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("voxel %d differs between runs", i)
		}
	}

	other := testConfig(16)
	other.Seed = 43
	c, _ := Generate(other, nil)
	same := true
	for i := range a.Data {
		if a.Data[i] != c.Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical volumes")
	}
}

func TestVolumeIndexing(t *testing.T) {
	vol := New(4)
	vol.Data[vol.Index(1, 2, 3)] = 0.5
	if got := vol.Data[3*16+2*4+1]; got != 0.5 {
		t.Errorf("row-major index mismatch: %v", got)
	}
	if got := vol.At(1, 2, 3); got != 0.5 {
		t.Errorf("At = %v, want 0.5", got)
	}
	if got := vol.Slice(3)[2*4+1]; got != 0.5 {
		t.Errorf("Slice(3) = %v, want 0.5", got)
	}
}

func TestSliceGray8(t *testing.T) {
	vol := New(2)
	copy(vol.Slice(1), []float32{0, 0.5, 1, 0.002})
	got := vol.SliceGray8(1)
	want := []uint8{0, 128, 255, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gray[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

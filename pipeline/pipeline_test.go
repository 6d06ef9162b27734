package pipeline

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/pthm-cable/voltex/atlas"
	"github.com/pthm-cable/voltex/pngenc"
	"github.com/pthm-cable/voltex/verify"
	"github.com/pthm-cable/voltex/volume"
)

func scenarioConfig() volume.Config {
	return volume.Config{
		Resolution:   16,
		Seed:         42,
		Frequency:    4,
		Octaves:      3,
		Lacunarity:   2.0,
		Gain:         0.5,
		WarpStrength: 0,
		Gamma:        1,
		Brightness:   0,
		Contrast:     1,
		Threshold:    0,
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	var progress []float64
	res, err := Generate(scenarioConfig(), Options{
		Progress: func(p float64) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(res.Volume.Data) != 16*16*16 {
		t.Fatalf("volume size = %d", len(res.Volume.Data))
	}
	for i, d := range res.Volume.Data {
		if d < 0 || d > 1 {
			t.Fatalf("voxel %d = %v out of [0, 1]", i, d)
		}
	}

	l := res.Layout
	if l.TilesX != 4 || l.TilesY != 4 || l.AtlasWidth != 64 || l.AtlasHeight != 64 {
		t.Errorf("layout = %+v, want 4x4 tiles of 64x64 px", l)
	}
	if !res.Verification.Tileable || res.Verification.Status != verify.StatusPass {
		t.Errorf("verification = %+v, want PASS", res.Verification)
	}
	if len(progress) != 16 || progress[15] != 100 {
		t.Errorf("progress = %v", progress)
	}
	if len(res.SliceStats) != 16 {
		t.Errorf("slice stats = %d, want 16", len(res.SliceStats))
	}
	if res.Metadata.TilesX != 4 || res.Metadata.NoiseParams.Seed != 42 {
		t.Errorf("metadata = %+v", res.Metadata)
	}

	data, err := res.PNG(nil)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		t.Fatalf("decoded %T, want *image.Gray16", img)
	}
	if b := gray.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("PNG size = %v, want 64x64", b)
	}

	// Slice 6 lives at tile (2, 1).
	want := atlas.Quantize(res.Volume.At(3, 5, 6))
	if got := gray.Gray16At(2*16+3, 1*16+5).Y; got != want {
		t.Errorf("pixel = %d, want %d", got, want)
	}

	if raw := res.Raw(); len(raw) != 2*16*16*16 {
		t.Errorf("raw size = %d", len(raw))
	}
	if _, err := res.MetadataJSON(); err != nil {
		t.Errorf("MetadataJSON: %v", err)
	}
}

func TestGenerateWarpIsApproximate(t *testing.T) {
	cfg := scenarioConfig()
	cfg.WarpStrength = 0.3
	res, err := Generate(cfg, Options{SkipStats: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Verification.Status != verify.StatusApproximate {
		t.Errorf("status = %s, want APPROXIMATE", res.Verification.Status)
	}
	if res.SliceStats != nil {
		t.Error("stats computed despite SkipStats")
	}
}

func TestGenerateConfigError(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Resolution = 0

	_, err := Generate(cfg, Options{})
	if !errors.Is(err, volume.ErrEmptyVolume) {
		t.Fatalf("err = %v, want ErrEmptyVolume", err)
	}
	if stage, ok := StageOf(err); !ok || stage != StageConfig {
		t.Errorf("stage = %q, want config", stage)
	}

	if _, err := Verify(cfg); err == nil {
		t.Error("Verify accepted N=0")
	}
}

func TestPNGEncodeFailureIsStaged(t *testing.T) {
	res, err := Generate(scenarioConfig(), Options{SkipStats: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	failing := pngenc.CompressorFunc(func([]byte) ([]byte, error) {
		return nil, errors.New("deflate unavailable")
	})
	_, err = res.PNG(failing)
	if stage, ok := StageOf(err); !ok || stage != StageEncode {
		t.Fatalf("err = %v, want encode stage", err)
	}
	if !errors.Is(err, pngenc.ErrCompress) {
		t.Errorf("err = %v, want ErrCompress", err)
	}

	// RAW and metadata stay available.
	if len(res.Raw()) == 0 {
		t.Error("raw export empty after PNG failure")
	}
	if _, err := res.MetadataJSON(); err != nil {
		t.Errorf("MetadataJSON: %v", err)
	}
}

func TestStageErrorMessage(t *testing.T) {
	err := stageError(StageAtlas, errors.New("bad"))
	if got := err.Error(); got != "pipeline: atlas: bad" {
		t.Errorf("Error() = %q", got)
	}
	if _, ok := StageOf(errors.New("plain")); ok {
		t.Error("StageOf found a stage in a plain error")
	}
}

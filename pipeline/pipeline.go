// Package pipeline sequences volume generation, verification, atlas
// packing and metadata into one result, synchronously or as a session of
// asynchronous tasks.
package pipeline

import (
	"bytes"
	"log/slog"

	"github.com/pthm-cable/voltex/atlas"
	"github.com/pthm-cable/voltex/metadata"
	"github.com/pthm-cable/voltex/pngenc"
	"github.com/pthm-cable/voltex/telemetry"
	"github.com/pthm-cable/voltex/verify"
	"github.com/pthm-cable/voltex/volume"
)

// Options tunes a generation run.
type Options struct {
	// Workers is passed to volume.Generator (0 = GOMAXPROCS).
	Workers int
	// Progress receives per-slice percentages; may be nil.
	Progress volume.ProgressFunc
	// SkipStats disables per-slice statistics.
	SkipStats bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Result is everything one run produces. It is immutable once returned;
// each field owns its own buffer.
type Result struct {
	Config       volume.Config
	Volume       *volume.Volume
	Atlas        []byte // big-endian 16-bit gray, Layout.AtlasWidth x Layout.AtlasHeight
	Layout       atlas.Layout
	Metadata     metadata.Metadata
	Verification verify.Result
	SliceStats   []telemetry.SliceStats
	VolumeStats  telemetry.VolumeStats
	Perf         telemetry.PerfSample
}

// Generate runs the full pipeline for cfg.
func Generate(cfg volume.Config, opts Options) (*Result, error) {
	log := opts.logger()
	if err := cfg.Check(); err != nil {
		return nil, stageError(StageConfig, err)
	}

	perf := telemetry.NewPerfCollector(1)
	perf.StartRun()

	perf.StartPhase(telemetry.PhaseVolume)
	vol, err := volume.Generator{Workers: opts.Workers}.Generate(cfg, opts.Progress)
	if err != nil {
		return nil, stageError(StageVolume, err)
	}

	perf.StartPhase(telemetry.PhaseVerify)
	verification := verify.Tileability(cfg)

	perf.StartPhase(telemetry.PhaseAtlas)
	buf, layout := atlas.Pack16(vol)

	perf.StartPhase(telemetry.PhaseMetadata)
	meta := metadata.New(cfg, layout)

	res := &Result{
		Config:       cfg,
		Volume:       vol,
		Atlas:        buf,
		Layout:       layout,
		Metadata:     meta,
		Verification: verification,
	}

	if !opts.SkipStats {
		perf.StartPhase(telemetry.PhaseStats)
		res.SliceStats = telemetry.ComputeSliceStats(vol)
		res.VolumeStats = telemetry.ComputeVolumeStats(vol)
	}

	res.Perf = perf.EndRun()

	log.Debug("generation timings", "perf", res.Perf)
	log.Info("generation complete",
		"resolution", cfg.Resolution,
		"seed", cfg.Seed,
		"atlas_width", layout.AtlasWidth,
		"atlas_height", layout.AtlasHeight,
		"tileability", verification.Status,
		"max_error", verification.MaxError,
	)
	return res, nil
}

// Verify runs only the tileability check.
func Verify(cfg volume.Config) (verify.Result, error) {
	if err := cfg.Check(); err != nil {
		return verify.Result{}, stageError(StageConfig, err)
	}
	return verify.Tileability(cfg), nil
}

// PNG encodes the atlas. A nil compressor uses pngenc.DefaultCompressor.
// Failures are reported under StageEncode and leave the result usable.
func (r *Result) PNG(c pngenc.Compressor) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngenc.Encode(&buf, r.Atlas, r.Layout.AtlasWidth, r.Layout.AtlasHeight, c); err != nil {
		return nil, stageError(StageEncode, err)
	}
	return buf.Bytes(), nil
}

// Raw returns the little-endian 16-bit volume.
func (r *Result) Raw() []byte {
	return atlas.PackRaw16(r.Volume)
}

// MetadataJSON encodes the metadata record.
func (r *Result) MetadataJSON() ([]byte, error) {
	data, err := r.Metadata.JSON()
	if err != nil {
		return nil, stageError(StageMetadata, err)
	}
	return data, nil
}

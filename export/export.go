// Package export writes a generation result as a set of files: the PNG
// atlas, the raw 16-bit volume, the metadata JSON and optional slice
// statistics and config snapshot.
package export

import (
	"context"
	"fmt"

	"github.com/pthm-cable/voltex/pipeline"
	"github.com/pthm-cable/voltex/pngenc"
	"github.com/pthm-cable/voltex/telemetry"
)

// Raw compression modes.
const (
	RawPlain = "none"
	RawZstd  = "zstd"
)

// Options selects the files to write.
type Options struct {
	// Basename prefixes every file; defaults to "noise3d".
	Basename string
	// RawCompression is RawPlain (or empty) or RawZstd.
	RawCompression string
	// WriteStats adds <base>_<N>_stats.csv when the result carries stats.
	WriteStats bool
	// ConfigYAML, when set, is written as <base>_<N>_config.yaml.
	ConfigYAML []byte
	// Compressor for the PNG IDAT stream; nil uses the default zlib.
	Compressor pngenc.Compressor
}

// Report lists what Write stored.
type Report struct {
	Files []string
	// PNGErr is set when the atlas could not be encoded. The other files
	// are still written.
	PNGErr error
}

// Names returns the file names used for a volume of side n.
func Names(basename string, n int) (png, raw, meta, stats, cfg string) {
	if basename == "" {
		basename = "noise3d"
	}
	base := fmt.Sprintf("%s_%d", basename, n)
	return base + ".png", base + ".raw", base + ".json", base + "_stats.csv", base + "_config.yaml"
}

// Write stores res in sink. A PNG encoding failure is recorded in the
// report and returned after the remaining files are written; a sink
// failure aborts immediately.
func Write(ctx context.Context, sink Sink, res *pipeline.Result, opts Options) (Report, error) {
	var report Report
	pngName, rawName, metaName, statsName, cfgName := Names(opts.Basename, res.Config.Resolution)

	put := func(name string, data []byte) error {
		if err := sink.Put(ctx, name, data); err != nil {
			return err
		}
		report.Files = append(report.Files, name)
		return nil
	}

	pngData, err := res.PNG(opts.Compressor)
	if err != nil {
		report.PNGErr = err
	} else if err := put(pngName, pngData); err != nil {
		return report, err
	}

	raw := res.Raw()
	switch opts.RawCompression {
	case "", RawPlain:
	case RawZstd:
		raw, err = CompressZstd(raw)
		if err != nil {
			return report, fmt.Errorf("compressing raw volume: %w", err)
		}
		rawName += ".zst"
	default:
		return report, fmt.Errorf("unknown raw compression %q", opts.RawCompression)
	}
	if err := put(rawName, raw); err != nil {
		return report, err
	}

	meta, err := res.MetadataJSON()
	if err != nil {
		return report, err
	}
	if err := put(metaName, meta); err != nil {
		return report, err
	}

	if opts.WriteStats && len(res.SliceStats) > 0 {
		csv, err := telemetry.SliceStatsCSV(res.SliceStats)
		if err != nil {
			return report, fmt.Errorf("encoding slice stats: %w", err)
		}
		if err := put(statsName, csv); err != nil {
			return report, err
		}
	}

	if len(opts.ConfigYAML) > 0 {
		if err := put(cfgName, opts.ConfigYAML); err != nil {
			return report, err
		}
	}

	return report, report.PNGErr
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/voltex/config"
	"github.com/pthm-cable/voltex/export"
	"github.com/pthm-cable/voltex/pipeline"
	"github.com/pthm-cable/voltex/server"
	"github.com/pthm-cable/voltex/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory (overrides output.dir)")
	basename := flag.String("basename", "", "Output file prefix (overrides output.basename)")
	rawCompression := flag.String("raw-compression", "", "Raw volume compression: none or zstd")
	writeConfig := flag.Bool("write-config", false, "Write the effective config next to the outputs")
	verifyOnly := flag.Bool("verify", false, "Only run the tileability check")
	serveAddr := flag.String("serve", "", "Serve the websocket API on this address instead of generating")
	s3Bucket := flag.String("s3-bucket", "", "Upload outputs to this S3 bucket")
	s3Prefix := flag.String("s3-prefix", "", "Key prefix for S3 uploads")
	logFormat := flag.String("log-format", "json", "Log format: json or text")
	debug := flag.Bool("debug", false, "Enable debug logging")

	// Generation overrides; only flags given on the command line apply.
	resolution := flag.Int("resolution", 0, "Volume side length N")
	seed := flag.Uint("seed", 0, "Noise seed")
	frequency := flag.Int("frequency", 0, "Base frequency (cycles per tile)")
	octaves := flag.Int("octaves", 0, "fBm octaves")
	lacunarity := flag.Float64("lacunarity", 0, "Frequency multiplier per octave")
	gain := flag.Float64("gain", 0, "Amplitude multiplier per octave")
	warp := flag.Float64("warp", 0, "Domain warp strength (0 = off)")
	gamma := flag.Float64("gamma", 0, "Remap gamma")
	brightness := flag.Float64("brightness", 0, "Remap brightness offset")
	contrast := flag.Float64("contrast", 0, "Remap contrast")
	threshold := flag.Float64("threshold", 0, "Remap threshold")
	workers := flag.Int("workers", -1, "Slice workers (0 = GOMAXPROCS, 1 = sequential)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	if *logFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	flag.Visit(func(f *flag.Flag) {
		g := &cfg.Generation
		switch f.Name {
		case "resolution":
			g.Resolution = *resolution
		case "seed":
			g.Seed = uint32(*seed)
		case "frequency":
			g.Frequency = *frequency
		case "octaves":
			g.Octaves = *octaves
		case "lacunarity":
			g.Lacunarity = *lacunarity
		case "gain":
			g.Gain = *gain
		case "warp":
			g.WarpStrength = *warp
		case "gamma":
			g.Gamma = *gamma
		case "brightness":
			g.Brightness = *brightness
		case "contrast":
			g.Contrast = *contrast
		case "threshold":
			g.Threshold = *threshold
		case "workers":
			cfg.Parallel.Workers = *workers
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "basename":
			cfg.Output.Basename = *basename
		case "raw-compression":
			cfg.Output.RawCompression = *rawCompression
		case "write-config":
			cfg.Output.WriteConfig = *writeConfig
		case "s3-bucket":
			cfg.S3.Bucket = *s3Bucket
		case "s3-prefix":
			cfg.S3.Prefix = *s3Prefix
		case "serve":
			cfg.Server.Addr = *serveAddr
		}
	})

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case *serveAddr != "":
		err = serve(ctx, cfg)
	case *verifyOnly:
		err = runVerify(cfg)
	default:
		err = generate(ctx, cfg)
	}
	if err != nil {
		if stage, ok := pipeline.StageOf(err); ok {
			slog.Error("failed", "stage", stage, "error", err)
		} else {
			slog.Error("failed", "error", err)
		}
		os.Exit(1)
	}
}

func runVerify(cfg *config.Config) error {
	v, err := pipeline.Verify(cfg.Generation)
	if err != nil {
		return err
	}
	fmt.Println(v.String())
	slog.Info("verification", "status", v.Status, "max_error", v.MaxError, "tileable", v.Tileable)
	return nil
}

func generate(ctx context.Context, cfg *config.Config) error {
	slog.Info("starting generation",
		"resolution", cfg.Generation.Resolution,
		"seed", cfg.Generation.Seed,
		"workers", cfg.Parallel.Workers,
	)

	lastLogged := 0.0
	res, err := pipeline.Generate(cfg.Generation, pipeline.Options{
		Workers:   cfg.Parallel.Workers,
		SkipStats: !cfg.Output.WriteStats,
		Progress: func(percent float64) {
			if percent-lastLogged >= 10 || percent == 100 {
				slog.Debug("progress", "percent", percent)
				lastLogged = percent
			}
		},
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Verification.String())
	if !cfg.Output.WriteStats {
		// Volume stats are cheap and useful in the log even without the CSV
		res.VolumeStats = telemetry.ComputeVolumeStats(res.Volume)
	}
	slog.Info("density", "stats", res.VolumeStats)

	sink, dest, err := openSink(cfg)
	if err != nil {
		return err
	}

	opts := export.Options{
		Basename:       cfg.Output.Basename,
		RawCompression: cfg.Output.RawCompression,
		WriteStats:     cfg.Output.WriteStats,
	}
	if cfg.Output.WriteConfig {
		if opts.ConfigYAML, err = cfg.YAML(); err != nil {
			return err
		}
	}

	report, err := export.Write(ctx, sink, res, opts)
	for _, name := range report.Files {
		slog.Info("wrote file", "name", name, "dest", dest)
	}
	if report.PNGErr != nil {
		// RAW and JSON are still usable
		slog.Error("atlas PNG not written", "error", report.PNGErr)
	}
	return err
}

func openSink(cfg *config.Config) (export.Sink, string, error) {
	if cfg.S3.Bucket == "" {
		return export.DirSink{Dir: cfg.Output.Dir}, cfg.Output.Dir, nil
	}
	sess, err := export.NewSession(cfg.S3.Region)
	if err != nil {
		return nil, "", err
	}
	return export.NewS3Sink(sess, cfg.S3.Bucket, cfg.S3.Prefix), "s3://" + cfg.S3.Bucket + "/" + cfg.S3.Prefix, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", server.NewHandler(cfg.Generation, pipeline.Options{
		Workers:   cfg.Parallel.Workers,
		SkipStats: !cfg.Output.WriteStats,
	}))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving websocket", "addr", cfg.Server.Addr, "path", "/ws")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// Volume slice preview - interactive viewer with parameter sliders.
//
// Usage: go run ./cmd/slicepreview
package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/voltex/config"
	"github.com/pthm-cable/voltex/export"
	"github.com/pthm-cable/voltex/pipeline"
	"github.com/pthm-cable/voltex/volume"
)

const (
	windowWidth  = 1100
	windowHeight = 760
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30

	// Slider changes settle for this long before a new task is submitted.
	regenDelay = 250 * time.Millisecond
)

type slider struct {
	label    string
	min, max float32
	format   string
	get      func(*volume.Config) float32
	set      func(*volume.Config, float32)
}

var sliders = []slider{
	{"Resolution", 16, 128, "%.0f",
		func(c *volume.Config) float32 { return float32(c.Resolution) },
		func(c *volume.Config, v float32) { c.Resolution = int(v) }},
	{"Frequency (cycles per tile)", 1, 32, "%.0f",
		func(c *volume.Config) float32 { return float32(c.Frequency) },
		func(c *volume.Config, v float32) { c.Frequency = int(v) }},
	{"Octaves", 1, 8, "%.0f",
		func(c *volume.Config) float32 { return float32(c.Octaves) },
		func(c *volume.Config, v float32) { c.Octaves = int(v) }},
	{"Lacunarity", 1.5, 4, "%.2f",
		func(c *volume.Config) float32 { return float32(c.Lacunarity) },
		func(c *volume.Config, v float32) { c.Lacunarity = float64(v) }},
	{"Gain", 0.2, 0.9, "%.2f",
		func(c *volume.Config) float32 { return float32(c.Gain) },
		func(c *volume.Config, v float32) { c.Gain = float64(v) }},
	{"Warp strength", 0, 1, "%.2f",
		func(c *volume.Config) float32 { return float32(c.WarpStrength) },
		func(c *volume.Config, v float32) { c.WarpStrength = float64(v) }},
	{"Gamma", 0.2, 3, "%.2f",
		func(c *volume.Config) float32 { return float32(c.Gamma) },
		func(c *volume.Config, v float32) { c.Gamma = float64(v) }},
	{"Brightness", -0.5, 0.5, "%.2f",
		func(c *volume.Config) float32 { return float32(c.Brightness) },
		func(c *volume.Config, v float32) { c.Brightness = float64(v) }},
	{"Contrast", 0, 3, "%.2f",
		func(c *volume.Config) float32 { return float32(c.Contrast) },
		func(c *volume.Config, v float32) { c.Contrast = float64(v) }},
	{"Threshold", 0, 1, "%.2f",
		func(c *volume.Config) float32 { return float32(c.Threshold) },
		func(c *volume.Config, v float32) { c.Threshold = float64(v) }},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	defaults := config.Default()
	params := defaults.Generation

	rl.InitWindow(windowWidth, windowHeight, "Noise Volume Slice Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	session := pipeline.NewSession(pipeline.Options{SkipStats: true, Logger: logger})

	var (
		result   *pipeline.Result
		events   <-chan pipeline.Event
		progress float64
		status   string

		texture  rl.Texture2D
		texSize  int
		z        int
		tiled    bool
		dirty    = true
		dirtyAt  time.Time
		texDirty bool
	)
	defer func() {
		if texSize > 0 {
			rl.UnloadTexture(texture)
		}
	}()

	for !rl.WindowShouldClose() {
		// Submit once sliders have settled
		if dirty && time.Since(dirtyAt) >= regenDelay {
			_, events = session.Submit(params)
			progress = 0
			dirty = false
		}

		// Drain task events without blocking the frame
		for drained := false; events != nil && !drained; {
			select {
			case ev, ok := <-events:
				if !ok {
					events = nil
					break
				}
				switch ev.Type {
				case pipeline.EventProgress:
					progress = ev.Percent
				case pipeline.EventResult:
					result = ev.Result
					status = result.Verification.String()
					z = min(z, result.Volume.N-1)
					texDirty = true
				case pipeline.EventError:
					status = "Error: " + ev.Err.Error()
				}
			default:
				drained = true
			}
		}

		if result != nil && texDirty {
			if texSize != result.Volume.N {
				if texSize > 0 {
					rl.UnloadTexture(texture)
				}
				img := rl.GenImageColor(result.Volume.N, result.Volume.N, rl.Black)
				texture = rl.LoadTextureFromImage(img)
				rl.UnloadImage(img)
				texSize = result.Volume.N
			}
			updateTexture(texture, result.Volume, z)
			texDirty = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		if texSize > 0 {
			drawSlice(texture, texSize, tiled)
		}
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		if result != nil {
			n := result.Volume.N
			rl.DrawText(fmt.Sprintf("Slice %d / %d   Atlas %dx%d (%dx%d tiles)", z, n-1,
				result.Layout.AtlasWidth, result.Layout.AtlasHeight, result.Layout.TilesX, result.Layout.TilesY),
				15, statsY, 16, rl.DarkGray)

			newZ := gui.SliderBar(
				rl.Rectangle{X: 15, Y: float32(statsY + 25), Width: previewSize - 60, Height: 20},
				"", "",
				float32(z), 0, float32(n-1),
			)
			if int(newZ) != z {
				z = int(newZ)
				texDirty = true
			}
			rl.DrawText(fmt.Sprintf("Generated in %s", result.Perf.RunDuration.Round(time.Millisecond)),
				15, statsY+55, 14, rl.Gray)
		}
		rl.DrawText(status, 15, statsY+75, 16, statusColor(status))
		if events != nil {
			gui.ProgressBar(
				rl.Rectangle{X: 15, Y: float32(statsY + 100), Width: previewSize - 60, Height: 16},
				"", fmt.Sprintf("%.0f%%", progress),
				float32(progress), 0, 100,
			)
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Noise Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			cur := s.get(&params)
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != cur {
				s.set(&params, next)
				dirty, dirtyAt = true, time.Now()
			}
			panelY += 32
		}

		rl.DrawText(fmt.Sprintf("Seed: %d", params.Seed), int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = uint32(rl.GetRandomValue(0, 99999))
			dirty, dirtyAt = true, time.Time{}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults.Generation
			dirty, dirtyAt = true, time.Time{}
		}
		tiled = gui.CheckBox(rl.Rectangle{X: panelX + 265, Y: panelY + 7, Width: 16, Height: 16}, "Tile 2x2", tiled)
		panelY += 45

		// Instructions
		rl.DrawText("C: copy YAML to clipboard   E: export to output dir", int32(panelX), int32(windowHeight-30), 12, rl.Gray)

		if rl.IsKeyPressed(rl.KeyC) {
			cfg := *defaults
			cfg.Generation = params
			if data, err := cfg.YAML(); err == nil {
				rl.SetClipboardText(string(data))
			}
		}
		if rl.IsKeyPressed(rl.KeyE) && result != nil {
			status = exportResult(defaults, result)
		}

		rl.EndDrawing()
	}
}

// drawSlice draws the slice texture, optionally as a 2x2 repeat to show seams.
func drawSlice(texture rl.Texture2D, size int, tiled bool) {
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(size), Height: float32(size)}
	if !tiled {
		rl.DrawTexturePro(texture, src,
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0}, 0, rl.White)
		return
	}
	half := float32(previewSize / 2)
	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			rl.DrawTexturePro(texture, src,
				rl.Rectangle{X: 10 + float32(tx)*half, Y: 10 + float32(ty)*half, Width: half, Height: half},
				rl.Vector2{X: 0, Y: 0}, 0, rl.White)
		}
	}
}

func statusColor(status string) color.RGBA {
	switch {
	case strings.Contains(status, "PASS"):
		return rl.DarkGreen
	case strings.Contains(status, "APPROXIMATE"):
		return rl.Orange
	case status == "":
		return rl.Gray
	default:
		return rl.Maroon
	}
}

func exportResult(cfg *config.Config, res *pipeline.Result) string {
	sink := export.DirSink{Dir: cfg.Output.Dir}
	report, err := export.Write(context.Background(), sink, res, export.Options{
		Basename:       cfg.Output.Basename,
		RawCompression: cfg.Output.RawCompression,
	})
	if err != nil {
		slog.Error("export failed", "error", err)
		return "Export failed: " + err.Error()
	}
	slog.Info("exported", "files", report.Files, "dir", cfg.Output.Dir)
	return fmt.Sprintf("Exported %d files to %s", len(report.Files), cfg.Output.Dir)
}

// updateTexture uploads slice z of vol as grayscale.
func updateTexture(texture rl.Texture2D, vol *volume.Volume, z int) {
	gray := vol.SliceGray8(z)
	pixels := make([]color.RGBA, len(gray))
	for i, v := range gray {
		pixels[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}

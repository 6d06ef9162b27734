// Package metadata describes a generated atlas for importers.
package metadata

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/pthm-cable/voltex/atlas"
	"github.com/pthm-cable/voltex/volume"
)

const (
	Format  = "3D Noise Atlas"
	Version = "1.0"

	SliceOrder = "row-major, Z=0 at top-left, Z increases left-to-right then top-to-bottom"
	BitDepth   = 16
	ColorType  = "grayscale"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Metadata is the descriptive side-car written next to the atlas.
type Metadata struct {
	Format           string       `json:"format"`
	Version          string       `json:"version"`
	VolumeResolution int          `json:"volumeResolution"`
	AtlasWidth       int          `json:"atlasWidth"`
	AtlasHeight      int          `json:"atlasHeight"`
	TilesX           int          `json:"tilesX"`
	TilesY           int          `json:"tilesY"`
	SliceCount       int          `json:"sliceCount"`
	SliceOrder       string       `json:"sliceOrder"`
	BitDepth         int          `json:"bitDepth"`
	ColorType        string       `json:"colorType"`
	NoiseParams      NoiseParams  `json:"noiseParams"`
	UnrealImport     UnrealImport `json:"unrealImport"`
}

// NoiseParams records every parameter that shaped the volume.
type NoiseParams struct {
	Seed         uint32  `json:"seed"`
	Frequency    int     `json:"frequency"`
	Octaves      int     `json:"octaves"`
	Lacunarity   float64 `json:"lacunarity"`
	Gain         float64 `json:"gain"`
	WarpStrength float64 `json:"warpStrength"`
	Gamma        float64 `json:"gamma"`
	Brightness   float64 `json:"brightness"`
	Contrast     float64 `json:"contrast"`
	Threshold    float64 `json:"threshold"`
}

// UnrealImport lists the steps to turn the atlas into a Volume Texture.
type UnrealImport struct {
	Instructions []string `json:"instructions"`
}

// New builds the metadata record for a configuration and its layout.
func New(cfg volume.Config, layout atlas.Layout) Metadata {
	n := cfg.Resolution
	return Metadata{
		Format:           Format,
		Version:          Version,
		VolumeResolution: n,
		AtlasWidth:       layout.AtlasWidth,
		AtlasHeight:      layout.AtlasHeight,
		TilesX:           layout.TilesX,
		TilesY:           layout.TilesY,
		SliceCount:       n,
		SliceOrder:       SliceOrder,
		BitDepth:         BitDepth,
		ColorType:        ColorType,
		NoiseParams: NoiseParams{
			Seed:         cfg.Seed,
			Frequency:    cfg.Frequency,
			Octaves:      cfg.Octaves,
			Lacunarity:   cfg.Lacunarity,
			Gain:         cfg.Gain,
			WarpStrength: cfg.WarpStrength,
			Gamma:        cfg.Gamma,
			Brightness:   cfg.Brightness,
			Contrast:     cfg.Contrast,
			Threshold:    cfg.Threshold,
		},
		UnrealImport: UnrealImport{Instructions: unrealInstructions(n)},
	}
}

func unrealInstructions(n int) []string {
	return []string{
		"1. Import the PNG atlas into UE Content Browser",
		"2. Double-click the imported texture to open Texture Editor",
		"3. In the Details panel, find 'Volume Texture' section",
		fmt.Sprintf("4. Set 'Tile Size X' = %d", n),
		fmt.Sprintf("5. Set 'Tile Size Y' = %d", n),
		"6. Right-click the texture asset > Create Volume Texture",
		"7. Set compression to VectorDisplacementmap (HDR) or Grayscale for best quality",
		fmt.Sprintf("8. The resulting Volume Texture will be %dx%dx%d", n, n, n),
	}
}

// JSON encodes m with two-space indentation.
func (m Metadata) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return data, nil
}

// Decode parses a metadata document.
func Decode(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("decoding metadata: %w", err)
	}
	return m, nil
}

package atlas

import (
	"encoding/binary"
	"fmt"

	"github.com/pthm-cable/voltex/volume"
)

// Quantize converts a density in [0, 1] to a 16-bit sample.
func Quantize(d float32) uint16 {
	v := float64(d)*65535 + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 65535 {
		return 65535
	}
	return uint16(v)
}

// Dequantize converts a 16-bit sample back to a density.
func Dequantize(v uint16) float64 {
	return float64(v) / 65535
}

// Pack16 writes every slice of vol into a fresh big-endian 16-bit grayscale
// atlas buffer of AtlasWidth*AtlasHeight*2 bytes.
func Pack16(vol *volume.Volume) ([]byte, Layout) {
	n := vol.N
	layout := ComputeLayout(n)
	w := layout.AtlasWidth
	buf := make([]byte, w*layout.AtlasHeight*2)

	for s := 0; s < n; s++ {
		ox, oy := layout.TileOrigin(s, n)
		src := vol.Slice(s)
		for y := 0; y < n; y++ {
			row := buf[((oy+y)*w+ox)*2:]
			for x := 0; x < n; x++ {
				binary.BigEndian.PutUint16(row[x*2:], Quantize(src[y*n+x]))
			}
		}
	}

	return buf, layout
}

// PackRaw16 flattens vol into little-endian 16-bit samples in voxel index
// order, 2*N^3 bytes with no header.
func PackRaw16(vol *volume.Volume) []byte {
	out := make([]byte, len(vol.Data)*2)
	for i, d := range vol.Data {
		binary.LittleEndian.PutUint16(out[i*2:], Quantize(d))
	}
	return out
}

// SliceAt reads slice s of an n-resolution atlas back as densities.
func SliceAt(buf []byte, layout Layout, n, s int) ([]float64, error) {
	if s < 0 || s >= layout.TotalTiles {
		return nil, fmt.Errorf("atlas: slice %d out of range [0, %d)", s, layout.TotalTiles)
	}
	if want := layout.AtlasWidth * layout.AtlasHeight * 2; len(buf) != want {
		return nil, fmt.Errorf("atlas: buffer is %d bytes, want %d", len(buf), want)
	}

	ox, oy := layout.TileOrigin(s, n)
	out := make([]float64, n*n)
	for y := 0; y < n; y++ {
		row := buf[((oy+y)*layout.AtlasWidth+ox)*2:]
		for x := 0; x < n; x++ {
			out[y*n+x] = Dequantize(binary.BigEndian.Uint16(row[x*2:]))
		}
	}
	return out, nil
}

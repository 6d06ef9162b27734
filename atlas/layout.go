// Package atlas lays out the Z-slices of a cubic volume on a 2D grid and
// packs them into 16-bit buffers.
package atlas

import "math"

// Layout describes how N slices of N*N pixels tile a 2D atlas.
// TilesX*TilesY always equals the slice count, so no cell is wasted.
type Layout struct {
	TilesX      int `json:"tilesX"`
	TilesY      int `json:"tilesY"`
	AtlasWidth  int `json:"atlasWidth"`
	AtlasHeight int `json:"atlasHeight"`
	TotalTiles  int `json:"totalTiles"`
}

// ComputeLayout picks TilesY as the largest divisor of n not above
// sqrt(n), giving the most square exact-fit grid with TilesX >= TilesY.
func ComputeLayout(n int) Layout {
	tilesY := 1
	for i := int(math.Floor(math.Sqrt(float64(n)))); i >= 1; i-- {
		if n%i == 0 {
			tilesY = i
			break
		}
	}
	tilesX := n / tilesY

	return Layout{
		TilesX:      tilesX,
		TilesY:      tilesY,
		AtlasWidth:  tilesX * n,
		AtlasHeight: tilesY * n,
		TotalTiles:  tilesX * tilesY,
	}
}

// TileOrigin returns the top-left pixel of slice s. Slices fill the atlas
// left to right, then top to bottom.
func (l Layout) TileOrigin(s, n int) (x, y int) {
	return (s % l.TilesX) * n, (s / l.TilesX) * n
}

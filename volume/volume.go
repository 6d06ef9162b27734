package volume

import "github.com/chewxy/math32"

// Volume is a dense N*N*N density field with values in [0, 1].
// Voxels are stored row-major with X varying fastest:
// index = z*N*N + y*N + x. A Volume is read-only once generated.
type Volume struct {
	N    int
	Data []float32
}

// New allocates a zeroed volume of side n.
func New(n int) *Volume {
	return &Volume{
		N:    n,
		Data: make([]float32, n*n*n),
	}
}

// Index returns the flat offset of voxel (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return z*v.N*v.N + y*v.N + x
}

// At returns the density at (x, y, z).
func (v *Volume) At(x, y, z int) float32 {
	return v.Data[v.Index(x, y, z)]
}

// Slice returns the z-th XY slice. The slice aliases the volume.
func (v *Volume) Slice(z int) []float32 {
	n2 := v.N * v.N
	return v.Data[z*n2 : (z+1)*n2]
}

// SliceGray8 quantizes slice z to 8-bit gray for previews.
func (v *Volume) SliceGray8(z int) []uint8 {
	src := v.Slice(z)
	out := make([]uint8, len(src))
	for i, d := range src {
		g := math32.Floor(d*255 + 0.5)
		if g < 0 {
			g = 0
		} else if g > 255 {
			g = 255
		}
		out[i] = uint8(g)
	}
	return out
}

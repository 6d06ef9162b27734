package noise

// Decorrelation offsets for the three displacement lookups.
const (
	warpOffsetX = 5.2
	warpOffsetY = 1.3
	warpOffsetZ = 9.7
)

// Warp displaces (x, y, z) by three offset fBm lookups scaled by strength.
// A zero strength returns the point unchanged. The offset lookups are not
// periodic on the unit cube, so warped sampling only tiles approximately.
func Warp(x, y, z, strength float64, p Params) (float64, float64, float64) {
	if strength == 0 {
		return x, y, z
	}

	wx := FBM(x+warpOffsetX, y+warpOffsetX, z+warpOffsetX, p)
	wy := FBM(x+warpOffsetY, y+warpOffsetY, z+warpOffsetY, p)
	wz := FBM(x+warpOffsetZ, y+warpOffsetZ, z+warpOffsetZ, p)

	return x + wx*strength, y + wy*strength, z + wz*strength
}

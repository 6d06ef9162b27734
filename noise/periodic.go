package noise

import "math"

// grad3 holds the 12 edge-midpoint gradient directions of a cube.
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

func gradDot(hash int, x, y, z float64) float64 {
	g := &grad3[hash]
	return g[0]*x + g[1]*y + g[2]*z
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// pmod is the mathematical modulo; the result is always in [0, p).
func pmod(n, p int) int {
	return ((n % p) + p) % p
}

// hash maps a wrapped lattice corner to a gradient index. Every indirection
// is masked to 0..255 so the lookup stays in bounds for any period.
func (p *Perm) hash(x, y, z int) int {
	return int(p[(int(p[(int(p[x&255])+y)&255])+z)&255]) % 12
}

// Periodic evaluates 3D gradient noise that repeats with the integer
// periods px, py and pz along each axis. Periods below 1 are treated as 1.
// The result is approximately in [-1, 1].
func Periodic(x, y, z float64, px, py, pz int, perm *Perm) float64 {
	px, py, pz = max(px, 1), max(py, 1), max(pz, 1)

	fx := math.Floor(x)
	fy := math.Floor(y)
	fz := math.Floor(z)

	xf := x - fx
	yf := y - fy
	zf := z - fz

	// Wrap lattice cells to the period
	xi0 := pmod(int(fx), px)
	yi0 := pmod(int(fy), py)
	zi0 := pmod(int(fz), pz)
	xi1 := (xi0 + 1) % px
	yi1 := (yi0 + 1) % py
	zi1 := (zi0 + 1) % pz

	u := fade(xf)
	v := fade(yf)
	w := fade(zf)

	n000 := gradDot(perm.hash(xi0, yi0, zi0), xf, yf, zf)
	n100 := gradDot(perm.hash(xi1, yi0, zi0), xf-1, yf, zf)
	n010 := gradDot(perm.hash(xi0, yi1, zi0), xf, yf-1, zf)
	n110 := gradDot(perm.hash(xi1, yi1, zi0), xf-1, yf-1, zf)
	n001 := gradDot(perm.hash(xi0, yi0, zi1), xf, yf, zf-1)
	n101 := gradDot(perm.hash(xi1, yi0, zi1), xf-1, yf, zf-1)
	n011 := gradDot(perm.hash(xi0, yi1, zi1), xf, yf-1, zf-1)
	n111 := gradDot(perm.hash(xi1, yi1, zi1), xf-1, yf-1, zf-1)

	nx00 := lerp(n000, n100, u)
	nx10 := lerp(n010, n110, u)
	nx01 := lerp(n001, n101, u)
	nx11 := lerp(n011, n111, u)
	nxy0 := lerp(nx00, nx10, v)
	nxy1 := lerp(nx01, nx11, v)
	return lerp(nxy0, nxy1, w)
}

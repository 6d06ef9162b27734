// Package noise implements seeded, exactly periodic 3D gradient noise,
// fractal summation over it and an optional domain warp.
package noise

// Mulberry32 is a small 32-bit mix-and-multiply generator.
// The same seed yields the same sequence on every platform.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a generator seeded with seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Uint32 returns the next raw 32-bit output.
func (m *Mulberry32) Uint32() uint32 {
	m.state += 0x6D2B79F5
	s := m.state
	t := (s ^ s>>15) * (1 | s)
	t = (t + (t^t>>7)*(61|t)) ^ t
	return t ^ t>>14
}

// Float64 returns the next value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / 4294967296
}

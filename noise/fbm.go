package noise

import "math"

// minAmplitude is the smallest cumulative amplitude fBm divides by.
// Below it the sum is returned unnormalized.
const minAmplitude = 1e-12

// Params holds the fractal noise settings. It is never mutated after
// construction and may be shared between goroutines.
type Params struct {
	Frequency  float64 // base frequency in cycles per unit cube
	Octaves    int
	Lacunarity float64 // frequency multiplier per octave
	Gain       float64 // amplitude multiplier per octave
	Perm       *Perm
}

// NewParams builds Params for a seed. Both the volume generator and the
// tileability verifier construct their noise through this function.
func NewParams(seed uint32, frequency, octaves int, lacunarity, gain float64) Params {
	return Params{
		Frequency:  float64(frequency),
		Octaves:    octaves,
		Lacunarity: lacunarity,
		Gain:       gain,
		Perm:       NewPerm(seed),
	}
}

// OctavePeriod returns the wrap period used for an octave running at freq.
func OctavePeriod(freq float64) int {
	period := int(math.Floor(freq + 0.5))
	if period < 1 {
		period = 1
	}
	return period
}

// FBM sums Octaves periodic noise layers at the normalized point (x, y, z)
// and normalizes by the cumulative amplitude. Each octave wraps on its own
// rounded frequency, so every layer tiles on the unit cube when the
// frequencies are integral.
func FBM(x, y, z float64, p Params) float64 {
	var value, maxAmplitude float64
	amplitude := 1.0
	freq := p.Frequency

	for i := 0; i < p.Octaves; i++ {
		period := OctavePeriod(freq)
		value += amplitude * Periodic(x*freq, y*freq, z*freq, period, period, period, p.Perm)

		maxAmplitude += amplitude
		amplitude *= p.Gain
		freq *= p.Lacunarity
	}

	if math.Abs(maxAmplitude) < minAmplitude {
		return value
	}
	return value / maxAmplitude
}

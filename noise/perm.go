package noise

// PermSize is the length of the doubled permutation table.
const PermSize = 512

// Perm is a shuffled 0..255 permutation mirrored into 512 entries.
// It is immutable once built.
type Perm [PermSize]uint16

// NewPerm builds the permutation table for seed using a Fisher-Yates
// shuffle driven by Mulberry32.
func NewPerm(seed uint32) *Perm {
	rng := NewMulberry32(seed)

	var p [256]uint16
	for i := range p {
		p[i] = uint16(i)
	}

	// Shuffle
	for i := 255; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		p[i], p[j] = p[j], p[i]
	}

	// Duplicate
	perm := &Perm{}
	for i := range perm {
		perm[i] = p[i&255]
	}
	return perm
}

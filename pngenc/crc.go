package pngenc

// crcTable is the reflected CRC-32 table for polynomial 0xEDB88320, the
// checksum PNG chunks and zlib share.
var crcTable = func() (t [256]uint32) {
	for n := range t {
		c := uint32(n)
		for k := 0; k < 8; k++ {
			if c&1 != 0 {
				c = 0xEDB88320 ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[n] = c
	}
	return t
}()

// updateCRC continues a running CRC (pre- and post-conditioned) over b.
func updateCRC(crc uint32, b []byte) uint32 {
	c := ^crc
	for _, v := range b {
		c = crcTable[byte(c)^v] ^ (c >> 8)
	}
	return ^c
}

// CRC32 returns the PNG chunk checksum of b.
func CRC32(b []byte) uint32 {
	return updateCRC(0, b)
}

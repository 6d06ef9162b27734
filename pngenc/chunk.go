package pngenc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Chunk is one decoded PNG chunk.
type Chunk struct {
	Type string
	Data []byte
	CRC  uint32
}

// Chunks splits a PNG file into its chunks, checking the signature and
// every CRC. Data slices alias b.
func Chunks(b []byte) ([]Chunk, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		return nil, errors.New("pngenc: missing PNG signature")
	}
	b = b[len(Signature):]

	var chunks []Chunk
	for len(b) > 0 {
		if len(b) < 12 {
			return nil, fmt.Errorf("pngenc: truncated chunk header (%d bytes)", len(b))
		}
		n := int(binary.BigEndian.Uint32(b[0:4]))
		if len(b) < 12+n {
			return nil, fmt.Errorf("pngenc: truncated chunk: want %d bytes, got %d", 12+n, len(b))
		}

		c := Chunk{
			Type: string(b[4:8]),
			Data: b[8 : 8+n],
			CRC:  binary.BigEndian.Uint32(b[8+n : 12+n]),
		}
		if want := CRC32(b[4 : 8+n]); c.CRC != want {
			return nil, fmt.Errorf("pngenc: %s chunk CRC %08x, want %08x", c.Type, c.CRC, want)
		}

		chunks = append(chunks, c)
		b = b[12+n:]
	}
	return chunks, nil
}

// Package pngenc writes single-channel 16-bit grayscale PNG files from a
// big-endian sample buffer without going through image/png.
package pngenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Signature is the fixed 8-byte PNG file signature.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

const (
	bitDepth     = 16
	colorGray    = 0
	bytesPerPix  = 2
	filterNone   = 0
	ihdrDataSize = 13
)

// ErrCompress marks failures from the Compressor.
var ErrCompress = errors.New("pngenc: compression failed")

// Encode writes a PNG of the given size to w. pix holds width*height
// big-endian 16-bit samples, row by row. A nil compressor uses
// DefaultCompressor.
func Encode(w io.Writer, pix []byte, width, height int, c Compressor) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("pngenc: invalid size %dx%d", width, height)
	}
	if want := width * height * bytesPerPix; len(pix) != want {
		return fmt.Errorf("pngenc: pixel buffer is %d bytes, want %d", len(pix), want)
	}
	if c == nil {
		c = DefaultCompressor
	}

	idat, err := c.Compress(Scanlines(pix, width, height))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompress, err)
	}

	if _, err := w.Write(Signature[:]); err != nil {
		return err
	}
	if err := writeChunk(w, "IHDR", ihdr(width, height)); err != nil {
		return err
	}
	if err := writeChunk(w, "IDAT", idat); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

// Scanlines frames every row with a leading filter byte of 0.
func Scanlines(pix []byte, width, height int) []byte {
	stride := width * bytesPerPix
	raw := make([]byte, height*(1+stride))
	for y := 0; y < height; y++ {
		line := raw[y*(1+stride):]
		line[0] = filterNone
		copy(line[1:1+stride], pix[y*stride:(y+1)*stride])
	}
	return raw
}

func ihdr(width, height int) []byte {
	b := make([]byte, ihdrDataSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(width))
	binary.BigEndian.PutUint32(b[4:8], uint32(height))
	b[8] = bitDepth
	b[9] = colorGray
	b[10] = 0 // compression
	b[11] = 0 // filter
	b[12] = 0 // interlace
	return b
}

// writeChunk emits length, type, data and the CRC over type+data.
func writeChunk(w io.Writer, typ string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(data)))
	copy(header[4:8], typ)

	crc := updateCRC(0, header[4:8])
	crc = updateCRC(crc, data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing %s: %w", typ, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", typ, err)
	}
	if _, err := w.Write(footer[:]); err != nil {
		return fmt.Errorf("writing %s: %w", typ, err)
	}
	return nil
}

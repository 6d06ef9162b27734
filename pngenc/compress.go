package pngenc

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Compressor turns the raw scanline stream into a zlib stream.
type Compressor interface {
	Compress(raw []byte) ([]byte, error)
}

// CompressorFunc adapts a function to Compressor.
type CompressorFunc func(raw []byte) ([]byte, error)

// Compress implements Compressor.
func (f CompressorFunc) Compress(raw []byte) ([]byte, error) {
	return f(raw)
}

// Zlib compresses with klauspost/compress at a zlib level.
type Zlib struct {
	Level int
}

// DefaultCompressor is zlib at its default level.
var DefaultCompressor = Zlib{Level: zlib.DefaultCompression}

// Compress implements Compressor.
func (z Zlib) Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, z.Level)
	if err != nil {
		return nil, fmt.Errorf("creating zlib writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("writing zlib stream: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing zlib stream: %w", err)
	}
	return buf.Bytes(), nil
}

package render

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Algorithm represents an artifact compression algorithm.
type Algorithm string

const (
	// AlgorithmZSTD is Zstandard: the default for stored artifacts.
	AlgorithmZSTD Algorithm = "zstd"

	// AlgorithmGzip is gzip, for consumers that can't read zstd.
	AlgorithmGzip Algorithm = "gzip"

	// AlgorithmNone disables compression.
	AlgorithmNone Algorithm = "none"
)

// Compressor compresses rendered artifacts before they are stored.
type Compressor struct {
	algorithm Algorithm
	level     int
}

// NewCompressor creates a compressor. Level follows the zstd/gzip
// scale; 3 is a sensible default for both.
func NewCompressor(algorithm Algorithm, level int) *Compressor {
	if level <= 0 {
		level = 3
	}
	return &Compressor{algorithm: algorithm, level: level}
}

// Algorithm returns the configured algorithm.
func (c *Compressor) Algorithm() Algorithm {
	return c.algorithm
}

// Compress compresses the input data.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level)))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil

	case AlgorithmGzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, c.level)
		if err != nil {
			return nil, fmt.Errorf("create gzip writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil

	case AlgorithmNone:
		return data, nil

	default:
		return nil, fmt.Errorf("unknown compression algorithm %q", c.algorithm)
	}
}

// Decompress reverses Compress for the given encoding. Used by the
// download path to materialize artifacts on disk.
func Decompress(encoding string, data []byte) ([]byte, error) {
	switch Algorithm(encoding) {
	case AlgorithmZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)

	case AlgorithmGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)

	case AlgorithmNone, Algorithm(""):
		return data, nil

	default:
		return nil, fmt.Errorf("unknown artifact encoding %q", encoding)
	}
}

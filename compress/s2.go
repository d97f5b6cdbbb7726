package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor is an S2 block codec. S2 blocks record their decoded length,
// so decoding allocates exactly once.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 block codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress encodes data as one S2 block. Empty input yields nil.
func (S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(make([]byte, s2.MaxEncodedLen(len(data))), data), nil
}

// Decompress decodes one S2 block.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	return c.DecompressTo(nil, data)
}

// DecompressTo decodes one S2 block after dst.
func (S2Compressor) DecompressTo(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}
	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 block header: %w", err)
	}

	out := grow(dst, n)
	if _, err := s2.Decode(out[len(dst):], data); err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}

// grow extends dst by n bytes, reallocating only when its capacity is short.
func grow(dst []byte, n int) []byte {
	if cap(dst)-len(dst) >= n {
		return dst[:len(dst)+n]
	}
	out := make([]byte, len(dst)+n)
	copy(out, dst)

	return out
}

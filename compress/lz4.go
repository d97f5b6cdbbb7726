package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxLZ4BlockSize caps the buffer Decompress grows to when the caller does not
// know the decoded size. It matches the default frame payload limit.
const maxLZ4BlockSize = 64 << 20

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor is an LZ4 block codec. Blocks do not record their decoded
// size: DecompressTo relies on the capacity of dst, and Decompress doubles a
// guess until the block fits.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 block codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress encodes data as one LZ4 block. Empty input yields nil.
func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// Decompress decodes one LZ4 block of unknown size.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for size := len(data) * 4; ; size *= 2 {
		size = min(size, maxLZ4BlockSize)
		out, err := c.DecompressTo(make([]byte, 0, size), data)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || size == maxLZ4BlockSize {
			return nil, err
		}
	}
}

// DecompressTo decodes one LZ4 block into the spare capacity of dst.
func (LZ4Compressor) DecompressTo(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	n, err := lz4.UncompressBlock(data, dst[len(dst):cap(dst)])
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return dst[:len(dst)+n], nil
}

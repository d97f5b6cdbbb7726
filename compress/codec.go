package compress

import (
	"fmt"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

// Compressor compresses a complete serialized payload.
//
// The returned slice is owned by the caller and the input is not modified,
// except for the no-op compressor which returns its input.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor. It returns an error when data is corrupted
// or was produced by a different algorithm.
//
// DecompressTo appends the decompressed bytes to dst. Frames know the raw size
// of their payload, so they pass a dst with that capacity and the codecs decode
// without growing it.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
	DecompressTo(dst, data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes the effect of compressing one payload.
type CompressionStats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// CompressionRatio returns compressed size / original size, or 0 for an empty payload.
// Values below 1.0 mean the payload shrank.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec returns a new Codec for compressionType. target names the caller's
// use of the codec in the error message.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%s compression %d: %w", target, compressionType, errs.ErrInvalidCompression)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("compression type %d: %w", compressionType, errs.ErrInvalidCompression)
}

// Compress compresses data with the built-in codec of compressionType and reports its stats.
func Compress(compressionType format.CompressionType, data []byte) ([]byte, CompressionStats, error) {
	stats := CompressionStats{Algorithm: compressionType, OriginalSize: int64(len(data))}
	c, err := GetCodec(compressionType)
	if err != nil {
		return nil, stats, err
	}
	out, err := c.Compress(data)
	if err != nil {
		return nil, stats, fmt.Errorf("%s compress: %w", compressionType, err)
	}
	stats.CompressedSize = int64(len(out))

	return out, stats, nil
}

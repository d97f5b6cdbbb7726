package frame

import (
	"fmt"

	"github.com/arloliu/graft/endian"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

const (
	HeaderSize = 20 // fixed header size in bytes
	Version    = 1  // current frame layout version

	magic0 = 'G'
	magic1 = 'F'
)

// Header describes one frame.
type Header struct {
	Version     uint8
	Compression format.CompressionType
	// RawSize is the payload length before compression.
	RawSize uint32
	// DataSize is the number of stored bytes following the header.
	DataSize uint32
	// Checksum is the xxHash64 of the stored bytes.
	Checksum uint64
}

// ParseHeader reads the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, fmt.Errorf("frame header needs %d bytes, got %d: %w", HeaderSize, len(data), errs.ErrInvalidFrame)
	}
	if data[0] != magic0 || data[1] != magic1 {
		return h, fmt.Errorf("bad frame magic %#x %#x: %w", data[0], data[1], errs.ErrInvalidFrame)
	}

	engine := endian.Frame()
	h.Version = data[2]
	h.Compression = format.CompressionType(data[3])
	h.RawSize = engine.Uint32(data[4:8])
	h.DataSize = engine.Uint32(data[8:12])
	h.Checksum = engine.Uint64(data[12:20])

	if err := h.Validate(); err != nil {
		return h, err
	}

	return h, nil
}

// Validate checks the version and compression fields.
func (h Header) Validate() error {
	if h.Version != Version {
		return fmt.Errorf("frame version %d: %w", h.Version, errs.ErrInvalidFrame)
	}
	switch h.Compression {
	case format.CompressionNone:
		if h.RawSize != h.DataSize {
			return fmt.Errorf("uncompressed frame sizes %d and %d differ: %w", h.RawSize, h.DataSize, errs.ErrInvalidFrame)
		}
	case format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("frame compression %d: %w", h.Compression, errs.ErrInvalidCompression)
	}

	return nil
}

// AppendTo appends the encoded header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	engine := endian.Frame()
	dst = append(dst, magic0, magic1, h.Version, byte(h.Compression))
	dst = engine.AppendUint32(dst, h.RawSize)
	dst = engine.AppendUint32(dst, h.DataSize)

	return engine.AppendUint64(dst, h.Checksum)
}

// Bytes returns the encoded header.
func (h Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// IsFrame reports whether data starts with a frame magic.
func IsFrame(data []byte) bool {
	return len(data) >= 2 && data[0] == magic0 && data[1] == magic1
}

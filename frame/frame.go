package frame

import (
	"fmt"
	"math"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/compress"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/internal/hash"
	"github.com/arloliu/graft/internal/options"
)

// DefaultMaxPayloadSize bounds the raw size a Decoder accepts.
const DefaultMaxPayloadSize = 64 << 20

// Encoder builds frames with a fixed compression type.
type Encoder struct {
	compression format.CompressionType
	codec       compress.Codec
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*Encoder]

// WithCompression selects the payload compression. The default is format.CompressionNone.
func WithCompression(ct format.CompressionType) EncoderOption {
	return options.New(func(e *Encoder) error {
		c, err := compress.GetCodec(ct)
		if err != nil {
			return err
		}
		e.compression = ct
		e.codec = c

		return nil
	})
}

// NewEncoder creates an Encoder.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{compression: format.CompressionNone, codec: compress.NewNoOpCompressor()}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Compression returns the compression type of frames built by e.
func (e *Encoder) Compression() format.CompressionType {
	return e.compression
}

// Append appends a frame holding payload to dst.
func (e *Encoder) Append(dst, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("payload of %d bytes does not fit a frame: %w", len(payload), errs.ErrInvalidFrame)
	}

	stored, err := e.codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress frame payload: %w", err)
	}
	h := Header{
		Version:     Version,
		Compression: e.compression,
		RawSize:     uint32(len(payload)), //nolint:gosec
		DataSize:    uint32(len(stored)),  //nolint:gosec
		Checksum:    hash.Checksum(stored),
	}
	dst = h.AppendTo(dst)

	return append(dst, stored...), nil
}

// Encode returns a frame holding payload.
func (e *Encoder) Encode(payload []byte) ([]byte, error) {
	return e.Append(nil, payload)
}

// EncodeSequence frames the committed bytes of a writer. Uncompressed frames are
// checksummed segment by segment without joining them first.
func (e *Encoder) EncodeSequence(seq buffers.Sequence) ([]byte, error) {
	if e.compression != format.CompressionNone {
		return e.Encode(seq.Bytes())
	}
	if uint64(seq.Len()) > math.MaxUint32 {
		return nil, fmt.Errorf("payload of %d bytes does not fit a frame: %w", seq.Len(), errs.ErrInvalidFrame)
	}

	digest := hash.NewDigest()
	for _, seg := range seq.Segments() {
		digest.Write(seg)
	}
	h := Header{
		Version:     Version,
		Compression: format.CompressionNone,
		RawSize:     uint32(seq.Len()), //nolint:gosec
		DataSize:    uint32(seq.Len()), //nolint:gosec
		Checksum:    digest.Sum64(),
	}

	out := h.AppendTo(make([]byte, 0, HeaderSize+seq.Len()))
	for _, seg := range seq.Segments() {
		out = append(out, seg...)
	}

	return out, nil
}

// Decoder verifies and unpacks frames.
type Decoder struct {
	maxPayloadSize int
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*Decoder]

// WithMaxPayloadSize bounds the raw payload size accepted by the Decoder.
func WithMaxPayloadSize(n int) DecoderOption {
	return options.New(func(d *Decoder) error {
		if n < 1 {
			return fmt.Errorf("max payload size %d: %w", n, errs.ErrInvalidConfig)
		}
		d.maxPayloadSize = n

		return nil
	})
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	d := &Decoder{maxPayloadSize: DefaultMaxPayloadSize}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// Next unpacks the first frame of data and returns its payload and the bytes
// after it.
func (d *Decoder) Next(data []byte) (payload []byte, h Header, rest []byte, err error) {
	h, err = ParseHeader(data)
	if err != nil {
		return nil, h, nil, err
	}
	if int64(h.RawSize) > int64(d.maxPayloadSize) {
		return nil, h, nil, fmt.Errorf("frame payload of %d bytes exceeds %d: %w", h.RawSize, d.maxPayloadSize, errs.ErrInvalidFrame)
	}
	end := HeaderSize + int(h.DataSize)
	if len(data) < end {
		return nil, h, nil, fmt.Errorf("frame needs %d bytes, got %d: %w", end, len(data), errs.ErrUnexpectedEndOfData)
	}

	stored := data[HeaderSize:end]
	if sum := hash.Checksum(stored); sum != h.Checksum {
		return nil, h, nil, fmt.Errorf("checksum %#x, header says %#x: %w", sum, h.Checksum, errs.ErrChecksumMismatch)
	}

	c, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, h, nil, err
	}
	payload, err = c.DecompressTo(make([]byte, 0, h.RawSize), stored)
	if err != nil {
		return nil, h, nil, fmt.Errorf("decompress frame payload: %w", err)
	}
	if len(payload) != int(h.RawSize) {
		return nil, h, nil, fmt.Errorf("frame payload of %d bytes, header says %d: %w", len(payload), h.RawSize, errs.ErrInvalidFrame)
	}

	return payload, h, data[end:], nil
}

// Decode unpacks data holding exactly one frame.
func (d *Decoder) Decode(data []byte) ([]byte, Header, error) {
	payload, h, rest, err := d.Next(data)
	if err != nil {
		return nil, h, err
	}
	if len(rest) != 0 {
		return nil, h, fmt.Errorf("%d bytes after frame: %w", len(rest), errs.ErrInvalidFrame)
	}

	return payload, h, nil
}

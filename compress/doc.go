// Package compress provides the payload compressors of a graft frame.
//
// A frame carries the committed bytes of a serializer either verbatim or
// compressed with one of the algorithms below. The algorithm is recorded in the
// frame header as a format.CompressionType, so a reader selects the matching
// Codec with GetCodec.
//
//   - None: bytes are passed through unchanged.
//   - Zstd: best ratio, suited to archived or large payloads.
//   - S2: balanced speed and ratio.
//   - LZ4: fastest decompression.
//
// All codecs are stateless values safe for concurrent use. Zstd and LZ4 keep
// their encoder and decoder state in sync.Pools.
//
// Example:
//
//	c, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	packed, err := c.Compress(payload)
package compress

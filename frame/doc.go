// Package frame wraps a serialized payload in a self-checking envelope.
//
// A frame is a fixed 20-byte header followed by the stored payload:
//
//	offset  size  field
//	0       2     magic "GF"
//	2       1     version (1)
//	3       1     compression (format.CompressionType)
//	4       4     raw size, the payload length before compression
//	8       4     data size, the stored length after compression
//	12      8     xxHash64 of the stored bytes
//
// Fixed-width fields use the endian.Frame() byte order. Frames may be
// concatenated; Next walks such a stream one frame at a time.
package frame

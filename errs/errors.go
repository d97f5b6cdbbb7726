// Package errs holds the sentinel errors returned by graft packages.
//
// Errors are wrapped with context using fmt.Errorf and the %w verb, so callers
// should match them with errors.Is.
package errs

import "errors"

var (
	// ErrMalformedInput indicates bytes that violate the wire format: an unknown wire type,
	// an over-long varint, an unknown reference or type ID, or a header in the wrong place.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnexpectedEndOfData indicates a read past the end of the input sequence.
	ErrUnexpectedEndOfData = errors.New("unexpected end of data")
	// ErrUnsupportedType indicates that no codec or copier can be resolved for a type.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrMaxDepthExceeded indicates an object graph nested deeper than the session allows.
	ErrMaxDepthExceeded = errors.New("maximum depth exceeded")
	// ErrInvalidSegmentSize indicates a non-positive segment size option.
	ErrInvalidSegmentSize = errors.New("invalid segment size")
	// ErrTypeNameConflict indicates two different types registered under one wire name.
	ErrTypeNameConflict = errors.New("type name conflict")
	// ErrUnknownComparer indicates a comparer that is not registered for key comparison.
	ErrUnknownComparer = errors.New("unknown comparer")

	// ErrInvalidFrame indicates a frame with a bad magic number, version or layout.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrChecksumMismatch indicates a frame whose payload does not match its checksum.
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
	// ErrInvalidCompression indicates an unknown compression type.
	ErrInvalidCompression = errors.New("invalid compression type")
	// ErrInvalidConfig indicates a configuration value outside its allowed range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

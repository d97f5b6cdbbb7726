// Package hash provides the 64-bit hashes used for type-name lookup and frame checksums.
package hash

import "github.com/cespare/xxhash/v2"

// TypeKey returns the lookup key of a wire type name.
func TypeKey(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Checksum returns the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest accumulates a checksum over data written in pieces.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty Digest.
func NewDigest() Digest {
	return Digest{d: xxhash.New()}
}

// Write adds p to the running checksum.
func (d Digest) Write(p []byte) {
	_, _ = d.d.Write(p)
}

// Sum64 returns the checksum of everything written so far.
func (d Digest) Sum64() uint64 {
	return d.d.Sum64()
}

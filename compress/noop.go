package compress

// NoOpCompressor stores payloads as they are.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself. The result shares memory with the input.
func (NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. The result shares memory with the input.
func (NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressTo returns data itself when dst is empty and copies it after dst otherwise.
func (NoOpCompressor) DecompressTo(dst, data []byte) ([]byte, error) {
	if len(dst) == 0 {
		return data, nil
	}

	return append(dst, data...), nil
}

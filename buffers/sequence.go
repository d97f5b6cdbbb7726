package buffers

// Sequence is an ordered, read-only list of byte segments.
type Sequence struct {
	segments [][]byte
	n        int
}

// NewSequence creates a Sequence over segments. Empty segments are dropped.
func NewSequence(segments ...[]byte) Sequence {
	seq := Sequence{segments: make([][]byte, 0, len(segments))}
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		seq.segments = append(seq.segments, seg)
		seq.n += len(seg)
	}

	return seq
}

// Len returns the total number of bytes.
func (s Sequence) Len() int {
	return s.n
}

// Segments returns the segments of the sequence.
func (s Sequence) Segments() [][]byte {
	return s.segments
}

// Bytes returns a contiguous copy of the sequence.
func (s Sequence) Bytes() []byte {
	out := make([]byte, 0, s.n)
	for _, seg := range s.segments {
		out = append(out, seg...)
	}

	return out
}

// Resegment returns a view of the same bytes split into segments of at most maxSize bytes.
// A non-positive maxSize returns s unchanged.
func (s Sequence) Resegment(maxSize int) Sequence {
	if maxSize <= 0 {
		return s
	}

	out := Sequence{segments: make([][]byte, 0, s.n/maxSize+len(s.segments)), n: s.n}
	for _, seg := range s.segments {
		for len(seg) > maxSize {
			out.segments = append(out.segments, seg[:maxSize:maxSize])
			seg = seg[maxSize:]
		}
		if len(seg) > 0 {
			out.segments = append(out.segments, seg)
		}
	}

	return out
}

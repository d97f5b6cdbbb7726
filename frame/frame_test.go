package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
)

var compressions = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func newDecoder(t *testing.T, opts ...DecoderOption) *Decoder {
	t.Helper()

	d, err := NewDecoder(opts...)
	require.NoError(t, err)

	return d
}

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{
		Version:     Version,
		Compression: format.CompressionS2,
		RawSize:     1000,
		DataSize:    321,
		Checksum:    0x0123456789abcdef,
	}
	b := h.Bytes()
	require.Len(t, b, HeaderSize)
	require.Equal(t, []byte("GF"), b[:2])
	require.True(t, IsFrame(b))

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestParseHeader_Invalid(t *testing.T) {
	valid := Header{Version: Version, Compression: format.CompressionNone, RawSize: 4, DataSize: 4}.Bytes()

	tests := []struct {
		name   string
		mutate func(b []byte) []byte
		err    error
	}{
		{"short", func(b []byte) []byte { return b[:HeaderSize-1] }, errs.ErrInvalidFrame},
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, errs.ErrInvalidFrame},
		{"version", func(b []byte) []byte { b[2] = 2; return b }, errs.ErrInvalidFrame},
		{"compression", func(b []byte) []byte { b[3] = 9; return b }, errs.ErrInvalidCompression},
		{"sizes", func(b []byte) []byte { b[4] = 5; return b }, errs.ErrInvalidFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mutate(bytes.Clone(valid))
			_, err := ParseHeader(b)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEncoder_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":      {},
		"small":      {0x20, 0x01, 0xE0},
		"repetitive": bytes.Repeat([]byte("graft payload "), 4096),
	}
	dec := newDecoder(t)

	for _, ct := range compressions {
		enc, err := NewEncoder(WithCompression(ct))
		require.NoError(t, err)
		require.Equal(t, ct, enc.Compression())

		for name, payload := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				framed, err := enc.Encode(payload)
				require.NoError(t, err)

				got, h, err := dec.Decode(framed)
				require.NoError(t, err)
				require.Equal(t, ct, h.Compression)
				require.Equal(t, uint32(len(payload)), h.RawSize)
				require.Equal(t, len(payload), len(got))
				if len(payload) > 0 {
					require.Equal(t, payload, got)
				}
			})
		}
	}
}

func TestEncoder_InvalidCompression(t *testing.T) {
	_, err := NewEncoder(WithCompression(format.CompressionType(0)))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestEncoder_Sequence(t *testing.T) {
	sess, err := session.New()
	require.NoError(t, err)
	w, err := buffers.NewWriter(sess, buffers.WithMaxSegmentSize(8))
	require.NoError(t, err)
	for i := range 100 {
		w.WriteVarUint64(uint64(i) * 1000)
	}
	w.Commit()
	seq := w.Sequence()
	require.Greater(t, len(seq.Segments()), 1)

	plain, err := NewEncoder()
	require.NoError(t, err)
	fromSeq, err := plain.EncodeSequence(seq)
	require.NoError(t, err)
	fromBytes, err := plain.Encode(seq.Bytes())
	require.NoError(t, err)
	require.Equal(t, fromBytes, fromSeq)

	packed, err := NewEncoder(WithCompression(format.CompressionLZ4))
	require.NoError(t, err)
	framed, err := packed.EncodeSequence(seq)
	require.NoError(t, err)
	got, _, err := newDecoder(t).Decode(framed)
	require.NoError(t, err)
	require.Equal(t, seq.Bytes(), got)
}

func TestDecoder_Corruption(t *testing.T) {
	enc, err := NewEncoder(WithCompression(format.CompressionS2))
	require.NoError(t, err)
	framed, err := enc.Encode(bytes.Repeat([]byte{1, 2, 3}, 100))
	require.NoError(t, err)
	dec := newDecoder(t)

	flipped := bytes.Clone(framed)
	flipped[HeaderSize+3] ^= 0xff
	_, _, err = dec.Decode(flipped)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)

	_, _, err = dec.Decode(framed[:len(framed)-1])
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)

	_, _, err = dec.Decode(append(bytes.Clone(framed), 0))
	require.ErrorIs(t, err, errs.ErrInvalidFrame)

	small := newDecoder(t, WithMaxPayloadSize(10))
	_, _, err = small.Decode(framed)
	require.ErrorIs(t, err, errs.ErrInvalidFrame)

	_, err = NewDecoder(WithMaxPayloadSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestDecoder_Next(t *testing.T) {
	var stream []byte
	for i, ct := range compressions {
		enc, err := NewEncoder(WithCompression(ct))
		require.NoError(t, err)
		stream, err = enc.Append(stream, bytes.Repeat([]byte{byte(i)}, 50+i))
		require.NoError(t, err)
	}

	dec := newDecoder(t)
	rest := stream
	for i, ct := range compressions {
		payload, h, next, err := dec.Next(rest)
		require.NoError(t, err)
		require.Equal(t, ct, h.Compression)
		require.Equal(t, bytes.Repeat([]byte{byte(i)}, 50+i), payload)
		rest = next
	}
	require.Empty(t, rest)
}

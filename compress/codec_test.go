package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// fieldStream imitates a serialized payload: repeated tag bytes, varints and strings.
func fieldStream(records int) []byte {
	var buf bytes.Buffer
	for i := range records {
		buf.WriteByte(0x20)
		buf.WriteByte(0x40)
		buf.WriteByte(byte(i & 0x7f))
		buf.WriteByte(0x41)
		name := fmt.Sprintf("customer-%d", i)
		buf.WriteByte(byte(len(name)))
		buf.WriteString(name)
		buf.WriteByte(0xE0)
	}

	return buf.Bytes()
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			c, err := CreateCodec(ct, "payload")
			require.NoError(t, err)
			require.NotNil(t, c)

			shared, err := GetCodec(ct)
			require.NoError(t, err)
			require.IsType(t, c, shared)
		})
	}

	_, err := CreateCodec(format.CompressionType(99), "payload")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	require.Contains(t, err.Error(), "payload")

	_, err = GetCodec(0)
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name    string
		stats   CompressionStats
		ratio   float64
		savings float64
	}{
		{"half", CompressionStats{OriginalSize: 1000, CompressedSize: 500}, 0.5, 50},
		{"none", CompressionStats{OriginalSize: 100, CompressedSize: 100}, 1, 0},
		{"expanded", CompressionStats{OriginalSize: 100, CompressedSize: 125}, 1.25, -25},
		{"empty", CompressionStats{}, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.ratio, tt.stats.CompressionRatio(), 1e-9)
			require.InDelta(t, tt.savings, tt.stats.SpaceSavings(), 1e-9)
		})
	}
}

func TestCompress_Stats(t *testing.T) {
	data := fieldStream(500)

	out, stats, err := Compress(format.CompressionZstd, data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, stats.Algorithm)
	require.Equal(t, int64(len(data)), stats.OriginalSize)
	require.Equal(t, int64(len(out)), stats.CompressedSize)
	require.Less(t, stats.CompressionRatio(), 1.0)

	_, _, err = Compress(format.CompressionType(42), data)
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestNoOpCompressor_SharesInput(t *testing.T) {
	c := NewNoOpCompressor()
	data := []byte("graft")

	out, err := c.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])

	back, err := c.Decompress(out)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)
			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"single_byte", []byte{0x42}},
		{"end_markers", bytes.Repeat([]byte{0xE0}, 64)},
		{"small_stream", fieldStream(3)},
		{"large_stream", fieldStream(20000)},
		{
			name: "pseudo_random",
			data: func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					data[i] = byte((i*7 + i*i) % 251)
				}

				return data
			}(),
		},
		{"zeros", make([]byte, 1<<20)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotEmpty(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random_bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text_as_compressed", []byte("this is not compressed data")},
		{"corrupted_header", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}
		t.Run(codecName, func(t *testing.T) {
			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	data := fieldStream(200)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			done := make(chan error, numGoroutines)
			for range numGoroutines {
				go func() {
					compressed, err := codec.Compress(data)
					if err != nil {
						done <- err
						return
					}
					out, err := codec.Decompress(compressed)
					if err != nil {
						done <- err
						return
					}
					if !bytes.Equal(data, out) {
						done <- fmt.Errorf("%s: round trip mismatch", codecName)
						return
					}
					done <- nil
				}()
			}
			for range numGoroutines {
				require.NoError(t, <-done)
			}
		})
	}
}

func BenchmarkAllCodecs_RoundTrip(b *testing.B) {
	data := fieldStream(2000)

	for name, codec := range getAllCodecs() {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				compressed, err := codec.Compress(data)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := codec.Decompress(compressed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestAllCodecs_DecompressTo(t *testing.T) {
	data := fieldStream(200)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			out, err := codec.DecompressTo(make([]byte, 0, len(data)), compressed)
			require.NoError(t, err)
			require.Equal(t, data, out)

			dst := make([]byte, 2, 2+len(data))
			copy(dst, "GF")
			out, err = codec.DecompressTo(dst, compressed)
			require.NoError(t, err)
			require.Equal(t, "GF", string(out[:2]))
			require.Equal(t, data, out[2:])
		})
	}
}

func TestLZ4Compressor_ShortDestination(t *testing.T) {
	c := NewLZ4Compressor()
	data := fieldStream(200)
	compressed, err := c.Compress(data)
	require.NoError(t, err)

	_, err = c.DecompressTo(make([]byte, 0, len(data)/2), compressed)
	require.Error(t, err)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

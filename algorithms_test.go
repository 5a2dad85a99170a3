package huffmanfs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	for _, algo := range Algorithms {
		got, err := ParseAlgorithm(string(algo))
		require.NoError(t, err)
		assert.Equal(t, algo, got)
	}

	got, err := ParseAlgorithm("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmZstd, got)

	got, err = ParseAlgorithm("auto")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmAuto, got)

	_, err = ParseAlgorithm("bzip2")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestValidateLevel(t *testing.T) {
	tests := []struct {
		algo  Algorithm
		level int
		want  error
	}{
		{AlgorithmHuffman, 0, nil},
		{AlgorithmHuffman, 99, nil},
		{AlgorithmSnappy, 5, nil},
		{AlgorithmGzip, 9, nil},
		{AlgorithmGzip, -1, nil},
		{AlgorithmGzip, 10, ErrInvalidLevel},
		{AlgorithmZstd, 22, nil},
		{AlgorithmZstd, 23, ErrInvalidLevel},
		{AlgorithmLZ4, 9, nil},
		{AlgorithmLZ4, -1, ErrInvalidLevel},
		{AlgorithmLZ4, 10, ErrInvalidLevel},
		{AlgorithmBrotli, 11, nil},
		{AlgorithmBrotli, 12, ErrInvalidLevel},
		{"rar", 0, ErrUnsupportedAlgorithm},
		{AlgorithmAuto, 0, ErrUnsupportedAlgorithm},
	}

	for _, tt := range tests {
		err := validateLevel(tt.algo, tt.level)
		if tt.want == nil {
			assert.NoError(t, err, "%s level %d", tt.algo, tt.level)
		} else {
			assert.ErrorIs(t, err, tt.want, "%s level %d", tt.algo, tt.level)
		}
	}
}

func TestCompressorRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("Compression is the process of encoding information using fewer bits. "), 30)

	cases := []struct {
		name  string
		algo  Algorithm
		level int
	}{
		{"huffman", AlgorithmHuffman, 0},
		{"gzip-default", AlgorithmGzip, 0},
		{"gzip-level9", AlgorithmGzip, 9},
		{"zstd-default", AlgorithmZstd, 0},
		{"zstd-level19", AlgorithmZstd, 19},
		{"lz4-default", AlgorithmLZ4, 0},
		{"lz4-level9", AlgorithmLZ4, 9},
		{"brotli-default", AlgorithmBrotli, 0},
		{"brotli-level11", AlgorithmBrotli, 11},
		{"snappy", AlgorithmSnappy, 0},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := createCompressor(tt.algo, &buf, tt.level)
			require.NoError(t, err)

			// Several writes, like a caller streaming into a file
			for off := 0; off < len(data); off += 500 {
				end := min(off+500, len(data))
				_, err := w.Write(data[off:end])
				require.NoError(t, err)
			}
			require.NoError(t, w.Close())
			assert.Less(t, buf.Len(), len(data))

			r, err := createDecompressor(tt.algo, &buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, data, got)
		})
	}
}

func TestCreateCompressorErrors(t *testing.T) {
	_, err := createCompressor("rar", io.Discard, 0)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = createCompressor(AlgorithmZstd, io.Discard, 30)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = createDecompressor(AlgorithmAuto, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = createDecompressor(AlgorithmGzip, bytes.NewReader([]byte("not gzip")))
	assert.Error(t, err)
}

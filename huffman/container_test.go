package huffman

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressLayout(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{
			name:  "empty",
			input: "",
			want:  []byte{'H', 'U', 'F', 0x01, 0x00, 0x00, 0x00},
		},
		{
			name:  "single symbol",
			input: "aaaa",
			want:  []byte{'H', 'U', 'F', 0x01, 0x04, 0x02, 0xb0, 0x80, 0x04, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compress([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := Decompress(got)
			require.NoError(t, err)
			assert.Equal(t, tt.input, string(back))
		})
	}
}

func TestCompressAbracadabraBitstream(t *testing.T) {
	compressed, err := Compress([]byte("abracadabra"))
	require.NoError(t, err)

	r := bytes.NewReader(compressed)
	h, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), h.Symbols)
	assert.Equal(t, uint64(23), h.Bits)
	assert.Equal(t, uint64(3), h.PackedBytes())

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x6e, 0x8a, 0xdc}, rest)
}

func TestCompressRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("x"),
		[]byte("abracadabra"),
		[]byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)),
		allBytes(),
		bytes.Repeat(allBytes(), 17),
	}

	for _, in := range inputs {
		compressed, err := Compress(in)
		require.NoError(t, err)
		out, err := Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, in, out)
	}
}

func TestCompressShrinksText(t *testing.T) {
	in := []byte(strings.Repeat("aaaaaaaabbbbccd", 1000))
	compressed, err := Compress(in)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(in)/3)
}

func TestDecompressErrors(t *testing.T) {
	good, err := Compress([]byte("abracadabra"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedStream},
		{"bad magic", []byte("GZIP...."), ErrInvalidFormat},
		{"header only magic", Magic, ErrTruncatedStream},
		{"missing last byte", good[:len(good)-1], ErrTruncatedStream},
		{"trailing pad decoded", setBits(good, 24), ErrCorruptStream},
		{"symbols without tree", []byte{'H', 'U', 'F', 0x01, 0x03, 0x00, 0x03, 0x00}, ErrCorruptStream},
		{"more symbols than bits", []byte{'H', 'U', 'F', 0x01, 0x05, 0x02, 0xb0, 0x80, 0x04, 0x00}, ErrCorruptStream},
		{"oversized tree", []byte{'H', 'U', 'F', 0x01, 0x01, 0xff, 0x0f}, ErrCorruptStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// setBits rewrites the bit count of a container produced by Compress for
// "abracadabra", whose header is 4 magic + 1 + 1 + tree + 1 bytes.
func setBits(container []byte, bits byte) []byte {
	out := bytes.Clone(container)
	treeLen := int(out[5])
	out[6+treeLen] = bits
	return out
}

func TestWriterReader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, chunk := range []string{"abra", "cad", "abra"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}
	assert.Equal(t, 11, w.Len())
	assert.Zero(t, buf.Len(), "nothing is written before Close")
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("more"))
	assert.ErrorIs(t, err, ErrClosed)

	want, err := Compress([]byte("abracadabra"))
	require.NoError(t, err)
	assert.Equal(t, want, buf.Bytes())

	r := NewReader(&buf)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abracadabra", string(out))

	require.NoError(t, r.Close())
	_, err = r.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReaderSmallReads(t *testing.T) {
	compressed, err := Compress([]byte("mississippi"))
	require.NoError(t, err)

	r := NewReader(bytes.NewReader(compressed))
	var out []byte
	p := make([]byte, 2)
	for {
		n, err := r.Read(p)
		out = append(out, p[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "mississippi", string(out))
}

func TestReaderReportsCorruption(t *testing.T) {
	_, err := io.ReadAll(NewReader(strings.NewReader("not a container")))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

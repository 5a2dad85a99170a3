package huffmanfs

import (
	"compress/gzip"
	"io"

	"github.com/absfs/huffmanfs/huffman"
	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// levelRange holds the accepted levels per algorithm; 0 always means default.
var levelRange = map[Algorithm][2]int{
	AlgorithmHuffman: {0, 0},
	AlgorithmGzip:    {gzip.HuffmanOnly, gzip.BestCompression},
	AlgorithmZstd:    {0, 22},
	AlgorithmLZ4:     {0, 9},
	AlgorithmBrotli:  {brotli.BestSpeed, brotli.BestCompression},
	AlgorithmSnappy:  {0, 0},
}

// validateLevel checks that algo can encode and that level is in its range.
// Algorithms without levels accept any value and ignore it. AlgorithmAuto
// only ever chooses a decoder, so it is rejected here.
func validateLevel(algo Algorithm, level int) error {
	r, ok := levelRange[algo]
	if !ok {
		return ErrUnsupportedAlgorithm
	}
	if r == [2]int{0, 0} || level == 0 {
		return nil
	}
	if level < r[0] || level > r[1] {
		return ErrInvalidLevel
	}
	return nil
}

// createCompressor returns an encoder writing to w. Closing it flushes the
// encoder but leaves w open.
func createCompressor(algo Algorithm, w io.Writer, level int) (io.WriteCloser, error) {
	if err := validateLevel(algo, level); err != nil {
		return nil, err
	}
	switch algo {
	case AlgorithmHuffman:
		return huffman.NewWriter(w), nil
	case AlgorithmGzip:
		return createGzipCompressor(w, level)
	case AlgorithmZstd:
		return createZstdCompressor(w, level)
	case AlgorithmLZ4:
		return createLZ4Compressor(w, level)
	case AlgorithmBrotli:
		return createBrotliCompressor(w, level)
	case AlgorithmSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// createDecompressor returns a decoder reading from r. Levels are a
// property of the encoder only.
func createDecompressor(algo Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmHuffman:
		return huffman.NewReader(r), nil
	case AlgorithmGzip:
		return gzip.NewReader(r)
	case AlgorithmZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case AlgorithmLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case AlgorithmBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case AlgorithmSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func createGzipCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	return gzip.NewWriterLevel(w, level)
}

func createZstdCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = 3
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

func createLZ4Compressor(w io.Writer, level int) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, err
	}
	return zw, nil
}

func createBrotliCompressor(w io.Writer, level int) (io.WriteCloser, error) {
	if level == 0 {
		level = brotli.DefaultCompression
	}
	return brotli.NewWriterLevel(w, level), nil
}

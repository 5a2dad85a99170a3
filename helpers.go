package huffmanfs

import (
	"bytes"
	"io"
)

// alreadyCompressed matches media and archive formats that gain nothing from
// another compression pass.
const alreadyCompressed = `\.(jpg|jpeg|png|gif|webp|mp4|mkv|avi|mov|mp3|flac|zip|gz|bz2|xz|7z|rar|zst|lz4|br|sz|huf)$`

// preset starts from DefaultConfig with the given codec and skips files
// that are already compressed.
func preset(algo Algorithm, level int, minSize int64) *Config {
	c := DefaultConfig()
	c.Algorithm = algo
	c.Level = level
	c.MinSize = minSize
	c.SkipPatterns = []string{alreadyCompressed}
	return c
}

// TextConfig keeps the Huffman coder for prose and source code, and hands
// append-heavy logs to zstd. The container header dominates below 64 bytes.
func TextConfig() *Config {
	c := preset(AlgorithmHuffman, 0, 64)
	c.AlgorithmRules = []AlgorithmRule{
		{Pattern: `\.(log|jsonl)$`, Algorithm: AlgorithmZstd, Level: 3},
	}
	return c
}

// FastestConfig uses lz4 on every file regardless of type.
func FastestConfig() *Config {
	c := DefaultConfig()
	c.Algorithm = AlgorithmLZ4
	return c
}

// BestCompressionConfig trades CPU for size with brotli at level 11. Suited
// to content that is written once and read often.
func BestCompressionConfig() *Config {
	c := preset(AlgorithmBrotli, 11, 1024)
	c.BufferSize = 128 * 1024
	return c
}

// CompatibleConfig writes plain gzip files any tool can open.
func CompatibleConfig() *Config {
	return preset(AlgorithmGzip, 6, 512)
}

// LowCPUConfig uses snappy, which has no levels.
func LowCPUConfig() *Config {
	c := preset(AlgorithmSnappy, 0, 1024)
	c.BufferSize = 32 * 1024
	return c
}

func NewWithTextConfig(base FileSystem) (*FS, error) {
	return New(base, TextConfig())
}

func NewWithFastestConfig(base FileSystem) (*FS, error) {
	return New(base, FastestConfig())
}

func NewWithBestCompression(base FileSystem) (*FS, error) {
	return New(base, BestCompressionConfig())
}

// CompressBytes encodes data in memory with algo at the given level.
func CompressBytes(data []byte, algo Algorithm, level int) ([]byte, error) {
	var out bytes.Buffer
	enc, err := createCompressor(algo, &out, level)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecompressBytes reverses CompressBytes. With AlgorithmAuto the codec is
// chosen from the magic bytes, and unrecognised data is an error.
func DecompressBytes(data []byte, algo Algorithm) ([]byte, error) {
	if algo == AlgorithmAuto {
		var ok bool
		if algo, ok = IsCompressed(data); !ok {
			return nil, ErrUnsupportedAlgorithm
		}
	}

	dec, err := createDecompressor(algo, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// DetectCompressionAlgorithm is IsCompressed under the name callers
// outside the package look for.
func DetectCompressionAlgorithm(data []byte) (Algorithm, bool) {
	return IsCompressed(data)
}

// GetCompressionRatio returns compressed/original, so 0.25 means the output
// is a quarter of the input. Zero-length input reports 0.
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage returns the share of space saved, from 0 to 100.
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return 100 * (1 - GetCompressionRatio(originalSize, compressedSize))
}

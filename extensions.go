package huffmanfs

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/absfs/huffmanfs/huffman"
)

// format describes how one codec shows up on disk. The first entry in exts
// is the one written; the rest are accepted when reading. A nil magic means
// the format has no reliable signature (brotli) and is known only by name.
type format struct {
	algo  Algorithm
	exts  []string
	magic []byte
}

// formats is ordered for magic detection.
var formats = []format{
	{AlgorithmHuffman, []string{".huf"}, huffman.Magic},
	{AlgorithmGzip, []string{".gz", ".gzip"}, []byte{0x1f, 0x8b}},
	{AlgorithmZstd, []string{".zst", ".zstd"}, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{AlgorithmLZ4, []string{".lz4"}, []byte{0x04, 0x22, 0x4d, 0x18}},
	{AlgorithmSnappy, []string{".sz", ".snappy"}, []byte("\xff\x06\x00\x00sNaPpY")},
	{AlgorithmBrotli, []string{".br"}, nil},
}

// maxMagicLen is how many leading bytes detection needs.
const maxMagicLen = 10

var (
	extensionMap        = map[Algorithm]string{}
	reverseExtensionMap = map[string]Algorithm{}
)

func init() {
	for _, f := range formats {
		extensionMap[f.algo] = f.exts[0]
		for _, ext := range f.exts {
			reverseExtensionMap[ext] = f.algo
		}
	}
}

// GetExtension returns the extension written for algo, or "" if it has none.
func GetExtension(algo Algorithm) string {
	return extensionMap[algo]
}

// DetectAlgorithmFromExtension maps a name's extension, case-insensitively,
// to the codec that writes it.
func DetectAlgorithmFromExtension(name string) (Algorithm, bool) {
	algo, ok := reverseExtensionMap[strings.ToLower(filepath.Ext(name))]
	return algo, ok
}

// DetectAlgorithm sniffs the start of r. Unknown content yields "" and no
// error; only read failures are reported.
func DetectAlgorithm(r io.Reader) (Algorithm, error) {
	head := make([]byte, maxMagicLen)
	n, err := io.ReadFull(r, head)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
	default:
		return "", err
	}
	algo, _ := IsCompressed(head[:n])
	return algo, nil
}

// AddExtension names the stored form of name. With preserveOriginal the
// codec extension is appended (notes.txt.huf), otherwise it replaces the
// last extension (notes.huf).
func AddExtension(name string, algo Algorithm, preserveOriginal bool) string {
	ext := GetExtension(algo)
	switch {
	case ext == "":
		return name
	case preserveOriginal:
		return name + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// StripExtension undoes AddExtension with preserveOriginal set, returning
// the codec the extension named.
func StripExtension(name string) (string, Algorithm, bool) {
	ext := filepath.Ext(name)
	algo, ok := reverseExtensionMap[strings.ToLower(ext)]
	if !ok {
		return name, "", false
	}
	return strings.TrimSuffix(name, ext), algo, true
}

func HasCompressionExtension(name string) bool {
	_, ok := DetectAlgorithmFromExtension(name)
	return ok
}

// IsCompressed reports the codec whose signature data starts with.
func IsCompressed(data []byte) (Algorithm, bool) {
	for _, f := range formats {
		if f.magic != nil && bytes.HasPrefix(data, f.magic) {
			return f.algo, true
		}
	}
	return "", false
}

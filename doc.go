// Package huffmanfs wraps any absfs filesystem so that file contents are
// compressed on write and decompressed on read.
//
// The default codec is the static Huffman coder in the huffman
// subpackage. Each file is stored as a self-describing container holding
// the code tree built from that file's own byte frequencies, so files are
// decoded without shared state. The library codecs gzip, zstd, lz4,
// brotli and snappy are available for data where dictionary-based
// compression does better.
//
// # Quick Start
//
//	base := huffmanfs.NewMemFS()
//
//	cfs, _ := huffmanfs.New(base, huffmanfs.DefaultConfig())
//
//	// Stored as notes.txt.huf
//	f, _ := cfs.Create("notes.txt")
//	f.Write([]byte("she sells sea shells"))
//	f.Close()
//
//	// Decoded transparently
//	f, _ = cfs.Open("notes.txt")
//	data, _ := io.ReadAll(f)
//	f.Close()
//
// # Writes
//
// Writes are buffered in memory. Close compresses the whole buffer,
// because a Huffman code needs the frequencies of the complete input,
// and only then writes to the base file. A failed compression removes
// the stored file and is reported by Close.
//
// # Algorithm Selection
//
//   - Config.Algorithm applies to every file.
//   - Config.AlgorithmRules override it per file name, first match wins.
//   - SkipPatterns store matching files raw.
//   - Files smaller than MinSize are stored raw under their own name.
//
// Reads identify the codec by extension and by magic bytes, so files
// written with one configuration stay readable under another.
package huffmanfs

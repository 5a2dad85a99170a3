package huffmanfs

import (
	"errors"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/absfs/absfs"
	"go.uber.org/zap"
)

// Algorithm names a codec.
type Algorithm string

const (
	AlgorithmHuffman Algorithm = "huffman"
	AlgorithmGzip    Algorithm = "gzip"
	AlgorithmZstd    Algorithm = "zstd"
	AlgorithmLZ4     Algorithm = "lz4"
	AlgorithmBrotli  Algorithm = "brotli"
	AlgorithmSnappy  Algorithm = "snappy"
	AlgorithmAuto    Algorithm = "auto"
)

// Algorithms lists every concrete algorithm, in lookup order.
var Algorithms = []Algorithm{
	AlgorithmHuffman,
	AlgorithmGzip,
	AlgorithmZstd,
	AlgorithmLZ4,
	AlgorithmBrotli,
	AlgorithmSnappy,
}

// ParseAlgorithm converts a name such as "zstd" to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	algo := Algorithm(strings.ToLower(name))
	if algo == AlgorithmAuto {
		return algo, nil
	}
	for _, a := range Algorithms {
		if a == algo {
			return a, nil
		}
	}
	return "", ErrUnsupportedAlgorithm
}

// Config controls how an FS stores files.
type Config struct {
	// Algorithm used for files no rule matches. Empty means huffman.
	Algorithm Algorithm

	// Level is passed to the codec; 0 selects its default. Valid ranges:
	// gzip -2..9, zstd 1..22, lz4 0..9, brotli 0..11. huffman and snappy
	// have no levels and ignore it.
	Level int

	// SkipPatterns are regular expressions; matching names are stored raw.
	SkipPatterns []string

	// AlgorithmRules override Algorithm and Level per name, first match wins.
	AlgorithmRules []AlgorithmRule

	// AutoDetect sniffs magic bytes on read, so compressed content is
	// decoded even under a plain name.
	AutoDetect bool

	// PreserveExtension stores a.txt as a.txt.huf rather than a.huf.
	PreserveExtension bool

	// StripExtension lets callers open a.txt when a.txt.huf is stored.
	StripExtension bool

	// BufferSize is the chunk size for writing compressed output to the
	// base file. 0 means 64KB.
	BufferSize int

	// MinSize is the smallest content that gets compressed. Anything
	// shorter is stored raw under its own name.
	MinSize int64

	// Logger receives debug events. nil disables logging.
	Logger *zap.SugaredLogger
}

// DefaultConfig returns the huffman configuration with transparent names.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:         AlgorithmHuffman,
		AutoDetect:        true,
		PreserveExtension: true,
		StripExtension:    true,
		BufferSize:        64 * 1024,
	}
}

// Stats is a snapshot of an FS's counters.
type Stats struct {
	FilesCompressed   int64
	FilesDecompressed int64
	FilesSkipped      int64

	// BytesWritten and BytesRead count content as callers see it.
	// BytesCompressed is what encoders stored and BytesDecompressed what
	// decoders consumed, both measured in the base filesystem.
	BytesRead         int64
	BytesWritten      int64
	BytesCompressed   int64
	BytesDecompressed int64

	// AlgorithmCounts counts files encoded or decoded per algorithm.
	AlgorithmCounts map[Algorithm]int64
}

// GetAlgorithmCount returns how many files used algo.
func (s *Stats) GetAlgorithmCount(algo Algorithm) int64 {
	return s.AlgorithmCounts[algo]
}

// TotalCompressionRatio returns stored size over original size for
// everything written.
func (s *Stats) TotalCompressionRatio() float64 {
	return GetCompressionRatio(s.BytesWritten, s.BytesCompressed)
}

// TotalDecompressionRatio returns how many bytes were read for each stored
// byte decoded. Raw reads are included in BytesRead.
func (s *Stats) TotalDecompressionRatio() float64 {
	if s.BytesDecompressed == 0 {
		return 0
	}
	return float64(s.BytesRead) / float64(s.BytesDecompressed)
}

// counters is the live, concurrently updated form of Stats.
type counters struct {
	filesCompressed   atomic.Int64
	filesDecompressed atomic.Int64
	filesSkipped      atomic.Int64
	bytesRead         atomic.Int64
	bytesWritten      atomic.Int64
	bytesCompressed   atomic.Int64
	bytesDecompressed atomic.Int64
	algorithms        sync.Map // Algorithm -> *atomic.Int64
}

func (c *counters) countAlgorithm(algo Algorithm) {
	n, _ := c.algorithms.LoadOrStore(algo, new(atomic.Int64))
	n.(*atomic.Int64).Add(1)
}

func (c *counters) snapshot() *Stats {
	s := &Stats{
		FilesCompressed:   c.filesCompressed.Load(),
		FilesDecompressed: c.filesDecompressed.Load(),
		FilesSkipped:      c.filesSkipped.Load(),
		BytesRead:         c.bytesRead.Load(),
		BytesWritten:      c.bytesWritten.Load(),
		BytesCompressed:   c.bytesCompressed.Load(),
		BytesDecompressed: c.bytesDecompressed.Load(),
		AlgorithmCounts:   make(map[Algorithm]int64),
	}
	c.algorithms.Range(func(k, v any) bool {
		s.AlgorithmCounts[k.(Algorithm)] = v.(*atomic.Int64).Load()
		return true
	})
	return s
}

func (c *counters) reset() {
	for _, n := range []*atomic.Int64{
		&c.filesCompressed, &c.filesDecompressed, &c.filesSkipped,
		&c.bytesRead, &c.bytesWritten, &c.bytesCompressed, &c.bytesDecompressed,
	} {
		n.Store(0)
	}
	c.algorithms.Clear()
}

var (
	ErrUnsupportedAlgorithm = errors.New("huffmanfs: unsupported compression algorithm")
	ErrInvalidLevel         = errors.New("huffmanfs: invalid compression level")
	ErrSeekNotSupported     = errors.New("huffmanfs: seek not supported for compressed files")
	ErrCorruptedData        = errors.New("huffmanfs: corrupted compressed data")
)

// FileSystem is the subset of absfs.Filer an FS stores files in.
type FileSystem interface {
	OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error)
	Mkdir(name string, perm fs.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (fs.FileInfo, error)
}

// FS compresses files on their way into a FileSystem and decompresses them
// on the way out.
type FS struct {
	base  FileSystem
	log   *zap.SugaredLogger
	skip  *regexp.Regexp
	rules []compiledRule
	stats counters

	mu     sync.RWMutex // guards config
	config *Config
}

// New wraps base. A nil config means DefaultConfig. New fails on an unknown
// algorithm, an out-of-range level or a pattern that does not compile.
func New(base FileSystem, config *Config) (*FS, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Algorithm == "" {
		config.Algorithm = AlgorithmHuffman
	}
	if err := validateLevel(config.Algorithm, config.Level); err != nil {
		return nil, err
	}

	cfs := &FS{base: base, config: config, log: config.Logger}
	if cfs.log == nil {
		cfs.log = zap.NewNop().Sugar()
	}

	if len(config.SkipPatterns) > 0 {
		re, err := regexp.Compile("(?:" + strings.Join(config.SkipPatterns, "|") + ")")
		if err != nil {
			return nil, err
		}
		cfs.skip = re
	}

	rules, err := compileRules(config.AlgorithmRules)
	if err != nil {
		return nil, err
	}
	cfs.rules = rules

	return cfs, nil
}

// shouldSkip reports whether name is stored without compression.
func (cfs *FS) shouldSkip(name string) bool {
	return cfs.skip != nil && cfs.skip.MatchString(name)
}

// settings returns a copy of the current config.
func (cfs *FS) settings() Config {
	cfs.mu.RLock()
	defer cfs.mu.RUnlock()
	return *cfs.config
}

// GetStats returns a snapshot of the counters.
func (cfs *FS) GetStats() *Stats {
	return cfs.stats.snapshot()
}

// ResetStats zeroes every counter.
func (cfs *FS) ResetStats() {
	cfs.stats.reset()
}

// SetAlgorithm changes the default algorithm for files opened from now on.
func (cfs *FS) SetAlgorithm(algo Algorithm) error {
	if _, err := ParseAlgorithm(string(algo)); err != nil || algo == AlgorithmAuto {
		return ErrUnsupportedAlgorithm
	}
	cfs.mu.Lock()
	defer cfs.mu.Unlock()
	cfs.config.Algorithm = algo
	return nil
}

// SetLevel changes the default level, validated against the current
// algorithm.
func (cfs *FS) SetLevel(level int) error {
	cfs.mu.Lock()
	defer cfs.mu.Unlock()
	if err := validateLevel(cfs.config.Algorithm, level); err != nil {
		return err
	}
	cfs.config.Level = level
	return nil
}

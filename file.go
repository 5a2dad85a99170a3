package huffmanfs

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/absfs/absfs"
)

// pendingWrite collects everything written to a file until Close encodes it.
type pendingWrite struct {
	buf   bytes.Buffer
	algo  Algorithm
	level int
}

// compressedFile is the absfs.File an FS hands out. A file opened for
// writing with an algorithm buffers its content; a file opened read-only
// over compressed content streams through a decoder; anything else passes
// straight through to the base file.
type compressedFile struct {
	cfs    *FS
	config Config
	base   absfs.File

	name   string // as the caller opened it
	stored string // as it exists in the base filesystem

	pending *pendingWrite
	decoder io.ReadCloser
	decAlgo Algorithm

	closed bool
	mu     sync.Mutex
}

func newCompressedFile(cfs *FS, base absfs.File, name, stored string, flag int, algo Algorithm, level int) (*compressedFile, error) {
	cf := &compressedFile{
		cfs:    cfs,
		config: cfs.settings(),
		base:   base,
		name:   name,
		stored: stored,
	}

	writing := flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0
	switch {
	case writing && algo != "":
		cf.pending = &pendingWrite{algo: algo, level: level}
	case !writing:
		if err := cf.openDecoder(algo); err != nil {
			return nil, err
		}
	}
	return cf, nil
}

// openDecoder installs a decoder when the stored bytes are compressed.
// nameAlgo is the algorithm implied by the stored name, if any.
func (cf *compressedFile) openDecoder(nameAlgo Algorithm) error {
	if nameAlgo == "" && !cf.config.AutoDetect {
		return nil
	}
	if info, err := cf.base.Stat(); err != nil || info.IsDir() || info.Size() == 0 {
		return nil
	}

	head := make([]byte, maxMagicLen)
	n, err := io.ReadFull(cf.base, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if _, err := cf.base.Seek(0, io.SeekStart); err != nil {
		return err
	}

	algo, ok := IsCompressed(head[:n])
	if !ok {
		if nameAlgo != AlgorithmBrotli {
			// Raw content, e.g. stored below MinSize
			return nil
		}
		algo = nameAlgo
	}

	dec, err := createDecompressor(algo, cf.base)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptedData, cf.name, err)
	}
	cf.decoder, cf.decAlgo = dec, algo
	return nil
}

// lock acquires cf.mu and fails once the file is closed. On error the
// mutex is already released.
func (cf *compressedFile) lock() error {
	cf.mu.Lock()
	if cf.closed {
		cf.mu.Unlock()
		return fs.ErrClosed
	}
	return nil
}

func (cf *compressedFile) Read(p []byte) (int, error) {
	if err := cf.lock(); err != nil {
		return 0, err
	}
	defer cf.mu.Unlock()

	var n int
	var err error
	if cf.decoder != nil {
		n, err = cf.decoder.Read(p)
		if n > 0 && err == io.EOF {
			err = nil
		}
	} else {
		n, err = cf.base.Read(p)
	}
	cf.cfs.stats.bytesRead.Add(int64(n))
	return n, err
}

func (cf *compressedFile) Write(p []byte) (int, error) {
	if err := cf.lock(); err != nil {
		return 0, err
	}
	defer cf.mu.Unlock()

	if cf.pending != nil {
		return cf.pending.buf.Write(p)
	}
	n, err := cf.base.Write(p)
	cf.cfs.stats.bytesWritten.Add(int64(n))
	return n, err
}

func (cf *compressedFile) WriteString(s string) (int, error) {
	return cf.Write([]byte(s))
}

// Close encodes pending content and closes the base file, which happens on
// every path. If encoding or writing fails the stored file is removed and
// the error returned.
func (cf *compressedFile) Close() error {
	if err := cf.lock(); err != nil {
		return nil
	}
	defer cf.mu.Unlock()
	cf.closed = true

	if cf.pending == nil {
		var err error
		if cf.decoder != nil {
			err = cf.decoder.Close()
			cf.cfs.stats.filesDecompressed.Add(1)
			if info, serr := cf.base.Stat(); serr == nil {
				cf.cfs.stats.bytesDecompressed.Add(info.Size())
			}
			cf.cfs.stats.countAlgorithm(cf.decAlgo)
		}
		if cerr := cf.base.Close(); err == nil {
			err = cerr
		}
		return err
	}

	raw, err := cf.flush()
	if cerr := cf.base.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cf.cfs.base.Remove(cf.stored)
		cf.cfs.log.Debugw("discarded file", "name", cf.name, "error", err)
		return err
	}

	// Raw content keeps the caller's name rather than a misleading extension
	final := cf.stored
	if raw && cf.stored != cf.name && !HasCompressionExtension(cf.name) {
		if err := cf.cfs.base.Rename(cf.stored, cf.name); err != nil {
			cf.cfs.log.Debugw("raw file left under compressed name", "name", cf.stored, "error", err)
		} else {
			final = cf.name
		}
	}
	cf.cfs.removeSiblings(cf.name, final)
	return nil
}

// flush writes the pending content to the base file. It reports whether the
// content went out raw because it was shorter than MinSize.
func (cf *compressedFile) flush() (bool, error) {
	data := cf.pending.buf.Bytes()
	size := int64(len(data))
	if size == 0 {
		return false, nil
	}

	if size < cf.config.MinSize {
		if _, err := cf.base.Write(data); err != nil {
			return false, err
		}
		cf.cfs.stats.filesSkipped.Add(1)
		cf.cfs.stats.bytesWritten.Add(size)
		cf.cfs.log.Debugw("stored raw", "name", cf.name, "size", size)
		return true, nil
	}

	// Nothing reaches the base file until encoding has succeeded
	var out bytes.Buffer
	enc, err := createCompressor(cf.pending.algo, &out, cf.pending.level)
	if err != nil {
		return false, err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return false, err
	}
	if err := enc.Close(); err != nil {
		return false, err
	}

	stored := int64(out.Len())
	chunk := cf.config.BufferSize
	if chunk <= 0 {
		chunk = 64 * 1024
	}
	for b := out.Bytes(); len(b) > 0; {
		n, err := cf.base.Write(b[:min(chunk, len(b))])
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			return false, err
		}
		b = b[n:]
	}

	cf.cfs.stats.filesCompressed.Add(1)
	cf.cfs.stats.bytesWritten.Add(size)
	cf.cfs.stats.bytesCompressed.Add(stored)
	cf.cfs.stats.countAlgorithm(cf.pending.algo)
	cf.cfs.log.Debugw("compressed",
		"name", cf.name,
		"algorithm", cf.pending.algo,
		"size", size,
		"compressed", stored,
	)
	return false, nil
}

// Algorithm returns the codec in use, or "" for pass-through files.
func (cf *compressedFile) Algorithm() Algorithm {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	switch {
	case cf.pending != nil:
		return cf.pending.algo
	case cf.decoder != nil:
		return cf.decAlgo
	}
	return ""
}

// streaming reports whether byte offsets in the base file differ from
// offsets in the content.
func (cf *compressedFile) streaming() bool {
	return cf.pending != nil || cf.decoder != nil
}

func (cf *compressedFile) Seek(offset int64, whence int) (int64, error) {
	if err := cf.lock(); err != nil {
		return 0, err
	}
	defer cf.mu.Unlock()
	if cf.streaming() {
		return 0, ErrSeekNotSupported
	}
	return cf.base.Seek(offset, whence)
}

func (cf *compressedFile) ReadAt(b []byte, off int64) (int, error) {
	if err := cf.lock(); err != nil {
		return 0, err
	}
	defer cf.mu.Unlock()
	if cf.streaming() {
		return 0, ErrSeekNotSupported
	}
	return cf.base.ReadAt(b, off)
}

func (cf *compressedFile) WriteAt(b []byte, off int64) (int, error) {
	if err := cf.lock(); err != nil {
		return 0, err
	}
	defer cf.mu.Unlock()
	if cf.streaming() {
		return 0, ErrSeekNotSupported
	}
	return cf.base.WriteAt(b, off)
}

// Truncate shortens pending content while writing. It is not supported on
// decoded reads.
func (cf *compressedFile) Truncate(size int64) error {
	if err := cf.lock(); err != nil {
		return err
	}
	defer cf.mu.Unlock()

	switch {
	case cf.pending != nil:
		if size < 0 || size > int64(cf.pending.buf.Len()) {
			return &fs.PathError{Op: "truncate", Path: cf.name, Err: fs.ErrInvalid}
		}
		cf.pending.buf.Truncate(int(size))
		return nil
	case cf.decoder != nil:
		return ErrSeekNotSupported
	}
	return cf.base.Truncate(size)
}

func (cf *compressedFile) Name() string { return cf.name }

// Stat describes the stored file, so Size is the compressed size.
func (cf *compressedFile) Stat() (fs.FileInfo, error) {
	return cf.base.Stat()
}

func (cf *compressedFile) Sync() error {
	if err := cf.lock(); err != nil {
		return err
	}
	defer cf.mu.Unlock()
	return cf.base.Sync()
}

func (cf *compressedFile) Readdir(n int) ([]os.FileInfo, error) {
	if err := cf.lock(); err != nil {
		return nil, err
	}
	defer cf.mu.Unlock()
	return cf.base.Readdir(n)
}

func (cf *compressedFile) Readdirnames(n int) ([]string, error) {
	if err := cf.lock(); err != nil {
		return nil, err
	}
	defer cf.mu.Unlock()
	return cf.base.Readdirnames(n)
}

func (cf *compressedFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if err := cf.lock(); err != nil {
		return nil, err
	}
	defer cf.mu.Unlock()
	return cf.base.ReadDir(n)
}

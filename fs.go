package huffmanfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/absfs/absfs"
)

// Open is OpenFile with O_RDONLY.
func (cfs *FS) Open(name string) (absfs.File, error) {
	return cfs.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile maps name to its stored form and wraps the base file. Files
// opened for writing are encoded on Close; read-only files are decoded as
// they are read.
func (cfs *FS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	config := cfs.settings()

	stored := name
	var algo Algorithm
	level := config.Level
	isCreate := flag&os.O_CREATE != 0
	isWrite := flag&(os.O_WRONLY|os.O_RDWR) != 0

	if (isCreate || isWrite) && !cfs.shouldSkip(name) {
		// Writes pick the algorithm now so the stored name carries the
		// matching extension.
		if extAlgo, ok := DetectAlgorithmFromExtension(name); ok {
			algo = extAlgo
			if algo != config.Algorithm {
				level = 0
			}
		} else {
			algo, level, _ = cfs.selectAlgorithm(name)
			stored = AddExtension(name, algo, config.PreserveExtension)
		}
	} else if !isCreate && !isWrite {
		stored, algo = cfs.resolve(name, config)
	}

	var prior []byte
	if algo != "" && (isCreate || isWrite) {
		var err error
		if flag, prior, err = cfs.prepareRewrite(name, stored, flag); err != nil {
			return nil, err
		}
	}

	baseFile, err := cfs.base.OpenFile(stored, flag, perm)
	if err != nil {
		return nil, err
	}

	cf, err := newCompressedFile(cfs, baseFile, name, stored, flag, algo, level)
	if err != nil {
		baseFile.Close()
		return nil, err
	}
	if prior != nil {
		cf.pending.buf.Write(prior)
	}
	return cf, nil
}

// prepareRewrite adjusts flag for a file that is encoded whole on Close,
// so the base file is always truncated. O_APPEND loads the current content
// first. Writing over an existing file without either flag is refused, as
// there is no way to merge a partial overwrite into encoded content.
func (cfs *FS) prepareRewrite(name, stored string, flag int) (int, []byte, error) {
	var prior []byte
	switch {
	case flag&os.O_TRUNC != 0:
	case flag&os.O_APPEND != 0:
		data, err := cfs.readCurrent(name, stored)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, nil, err
		}
		if err == nil {
			prior = data
			flag |= os.O_CREATE
		}
	default:
		if cfs.exists(name) || cfs.exists(stored) {
			return 0, nil, &fs.PathError{Op: "open", Path: name, Err: ErrSeekNotSupported}
		}
	}
	return flag&^os.O_APPEND | os.O_TRUNC, prior, nil
}

// readCurrent returns the decoded content of name, falling back to its
// stored form when name does not resolve on its own.
func (cfs *FS) readCurrent(name, stored string) ([]byte, error) {
	data, err := cfs.readAll(name)
	if errors.Is(err, fs.ErrNotExist) && stored != name {
		return cfs.readAll(stored)
	}
	return data, err
}

func (cfs *FS) readAll(name string) ([]byte, error) {
	f, err := cfs.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (cfs *FS) exists(name string) bool {
	_, err := cfs.Stat(name)
	return err == nil
}

// removeSiblings deletes every other stored form of name once keep holds
// its current content, so a rewrite never leaves stale copies behind.
func (cfs *FS) removeSiblings(name, keep string) {
	if HasCompressionExtension(name) {
		return
	}
	forms := []string{name}
	for _, algo := range Algorithms {
		forms = append(forms, name+GetExtension(algo))
	}
	for _, form := range forms {
		if form == keep {
			continue
		}
		if err := cfs.base.Remove(form); err != nil && !errors.Is(err, fs.ErrNotExist) {
			cfs.log.Debugw("stale copy left behind", "name", form, "error", err)
		}
	}
}

// resolve finds the stored name for name. With StripExtension it prefers a
// compressed sibling, trying the configured algorithm first.
func (cfs *FS) resolve(name string, config Config) (string, Algorithm) {
	if algo, ok := DetectAlgorithmFromExtension(name); ok {
		return name, algo
	}
	if config.StripExtension {
		candidates := append([]Algorithm{config.Algorithm}, Algorithms...)
		for _, algo := range candidates {
			ext := GetExtension(algo)
			if ext == "" {
				continue
			}
			if _, err := cfs.base.Stat(name + ext); err == nil {
				return name + ext, algo
			}
		}
	}
	return name, ""
}

// Create truncates or creates name for writing, like os.Create.
func (cfs *FS) Create(name string) (absfs.File, error) {
	return cfs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (cfs *FS) Mkdir(name string, perm fs.FileMode) error {
	return cfs.base.Mkdir(name, perm)
}

// fallback returns the compressed sibling of name, if one exists.
func (cfs *FS) fallback(name string) (string, bool) {
	stored, algo := cfs.resolve(name, cfs.settings())
	return stored, algo != "" && stored != name
}

// Remove deletes name, or its compressed sibling when name itself is absent.
func (cfs *FS) Remove(name string) error {
	err := cfs.base.Remove(name)
	if err == nil {
		return nil
	}
	if stored, ok := cfs.fallback(name); ok {
		return cfs.base.Remove(stored)
	}
	return err
}

// Rename moves the stored file. The codec extension follows it unless
// newpath already names one.
func (cfs *FS) Rename(oldpath, newpath string) error {
	config := cfs.settings()

	actual, algo := cfs.resolve(oldpath, config)
	if algo != "" && actual != oldpath && !HasCompressionExtension(newpath) {
		newpath += actual[len(oldpath):]
	}
	return cfs.base.Rename(actual, newpath)
}

// Stat describes the stored file, so sizes are compressed sizes.
func (cfs *FS) Stat(name string) (fs.FileInfo, error) {
	info, err := cfs.base.Stat(name)
	if err == nil {
		return info, nil
	}
	if stored, ok := cfs.fallback(name); ok {
		return cfs.base.Stat(stored)
	}
	return nil, err
}

// ReadDir lists a directory. With StripExtension, stored names are shown
// without their compression extension and a raw file shadows its
// compressed sibling.
func (cfs *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	strip := cfs.settings().StripExtension

	dir, err := cfs.base.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil || !strip {
		return entries, err
	}

	out := make([]fs.DirEntry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, entry := range entries {
		visible := entry
		plain, _, renamed := StripExtension(entry.Name())
		if renamed = renamed && !entry.IsDir(); renamed {
			visible = &renamedDirEntry{DirEntry: entry, name: plain}
		}
		if i, dup := index[visible.Name()]; dup {
			if !renamed {
				out[i] = entry
			}
			continue
		}
		index[visible.Name()] = len(out)
		out = append(out, visible)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// renamedDirEntry shows a stored entry under the name callers use.
type renamedDirEntry struct {
	fs.DirEntry
	name string
}

func (e *renamedDirEntry) Name() string {
	return e.name
}

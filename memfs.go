package huffmanfs

import (
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/absfs/absfs"
)

// cleanPath maps "/a/b", "a/b" and "./a/b" to the same key.
func cleanPath(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
}

// memNode is the shared content of one stored file.
type memNode struct {
	mu      sync.RWMutex
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

func (n *memNode) info(name string) *memFileInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return &memFileInfo{name: path.Base(name), size: int64(len(n.data)), mode: n.mode, modTime: n.modTime}
}

// memFS is a flat in-memory filesystem used by tests and examples.
type memFS struct {
	mu    sync.RWMutex
	files map[string]*memNode
	dirs  map[string]fs.FileMode
}

// NewMemFS creates a new in-memory filesystem
func NewMemFS() absfs.Filer {
	return &memFS{
		files: make(map[string]*memNode),
		dirs:  map[string]fs.FileMode{".": fs.ModeDir | 0755},
	}
}

func (m *memFS) Open(name string) (absfs.File, error) {
	return m.OpenFile(name, os.O_RDONLY, 0)
}

func (m *memFS) OpenFile(name string, flag int, perm fs.FileMode) (absfs.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = cleanPath(name)
	if mode, ok := m.dirs[name]; ok {
		return &memDir{owner: m, name: name, mode: mode}, nil
	}

	node, ok := m.files[name]
	switch {
	case !ok && flag&os.O_CREATE == 0:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	case ok && flag&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	case !ok:
		node = &memNode{mode: perm, modTime: time.Now()}
		m.files[name] = node
	}

	if flag&os.O_TRUNC != 0 {
		node.mu.Lock()
		node.data = nil
		node.modTime = time.Now()
		node.mu.Unlock()
	}

	f := &memFile{node: node, name: name, flag: flag}
	if flag&os.O_APPEND != 0 {
		f.pos = int64(len(node.data))
	}
	return f, nil
}

func (m *memFS) Create(name string) (absfs.File, error) {
	return m.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (m *memFS) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = cleanPath(name)
	if _, ok := m.dirs[name]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if _, ok := m.files[name]; ok {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	m.dirs[name] = fs.ModeDir | perm.Perm()
	return nil
}

func (m *memFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = cleanPath(name)
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if _, ok := m.dirs[name]; ok && name != "." {
		for p := range m.files {
			if path.Dir(p) == name {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrExist}
			}
		}
		delete(m.dirs, name)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = cleanPath(name)
	if node, ok := m.files[name]; ok {
		return node.info(name), nil
	}
	if mode, ok := m.dirs[name]; ok {
		return &memFileInfo{name: path.Base(name), mode: mode}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadDir lists the direct children of a directory, sorted by name
func (m *memFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := m.list(cleanPath(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

// ReadFile returns the whole content of a file
func (m *memFS) ReadFile(name string) ([]byte, error) {
	node, err := m.node("readfile", name)
	if err != nil {
		return nil, err
	}
	node.mu.RLock()
	defer node.mu.RUnlock()
	return append([]byte(nil), node.data...), nil
}

// Sub returns a read-only io/fs view rooted at dir
func (m *memFS) Sub(dir string) (fs.FS, error) {
	return fs.Sub(memIOFS{m}, cleanPath(dir))
}

// memIOFS adapts memFS to io/fs.FS
type memIOFS struct{ m *memFS }

func (f memIOFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return f.m.Open(name)
}

func (m *memFS) list(dir string) ([]fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.dirs[dir]; !ok {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}

	var infos []fs.FileInfo
	for p, node := range m.files {
		if path.Dir(p) == dir {
			infos = append(infos, node.info(p))
		}
	}
	for p, mode := range m.dirs {
		if p != "." && path.Dir(p) == dir {
			infos = append(infos, &memFileInfo{name: path.Base(p), mode: mode})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

// Rename moves a file, replacing any file already at newpath
func (m *memFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldpath, newpath = cleanPath(oldpath), cleanPath(newpath)
	node, ok := m.files[oldpath]
	if !ok {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrNotExist}
	}
	delete(m.files, oldpath)
	m.files[newpath] = node
	return nil
}

func (m *memFS) node(op, name string) (*memNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = cleanPath(name)
	node, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return node, nil
}

func (m *memFS) Chmod(name string, mode os.FileMode) error {
	node, err := m.node("chmod", name)
	if err != nil {
		return err
	}
	node.mu.Lock()
	node.mode = mode
	node.mu.Unlock()
	return nil
}

func (m *memFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	node, err := m.node("chtimes", name)
	if err != nil {
		return err
	}
	node.mu.Lock()
	node.modTime = mtime
	node.mu.Unlock()
	return nil
}

// Chown only checks that the file exists
func (m *memFS) Chown(name string, uid, gid int) error {
	_, err := m.node("chown", name)
	return err
}

type memFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *memFileInfo) Sys() interface{}   { return nil }

// memFile is one open handle on a memNode. Handles share content but keep
// their own offset.
type memFile struct {
	node   *memNode
	name   string
	flag   int
	pos    int64
	closed bool
	mu     sync.Mutex
}

func (f *memFile) check(op string, write bool) error {
	if f.closed {
		return fs.ErrClosed
	}
	if write && f.flag&(os.O_WRONLY|os.O_RDWR) == 0 && f.flag&os.O_CREATE == 0 {
		return &fs.PathError{Op: op, Path: f.name, Err: fs.ErrPermission}
	}
	return nil
}

func (f *memFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.readAt(p, f.pos)
	f.pos += int64(n)
	if err == nil && n == 0 && len(p) > 0 {
		err = io.EOF
	}
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (f *memFile) ReadAt(b []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readAt(b, off)
}

func (f *memFile) readAt(b []byte, off int64) (int, error) {
	if err := f.check("read", false); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrInvalid}
	}

	f.node.mu.RLock()
	defer f.node.mu.RUnlock()

	if off >= int64(len(f.node.data)) {
		return 0, io.EOF
	}
	n := copy(b, f.node.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.flag&os.O_APPEND != 0 {
		f.node.mu.RLock()
		f.pos = int64(len(f.node.data))
		f.node.mu.RUnlock()
	}
	n, err := f.writeAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *memFile) WriteAt(b []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAt(b, off)
}

func (f *memFile) writeAt(b []byte, off int64) (int, error) {
	if err := f.check("write", true); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "write", Path: f.name, Err: fs.ErrInvalid}
	}

	f.node.mu.Lock()
	defer f.node.mu.Unlock()

	if end := off + int64(len(b)); end > int64(len(f.node.data)) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	n := copy(f.node.data[off:], b)
	f.node.modTime = time.Now()
	return n, nil
}

func (f *memFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, fs.ErrClosed
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.pos + offset
	case io.SeekEnd:
		f.node.mu.RLock()
		pos = int64(len(f.node.data)) + offset
		f.node.mu.RUnlock()
	default:
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}
	if pos < 0 {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}
	f.pos = pos
	return pos, nil
}

func (f *memFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check("truncate", true); err != nil {
		return err
	}
	if size < 0 {
		return &fs.PathError{Op: "truncate", Path: f.name, Err: fs.ErrInvalid}
	}

	f.node.mu.Lock()
	defer f.node.mu.Unlock()

	resized := make([]byte, size)
	copy(resized, f.node.data)
	f.node.data = resized
	f.node.modTime = time.Now()
	return nil
}

func (f *memFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.node.info(f.name), nil }
func (f *memFile) Sync() error                { return nil }
func (f *memFile) Name() string               { return f.name }

func (f *memFile) Readdir(int) ([]os.FileInfo, error) {
	return nil, &fs.PathError{Op: "readdir", Path: f.name, Err: fs.ErrInvalid}
}

func (f *memFile) Readdirnames(int) ([]string, error) {
	return nil, &fs.PathError{Op: "readdirnames", Path: f.name, Err: fs.ErrInvalid}
}

func (f *memFile) ReadDir(int) ([]fs.DirEntry, error) {
	return nil, &fs.PathError{Op: "readdir", Path: f.name, Err: fs.ErrInvalid}
}

// memDir is an open directory handle. Entries are listed once and then
// handed out in batches.
type memDir struct {
	owner   *memFS
	name    string
	mode    fs.FileMode
	entries []fs.FileInfo
	listed  bool
}

func (d *memDir) invalid(op string) error {
	return &fs.PathError{Op: op, Path: d.name, Err: fs.ErrInvalid}
}

func (d *memDir) Read([]byte) (int, error)           { return 0, d.invalid("read") }
func (d *memDir) ReadAt([]byte, int64) (int, error)  { return 0, d.invalid("read") }
func (d *memDir) Write([]byte) (int, error)          { return 0, d.invalid("write") }
func (d *memDir) WriteAt([]byte, int64) (int, error) { return 0, d.invalid("write") }
func (d *memDir) WriteString(string) (int, error)    { return 0, d.invalid("write") }
func (d *memDir) Seek(int64, int) (int64, error)     { return 0, d.invalid("seek") }
func (d *memDir) Truncate(int64) error               { return d.invalid("truncate") }
func (d *memDir) Close() error                       { return nil }
func (d *memDir) Sync() error                        { return nil }
func (d *memDir) Name() string                       { return d.name }

func (d *memDir) Stat() (fs.FileInfo, error) {
	return &memFileInfo{name: path.Base(d.name), mode: d.mode}, nil
}

func (d *memDir) Readdir(n int) ([]os.FileInfo, error) {
	if !d.listed {
		entries, err := d.owner.list(d.name)
		if err != nil {
			return nil, err
		}
		d.entries, d.listed = entries, true
	}

	if n <= 0 {
		out := d.entries
		d.entries = nil
		return out, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	if n > len(d.entries) {
		n = len(d.entries)
	}
	out := d.entries[:n]
	d.entries = d.entries[n:]
	return out, nil
}

func (d *memDir) Readdirnames(n int) ([]string, error) {
	infos, err := d.Readdir(n)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, err
}

func (d *memDir) ReadDir(n int) ([]fs.DirEntry, error) {
	infos, err := d.Readdir(n)
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, err
}

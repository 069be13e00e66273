package billy

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jmgilman/imagedesk/fs/core"
)

// LocalFS wraps billy's osfs for disk access below a root directory.
type LocalFS struct {
	base
	root string
}

// MemoryFS wraps billy's memfs for in-memory storage.
type MemoryFS struct {
	base
}

// NewLocal creates a go-billy-backed filesystem rooted at root.
// Paths passed to its methods are interpreted relative to root.
func NewLocal(root string) *LocalFS {
	if root == "" {
		root = "/"
	}
	root = filepath.Clean(root)
	return &LocalFS{
		base: base{bfs: osfs.New(root)},
		root: root,
	}
}

// NewMemory creates a go-billy-backed in-memory filesystem.
// The filesystem is initially empty.
func NewMemory() *MemoryFS {
	return &MemoryFS{
		base: base{bfs: memfs.New()},
	}
}

// Root returns the directory the filesystem is rooted at.
func (lfs *LocalFS) Root() string {
	return lfs.root
}

// Abs returns the host path of name.
func (lfs *LocalFS) Abs(name string) string {
	return filepath.Join(lfs.root, filepath.FromSlash(normalize(name)))
}

// Type returns FSTypeLocal for local filesystem implementations.
func (lfs *LocalFS) Type() core.FSType {
	return core.FSTypeLocal
}

// Abs returns name as an absolute slash path inside the memory filesystem.
func (mfs *MemoryFS) Abs(name string) string {
	return "/" + normalize(name)
}

// Type returns FSTypeMemory for in-memory filesystem implementations.
func (mfs *MemoryFS) Type() core.FSType {
	return core.FSTypeMemory
}

// base holds the operations shared by every billy backend.
type base struct {
	bfs billy.Filesystem
}

// Unwrap returns the underlying billy.Filesystem.
func (b *base) Unwrap() billy.Filesystem {
	return b.bfs
}

// normalize converts paths to cleaned, slash-separated form relative to the root.
func normalize(name string) string {
	name = path.Clean(filepath.ToSlash(name))
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "."
	}
	return name
}

// dirEntry wraps fs.FileInfo to implement fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// Open opens the named file for reading.
func (b *base) Open(name string) (fs.File, error) {
	name = normalize(name)
	f, err := b.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{file: f, fs: b.bfs, name: name}, nil
}

// Stat returns file metadata for the named file.
func (b *base) Stat(name string) (fs.FileInfo, error) {
	return b.bfs.Stat(normalize(name))
}

// ReadDir reads the named directory and returns its entries sorted by filename.
func (b *base) ReadDir(name string) ([]fs.DirEntry, error) {
	name = normalize(name)

	// memfs reports an empty listing for directories that were never created.
	if name != "." {
		info, err := b.bfs.Stat(name)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
		}
	}

	infos, err := b.bfs.ReadDir(name)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (b *base) ReadFile(name string) ([]byte, error) {
	f, err := b.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named file or directory exists.
func (b *base) Exists(name string) (bool, error) {
	_, err := b.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (b *base) Create(name string) (core.File, error) {
	name = normalize(name)
	f, err := b.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return &File{file: f, fs: b.bfs, name: name}, nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (b *base) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return util.WriteFile(b.bfs, normalize(name), data, perm)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (b *base) MkdirAll(name string, perm fs.FileMode) error {
	return b.bfs.MkdirAll(normalize(name), perm)
}

// Remove removes the named file or empty directory.
func (b *base) Remove(name string) error {
	return b.bfs.Remove(normalize(name))
}

// RemoveAll removes path and any children it contains.
func (b *base) RemoveAll(name string) error {
	return util.RemoveAll(b.bfs, normalize(name))
}

// Rename renames (moves) oldpath to newpath.
func (b *base) Rename(oldpath, newpath string) error {
	return b.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// Compile-time interface checks.
var (
	_ core.FS           = (*LocalFS)(nil)
	_ core.FS           = (*MemoryFS)(nil)
	_ core.PathResolver = (*LocalFS)(nil)
	_ core.PathResolver = (*MemoryFS)(nil)
)

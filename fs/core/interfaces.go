package core

import (
	"io"
	"io/fs"
)

// FSType represents the underlying type of filesystem implementation.
type FSType int

const (
	// FSTypeUnknown indicates the filesystem type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a disk-backed filesystem.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// FS is the primary filesystem interface combining all core operations.
type FS interface {
	fs.FS
	ReadFS
	WriteFS
	ManageFS

	// Type returns the underlying filesystem type.
	Type() FSType
}

// ReadFS defines read-only filesystem operations.
type ReadFS interface {
	// Open opens the named file for reading.
	// The returned file should be closed when no longer needed.
	Open(name string) (fs.File, error)

	// Stat returns file metadata.
	// If there is an error, it will be of type *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of the named directory sorted by filename.
	// A missing directory is an error wrapping fs.ErrNotExist.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file or directory exists.
	// A false result with a non-nil error means existence could not be
	// determined, not that the path is absent.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
type WriteFS interface {
	// Create creates or truncates the named file for writing.
	// Parent directories must already exist.
	Create(name string) (File, error)

	// WriteFile writes data to the named file, creating or truncating it.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// MkdirAll creates a directory named path, along with any necessary parents.
	// If path is already a directory, MkdirAll does nothing and returns nil.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines file and directory management operations.
type ManageFS interface {
	// Remove removes the named file or empty directory.
	// A missing path is an error wrapping fs.ErrNotExist.
	Remove(name string) error

	// RemoveAll removes path and any children it contains.
	// A missing path is not an error.
	RemoveAll(path string) error

	// Rename renames (moves) oldpath to newpath. Directories move with their contents.
	Rename(oldpath, newpath string) error
}

// File represents an open, writable file handle.
type File interface {
	fs.File
	io.Writer

	// Name returns the name of the file as provided to Create.
	Name() string
}

// PathResolver is implemented by providers whose files live on the host
// filesystem.
//
//	if r, ok := filesystem.(core.PathResolver); ok {
//	    abs := r.Abs("projects/p/images/a.jpg")
//	}
type PathResolver interface {
	// Abs returns the host path of name.
	Abs(name string) string
}

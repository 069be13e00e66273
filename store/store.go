package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/fs/billy"
	"github.com/jmgilman/imagedesk/fs/core"
)

// Entry describes one item of a directory listing.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Store provides relative-path file operations under the application root.
type Store struct {
	fs        core.FS
	host      core.ReadFS
	fileLocks *sync.Map // map[string]*sync.Mutex for per-file locking
	tempSeq   atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithHostFS sets the filesystem import sources are read from. Source paths
// passed to Copy are resolved against it. Defaults to the local disk rooted
// at "/".
func WithHostFS(host core.ReadFS) Option {
	return func(s *Store) {
		s.host = host
	}
}

// New creates a store over fsys and makes sure the top-level layout exists.
func New(fsys core.FS, opts ...Option) (*Store, error) {
	if fsys == nil {
		return nil, errors.New(errors.CodeInvalidInput, "filesystem cannot be nil")
	}

	s := &Store{
		fs:        fsys,
		fileLocks: &sync.Map{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.host == nil {
		s.host = billy.NewLocal("/")
	}

	for _, dir := range []string{ProjectsDir, ArchivedDir} {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, ioError(err, "failed to create directory", dir)
		}
	}
	return s, nil
}

// FS returns the filesystem the store writes to.
func (s *Store) FS() core.FS {
	return s.fs
}

// IsNotExist reports whether err was caused by a missing file or directory.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func ioError(err error, message, p string) errors.PlatformError {
	return errors.WrapWithContext(err, errors.CodeIO, message, map[string]interface{}{"path": p})
}

func (s *Store) fileLock(p string) *sync.Mutex {
	lock, _ := s.fileLocks.LoadOrStore(p, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// AbsPath returns the absolute path of p as seen by the evaluation client
// and other consumers that work on real paths.
func (s *Store) AbsPath(p string) string {
	if r, ok := s.fs.(core.PathResolver); ok {
		return r.Abs(p)
	}
	return "/" + path.Clean(p)
}

// ReadBytes reads the whole file at p.
func (s *Store) ReadBytes(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	data, err := s.fs.ReadFile(p)
	if err != nil {
		return nil, ioError(err, "failed to read file", p)
	}
	return data, nil
}

// Open opens the file at p for streaming reads.
func (s *Store) Open(ctx context.Context, p string) (fs.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, ioError(err, "failed to open file", p)
	}
	return f, nil
}

// Stat returns metadata for p.
func (s *Store) Stat(ctx context.Context, p string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, ioError(err, "failed to stat", p)
	}
	return info, nil
}

// Exists reports whether p exists.
func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	ok, err := s.fs.Exists(p)
	if err != nil {
		return false, ioError(err, "failed to check existence", p)
	}
	return ok, nil
}

// ReadJSON reads the JSON document at p into a T. A missing file is an
// IO_FAILURE for which IsNotExist is true; malformed content is an
// INVALID_INPUT error.
func ReadJSON[T any](ctx context.Context, s *Store, p string) (T, error) {
	var v T
	data, err := s.ReadBytes(ctx, p)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.WrapWithContext(err, errors.CodeInvalidInput, "malformed JSON document",
			map[string]interface{}{"path": p})
	}
	return v, nil
}

// WriteJSON encodes v as indented JSON and writes it to p atomically.
// Parent directories are created as needed.
func (s *Store) WriteJSON(ctx context.Context, p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInternal, "failed to encode JSON",
			map[string]interface{}{"path": p})
	}
	return s.WriteAtomically(ctx, p, data)
}

// WriteAtomically writes data to p through a temporary sibling file and a
// rename, so p either keeps its old content or has the complete new content.
func (s *Store) WriteAtomically(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}

	lock := s.fileLock(p)
	lock.Lock()
	defer lock.Unlock()

	dir := path.Dir(p)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return ioError(err, "failed to create directory", dir)
	}

	tmp := path.Join(dir, fmt.Sprintf(".%s.tmp-%d", path.Base(p), s.tempSeq.Add(1)))
	if err := s.fs.WriteFile(tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return ioError(err, "failed to write temp file", tmp)
	}

	if err := s.fs.Rename(tmp, p); err != nil {
		// Some backends refuse to rename over an existing file.
		if !errors.Is(err, fs.ErrExist) {
			_ = s.fs.Remove(tmp)
			return ioError(err, "failed to rename temp file", p)
		}
		if err := s.fs.Remove(p); err != nil {
			_ = s.fs.Remove(tmp)
			return ioError(err, "failed to replace file", p)
		}
		if err := s.fs.Rename(tmp, p); err != nil {
			_ = s.fs.Remove(tmp)
			return ioError(err, "failed to rename temp file", p)
		}
	}
	return nil
}

// Copy copies the host file at src into the store at dst, creating parent
// directories and overwriting an existing destination.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	if err := core.CopyFile(s.host, src, s.fs, dst); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to copy file",
			map[string]interface{}{"source": src, "path": dst})
	}
	return nil
}

// CopyOut copies the store file at src to the host path dst. It is used by
// exports, whose destination lives outside the application root.
func (s *Store) CopyOut(ctx context.Context, src string, dst core.FS, dstPath string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	if err := core.CopyFile(s.fs, src, dst, dstPath); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to copy file",
			map[string]interface{}{"source": src, "path": dstPath})
	}
	return nil
}

// DeleteFile removes the file at p. A missing file is an error.
func (s *Store) DeleteFile(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		return ioError(err, "failed to delete file", p)
	}
	if info.IsDir() {
		return ioError(fmt.Errorf("%s is a directory", p), "failed to delete file", p)
	}
	if err := s.fs.Remove(p); err != nil {
		return ioError(err, "failed to delete file", p)
	}
	return nil
}

// DeleteDirectory removes the directory at p with everything inside it.
// A missing directory is an error.
func (s *Store) DeleteDirectory(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	if _, err := s.fs.Stat(p); err != nil {
		return ioError(err, "failed to delete directory", p)
	}
	if err := s.fs.RemoveAll(p); err != nil {
		return ioError(err, "failed to delete directory", p)
	}
	return nil
}

// RenameDirectory moves the directory from to the path to. The destination
// must not exist.
func (s *Store) RenameDirectory(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	info, err := s.fs.Stat(from)
	if err != nil {
		return ioError(err, "failed to rename directory", from)
	}
	if !info.IsDir() {
		return ioError(fmt.Errorf("%s is not a directory", from), "failed to rename directory", from)
	}
	exists, err := s.fs.Exists(to)
	if err != nil {
		return ioError(err, "failed to rename directory", to)
	}
	if exists {
		return errors.WithContext(
			errors.Newf(errors.CodeAlreadyExists, "destination %q already exists", to),
			"path", to,
		)
	}
	return s.rename(from, to)
}

// Rename moves the file from to the path to. An existing destination is
// an ALREADY_EXISTS error on every backend.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	if _, err := s.fs.Stat(from); err != nil {
		return ioError(err, "failed to rename file", from)
	}
	exists, err := s.fs.Exists(to)
	if err != nil {
		return ioError(err, "failed to rename file", to)
	}
	if exists {
		return errors.WithContext(
			errors.Newf(errors.CodeAlreadyExists, "destination %q already exists", to),
			"path", to,
		)
	}
	return s.rename(from, to)
}

func (s *Store) rename(from, to string) error {
	if dir := path.Dir(to); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return ioError(err, "failed to create directory", dir)
		}
	}
	if err := s.fs.Rename(from, to); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to rename",
			map[string]interface{}{"source": from, "path": to})
	}
	return nil
}

// ListEntries lists the directory at p sorted by name.
func (s *Store) ListEntries(ctx context.Context, p string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	dirEntries, err := s.fs.ReadDir(p)
	if err != nil {
		return nil, ioError(err, "failed to list directory", p)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		e := Entry{Name: d.Name(), IsDir: d.IsDir()}
		if info, err := d.Info(); err == nil {
			e.Size = info.Size()
			e.ModTime = info.ModTime()
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// EnsureDirectory creates the directory at p and any missing parents.
func (s *Store) EnsureDirectory(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}
	if err := s.fs.MkdirAll(p, 0o755); err != nil {
		return ioError(err, "failed to create directory", p)
	}
	return nil
}

package core

import (
	"fmt"
	"io"
	"path"
)

// CopyFile streams srcPath from src into dstPath on dst, creating the parent
// directory of dstPath if needed. An existing destination is truncated.
//
// Source and destination may be different providers, which is how files are
// imported from the host disk into an in-memory store during tests:
//
//	host := billy.NewLocal("/")
//	err := core.CopyFile(host, "home/me/a.jpg", st, "projects/p/images/a.jpg")
func CopyFile(src ReadFS, srcPath string, dst FS, dstPath string) error {
	in, err := src.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", srcPath)
	}

	if dir := path.Dir(dstPath); dir != "." && dir != "" {
		if err := dst.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	out, err := dst.Create(dstPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

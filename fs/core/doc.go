// Package core defines the filesystem contract the image store is built on.
//
// Providers implement FS, which is composed of small interfaces:
//
//   - ReadFS: Open, Stat, ReadDir, ReadFile, Exists
//   - WriteFS: Create, WriteFile, MkdirAll
//   - ManageFS: Remove, RemoveAll, Rename
//
// All paths are slash-separated and relative to the provider root. A provider
// whose files live on the host disk also implements PathResolver so callers
// that need a real path (image decoders, the evaluation client) can obtain one.
//
// FS embeds fs.FS, so the standard library helpers work unchanged:
//
//	err := fs.WalkDir(filesystem, "projects", func(p string, d fs.DirEntry, err error) error {
//	    ...
//	})
package core

// Package imagecache serves previews and full-resolution images of project
// files from two in-memory caches and keeps those caches coherent with the
// file tree.
//
// A Manager is created once and shared. It owns:
//
//   - a preview cache and a full-image cache, each behind its own
//     reader/writer lock; no operation holds both locks at once
//   - a weighted semaphore that bounds how many decodes run at the same
//     time (4 by default), which bounds peak memory on large imports
//
// Entries are created lazily and live until they are invalidated through
// the Manager: Delete drops the deleted keys, while Import, Move and folder
// renames drop every entry of the project. Invalidation may remove more
// than strictly necessary but never less. Files changed behind the
// Manager's back are not detected; call InvalidateProject after such a
// change.
//
// Relative image names are "file" or "folder/file"; deeper nesting is not
// listed.
package imagecache

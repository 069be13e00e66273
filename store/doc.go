// Package store is the durable blob store the image subsystems persist to.
//
// A Store addresses everything by slash-separated paths relative to the
// application root and sits on top of a core.FS, so the same code runs on
// disk (billy.NewLocal) and in memory (billy.NewMemory). Files that come from
// outside the root, such as import sources, are read through a separate host
// filesystem.
//
// The on-disk layout is:
//
//	projects/<name>/images/            image files, plus one level of folders
//	projects/<name>/image_evals.json   evaluation ledger
//	projects/<name>/info.imgreader     project metadata
//	archived/<name>/...                archived projects, same shape
//
// JSON documents are written atomically: the payload goes to a temporary
// file next to the target which is then renamed over it, so readers never
// observe a partially written ledger.
//
// Every failure is returned as an errors.PlatformError with code IO_FAILURE
// and a "path" context field. The underlying cause is preserved, so
//
//	store.IsNotExist(err)
//
// distinguishes a missing file from other failures.
package store

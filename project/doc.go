// Package project manages project directories and coordinates the image
// cache with the evaluation ledger.
//
// Manager covers the lifecycle: create, open, archive, unarchive and
// delete. Archiving is a directory move between projects/ and archived/.
//
// Service is the entry point for operations that change the image tree.
// Each one updates the filesystem first, then the caches, then the ledger.
// There is no rollback: when a later step fails the error is returned and
// Reconcile brings the ledger back in line with the files on disk.
package project

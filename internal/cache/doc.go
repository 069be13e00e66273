// Package cache provides the in-memory building blocks of the image cache:
// a structured key, a reader/writer locked map keyed by it, and metrics.
//
// Entries are kept for the life of the process. Nothing is evicted by size;
// callers remove entries explicitly, per key or per project.
package cache

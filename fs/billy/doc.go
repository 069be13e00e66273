// Package billy provides go-billy-backed implementations of core.FS.
//
// LocalFS wraps osfs and is what the application uses for the projects
// root on disk and for reading import sources from the host. MemoryFS wraps
// memfs and backs the tests.
//
//	disk := billy.NewLocal("/home/me/imagedesk")
//	data, err := disk.ReadFile("projects/holiday/image_evals.json")
//
//	mem := billy.NewMemory()
//	err = mem.WriteFile("projects/holiday/images/a.jpg", jpegBytes, 0o644)
//
// Both types resolve names to absolute paths through core.PathResolver.
//
// # Thread Safety
//
// FS instances are safe for concurrent use by multiple goroutines.
// File handles are not.
package billy

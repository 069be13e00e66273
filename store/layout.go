package store

import "path"

// Directory and file names of the project layout.
const (
	ProjectsDir = "projects"
	ArchivedDir = "archived"
	ImagesDir   = "images"
	LedgerFile  = "image_evals.json"
	InfoFile    = "info.imgreader"
)

// ProjectDir returns the directory of an active project.
func ProjectDir(project string) string {
	return path.Join(ProjectsDir, project)
}

// ArchivedProjectDir returns the directory of an archived project.
func ArchivedProjectDir(project string) string {
	return path.Join(ArchivedDir, project)
}

// ImagesPath returns the image root of a project, or the path of name
// inside it when name is given.
func ImagesPath(project string, name ...string) string {
	return path.Join(append([]string{ProjectsDir, project, ImagesDir}, name...)...)
}

// LedgerPath returns the evaluation ledger path of a project.
func LedgerPath(project string) string {
	return path.Join(ProjectsDir, project, LedgerFile)
}

// InfoPath returns the metadata file path of a project.
func InfoPath(project string) string {
	return path.Join(ProjectsDir, project, InfoFile)
}

package imagecache

import (
	"context"
	"path"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/internal/validate"
	"github.com/jmgilman/imagedesk/store"
)

// CreateFolder creates an empty folder in the project's image root.
func (m *Manager) CreateFolder(ctx context.Context, project, folder string) error {
	if err := validate.ProjectName(project); err != nil {
		return err
	}
	if err := validate.FolderName(folder); err != nil {
		return err
	}

	dir := store.ImagesPath(project, folder)
	exists, err := m.store.Exists(ctx, dir)
	if err != nil {
		return err
	}
	if exists {
		return errors.WithContextMap(
			errors.Newf(errors.CodeAlreadyExists, "folder %q already exists", folder),
			map[string]interface{}{"project": project, "folder": folder},
		)
	}
	return m.store.EnsureDirectory(ctx, dir)
}

// ListFolders returns the folder names in the project's image root, sorted.
func (m *Manager) ListFolders(ctx context.Context, project string) ([]string, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	entries, err := m.store.ListEntries(ctx, store.ImagesPath(project))
	if err != nil {
		return nil, errors.WithContext(err, "project", project)
	}

	folders := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			folders = append(folders, e.Name)
		}
	}
	return folders, nil
}

// RenameFolder renames a folder and returns the old and new relative name of
// every image inside it. The project's caches are cleared.
func (m *Manager) RenameFolder(ctx context.Context, project, from, to string) ([]Rename, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	if err := validate.FolderName(from); err != nil {
		return nil, err
	}
	if err := validate.FolderName(to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, nil
	}

	files, err := m.folderFiles(ctx, project, from)
	if err != nil {
		return nil, err
	}

	if err := m.store.RenameDirectory(ctx, store.ImagesPath(project, from), store.ImagesPath(project, to)); err != nil {
		return nil, errors.WithContextMap(err, map[string]interface{}{"project": project, "folder": from})
	}
	m.InvalidateProject(ctx, project)

	renames := make([]Rename, len(files))
	for i, file := range files {
		renames[i] = Rename{From: from + "/" + file, To: to + "/" + file}
	}
	return renames, nil
}

// DeleteFolder deletes a folder with its images and returns the relative
// names of the deleted images. Their cache entries are evicted.
func (m *Manager) DeleteFolder(ctx context.Context, project, folder string) ([]string, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	if err := validate.FolderName(folder); err != nil {
		return nil, err
	}

	files, err := m.folderFiles(ctx, project, folder)
	if err != nil {
		return nil, err
	}
	if err := m.store.DeleteDirectory(ctx, store.ImagesPath(project, folder)); err != nil {
		return nil, errors.WithContextMap(err, map[string]interface{}{"project": project, "folder": folder})
	}

	names := make([]string, len(files))
	for i, file := range files {
		names[i] = folder + "/" + file
		m.evict(ctx, project, names[i])
	}
	return names, nil
}

func (m *Manager) folderFiles(ctx context.Context, project, folder string) ([]string, error) {
	entries, err := m.store.ListEntries(ctx, path.Join(store.ImagesPath(project), folder))
	if err != nil {
		return nil, errors.WithContextMap(err, map[string]interface{}{"project": project, "folder": folder})
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir {
			files = append(files, e.Name)
		}
	}
	return files, nil
}

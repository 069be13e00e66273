package project

import (
	"context"
	"sort"
	"time"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/internal/logging"
	"github.com/jmgilman/imagedesk/internal/validate"
	"github.com/jmgilman/imagedesk/store"
)

// Info is the metadata stored in a project's info file.
type Info struct {
	ProjectName string `json:"projectName"`
	// LastOpenedAt is a Unix timestamp in seconds. It is nil for projects
	// that were never opened.
	LastOpenedAt *int64 `json:"lastOpenedAt"`
}

// Invalidator drops cached data of a project. *imagecache.Manager
// implements it.
type Invalidator interface {
	InvalidateProject(ctx context.Context, project string) int
}

// Manager creates, lists, archives and deletes projects.
type Manager struct {
	store  *store.Store
	cache  Invalidator
	now    func() time.Time
	logger *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock sets the time source used for LastOpenedAt.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager. cache may be nil when nothing is cached.
func NewManager(st *store.Store, cache Invalidator, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  st,
		cache:  cache,
		now:    time.Now,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates an empty project and records it as opened now.
func (m *Manager) Create(ctx context.Context, name string) (Info, error) {
	if err := validate.ProjectName(name); err != nil {
		return Info{}, err
	}
	for _, dir := range []string{store.ProjectDir(name), store.ArchivedProjectDir(name)} {
		exists, err := m.store.Exists(ctx, dir)
		if err != nil {
			return Info{}, err
		}
		if exists {
			return Info{}, errors.WithContext(
				errors.Newf(errors.CodeAlreadyExists, "project %q already exists", name),
				"project", name,
			)
		}
	}

	if err := m.store.EnsureDirectory(ctx, store.ImagesPath(name)); err != nil {
		return Info{}, err
	}
	opened := m.now().Unix()
	info := Info{ProjectName: name, LastOpenedAt: &opened}
	if err := m.store.WriteJSON(ctx, store.InfoPath(name), info); err != nil {
		return Info{}, err
	}

	m.logger.WithOperation("create_project").WithProject(name).Info(ctx, "created project")
	return info, nil
}

// Get reads the project's metadata.
func (m *Manager) Get(ctx context.Context, name string) (Info, error) {
	if err := validate.ProjectName(name); err != nil {
		return Info{}, err
	}
	info, err := store.ReadJSON[Info](ctx, m.store, store.InfoPath(name))
	if err != nil {
		if store.IsNotExist(err) {
			return Info{}, errors.WrapWithContext(err, errors.CodeNotFound, "project not found",
				map[string]interface{}{"project": name})
		}
		return Info{}, errors.WithContext(err, "project", name)
	}
	return info, nil
}

// RecordOpened stamps the project as opened now. A missing info file is
// recreated.
func (m *Manager) RecordOpened(ctx context.Context, name string) (Info, error) {
	if err := validate.ProjectName(name); err != nil {
		return Info{}, err
	}
	exists, err := m.store.Exists(ctx, store.ProjectDir(name))
	if err != nil {
		return Info{}, err
	}
	if !exists {
		return Info{}, errors.WithContext(
			errors.Newf(errors.CodeNotFound, "project %q not found", name), "project", name)
	}

	info, err := m.Get(ctx, name)
	if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
		return Info{}, err
	}
	info.ProjectName = name
	opened := m.now().Unix()
	info.LastOpenedAt = &opened

	if err := m.store.WriteJSON(ctx, store.InfoPath(name), info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Names lists active projects, most recently opened first. Projects never
// opened, or whose info file cannot be read, come last. Ties are broken
// by name.
func (m *Manager) Names(ctx context.Context) ([]string, error) {
	dirs, err := m.dirs(ctx, store.ProjectsDir)
	if err != nil {
		return nil, err
	}

	opened := make(map[string]int64, len(dirs))
	for _, name := range dirs {
		info, err := store.ReadJSON[Info](ctx, m.store, store.InfoPath(name))
		if err != nil {
			m.logger.WithProject(name).Debug(ctx, "project has no readable info file", "error", err.Error())
			continue
		}
		if info.LastOpenedAt != nil {
			opened[name] = *info.LastOpenedAt
		}
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		ti, iok := opened[dirs[i]]
		tj, jok := opened[dirs[j]]
		if iok != jok {
			return iok
		}
		if ti != tj {
			return ti > tj
		}
		return dirs[i] < dirs[j]
	})
	return dirs, nil
}

// ArchivedNames lists archived projects by name.
func (m *Manager) ArchivedNames(ctx context.Context) ([]string, error) {
	return m.dirs(ctx, store.ArchivedDir)
}

func (m *Manager) dirs(ctx context.Context, root string) ([]string, error) {
	entries, err := m.store.ListEntries(ctx, root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Archive moves a project to the archive.
func (m *Manager) Archive(ctx context.Context, name string) error {
	if err := validate.ProjectName(name); err != nil {
		return err
	}
	if err := m.store.RenameDirectory(ctx, store.ProjectDir(name), store.ArchivedProjectDir(name)); err != nil {
		return errors.WithContext(err, "project", name)
	}
	m.invalidate(ctx, name)
	m.logger.WithOperation("archive_project").WithProject(name).Info(ctx, "archived project")
	return nil
}

// Unarchive moves an archived project back to the active projects.
func (m *Manager) Unarchive(ctx context.Context, name string) error {
	if err := validate.ProjectName(name); err != nil {
		return err
	}
	if err := m.store.RenameDirectory(ctx, store.ArchivedProjectDir(name), store.ProjectDir(name)); err != nil {
		return errors.WithContext(err, "project", name)
	}
	m.invalidate(ctx, name)
	m.logger.WithOperation("unarchive_project").WithProject(name).Info(ctx, "unarchived project")
	return nil
}

// Delete removes an active project with all its images and records.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if err := validate.ProjectName(name); err != nil {
		return err
	}
	if err := m.store.DeleteDirectory(ctx, store.ProjectDir(name)); err != nil {
		return errors.WithContext(err, "project", name)
	}
	m.invalidate(ctx, name)
	m.logger.WithOperation("delete_project").WithProject(name).Info(ctx, "deleted project")
	return nil
}

// DeleteArchived removes an archived project.
func (m *Manager) DeleteArchived(ctx context.Context, name string) error {
	if err := validate.ProjectName(name); err != nil {
		return err
	}
	if err := m.store.DeleteDirectory(ctx, store.ArchivedProjectDir(name)); err != nil {
		return errors.WithContext(err, "project", name)
	}
	return nil
}

func (m *Manager) invalidate(ctx context.Context, name string) {
	if m.cache != nil {
		m.cache.InvalidateProject(ctx, name)
	}
}

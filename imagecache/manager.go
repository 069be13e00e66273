package imagecache

import (
	"context"
	"encoding/base64"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/imaging"
	"github.com/jmgilman/imagedesk/internal/cache"
	"github.com/jmgilman/imagedesk/internal/logging"
	"github.com/jmgilman/imagedesk/internal/validate"
	"github.com/jmgilman/imagedesk/store"
)

// Manager owns the preview and full-image caches.
type Manager struct {
	store *store.Store

	previews *cache.Map[Preview]
	full     *cache.Map[FullImage]

	maxDecodes int64
	decodeSem  *semaphore.Weighted
	generator  PreviewGenerator
	probe      imaging.ProberFunc

	// gens makes inserts from decodes that started before an invalidation
	// no-ops.
	gens *cache.Generations

	logger  *logging.Logger
	metrics *cache.Metrics
}

// New creates a Manager reading images through st.
func New(st *store.Store, opts ...Option) (*Manager, error) {
	if st == nil {
		return nil, errors.New(errors.CodeInvalidInput, "store cannot be nil")
	}

	m := &Manager{
		store:      st,
		previews:   cache.NewMap[Preview](),
		full:       cache.NewMap[FullImage](),
		maxDecodes: DefaultMaxConcurrentDecodes,
		generator:  imaging.NewGenerator(imaging.DefaultThumbnailer()),
		probe:      imaging.Probe,
		logger:     logging.NewNopLogger(),
		metrics:    cache.NewMetrics(),
		gens:       cache.NewGenerations(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.decodeSem = semaphore.NewWeighted(m.maxDecodes)
	return m, nil
}

// ImageNames returns the relative names of every image in the project:
// files directly in the image root plus files one folder deep. Dot files
// are skipped. The result is sorted with root files first.
func (m *Manager) ImageNames(ctx context.Context, project string) ([]string, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}

	root := store.ImagesPath(project)
	entries, err := m.store.ListEntries(ctx, root)
	if err != nil {
		return nil, errors.WithContext(err, "project", project)
	}

	var names []string
	var folders []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		if e.IsDir {
			folders = append(folders, e.Name)
			continue
		}
		names = append(names, e.Name)
	}

	for _, folder := range folders {
		children, err := m.store.ListEntries(ctx, path.Join(root, folder))
		if err != nil {
			return nil, errors.WithContext(err, "project", project)
		}
		for _, c := range children {
			if c.IsDir || strings.HasPrefix(c.Name, ".") {
				continue
			}
			names = append(names, folder+"/"+c.Name)
		}
	}
	return names, nil
}

// ListPreviews returns a preview for every image in the project. Images
// whose preview cannot be produced are logged and left out. Only a failure
// to list the project fails the call.
func (m *Manager) ListPreviews(ctx context.Context, project string) ([]Preview, error) {
	res, err := m.ListPreviewsDetailed(ctx, project)
	if err != nil {
		return nil, err
	}
	return res.Previews, nil
}

// ListPreviewsDetailed is ListPreviews that also reports skipped images.
func (m *Manager) ListPreviewsDetailed(ctx context.Context, project string) (ListResult, error) {
	logger := m.logger.WithOperation("list_previews").WithProject(project)
	start := time.Now()
	gen := m.gens.Current(project)

	names, err := m.ImageNames(ctx, project)
	if err != nil {
		return ListResult{}, err
	}

	var res ListResult
	var pending []string
	for _, name := range names {
		if p, ok := m.previews.Get(cache.NewKey(project, name)); ok {
			m.metrics.RecordHit(cache.KindPreview)
			res.Previews = append(res.Previews, p)
			continue
		}
		m.metrics.RecordMiss(cache.KindPreview)
		pending = append(pending, name)
	}

	var mu sync.Mutex
	var g errgroup.Group
	for i, name := range pending {
		if err := m.decodeSem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			for _, skipped := range pending[i:] {
				res.Failures = append(res.Failures, Failure{Name: skipped, Err: err})
			}
			mu.Unlock()
			break
		}
		name := name
		g.Go(func() error {
			defer m.decodeSem.Release(1)

			preview, err := m.generatePreview(ctx, project, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn(ctx, "failed to generate preview", "image", name, "error", err.Error())
				res.Failures = append(res.Failures, Failure{Name: name, Err: err})
				return nil
			}
			m.gens.IfCurrent(project, gen, func() {
				m.previews.Put(cache.NewKey(project, name), preview)
				m.metrics.RecordInsert()
			})
			res.Previews = append(res.Previews, preview)
			return nil
		})
	}
	_ = g.Wait()

	logger.WithDuration(time.Since(start)).Debug(ctx, "listed previews",
		"total", len(names),
		"generated", len(pending)-len(res.Failures),
		"failed", len(res.Failures))
	return res, nil
}

func (m *Manager) generatePreview(ctx context.Context, project, name string) (Preview, error) {
	data, err := m.store.ReadBytes(ctx, store.ImagesPath(project, name))
	if err != nil {
		return Preview{}, err
	}

	done := m.metrics.DecodeStarted()
	thumb, err := m.generator.Generate(data, name)
	done(err)
	if err != nil {
		return Preview{}, err
	}

	return Preview{
		Name:      name,
		Base64:    thumb.Base64,
		Width:     thumb.Width,
		Height:    thumb.Height,
		SizeBytes: int64(len(data)),
	}, nil
}

// LoadFull returns the full-resolution image, reading it on a cache miss.
// Dimensions come from the image header; an unreadable header yields 0x0.
func (m *Manager) LoadFull(ctx context.Context, project, name string) (FullImage, error) {
	if err := validate.ProjectName(project); err != nil {
		return FullImage{}, err
	}
	if err := validate.RelativeName(name); err != nil {
		return FullImage{}, err
	}

	key := cache.NewKey(project, name)
	if img, ok := m.full.Get(key); ok {
		m.metrics.RecordHit(cache.KindFull)
		return img, nil
	}
	m.metrics.RecordMiss(cache.KindFull)
	gen := m.gens.Current(project)

	data, err := m.store.ReadBytes(ctx, store.ImagesPath(project, name))
	if err != nil {
		return FullImage{}, errors.WithContext(err, "project", project)
	}

	width, height, err := m.probe(data)
	if err != nil {
		m.logger.WithOperation("load_full").WithProject(project).Debug(ctx,
			"failed to read image dimensions", "image", name, "error", err.Error())
		width, height = 0, 0
	}

	img := FullImage{
		Name:      name,
		Base64:    base64.StdEncoding.EncodeToString(data),
		Width:     width,
		Height:    height,
		SizeBytes: int64(len(data)),
	}
	m.gens.IfCurrent(project, gen, func() {
		m.full.Put(key, img)
		m.metrics.RecordInsert()
	})
	return img, nil
}

// Import copies the host files in sources into the project, under folder
// when it is not empty, and returns their new relative names. All names are
// validated before anything is copied. The project's caches are cleared
// afterwards, also when a copy fails part way.
func (m *Manager) Import(ctx context.Context, project string, sources []string, folder string) ([]string, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	if folder != "" {
		if err := validate.FolderName(folder); err != nil {
			return nil, err
		}
	}

	names := make([]string, len(sources))
	for i, src := range sources {
		base, err := validate.BaseName(src)
		if err != nil {
			return nil, err
		}
		if err := validate.FileName(base); err != nil {
			return nil, err
		}
		names[i] = joinName(folder, base)
	}

	defer m.InvalidateProject(ctx, project)

	for i, src := range sources {
		if err := m.store.Copy(ctx, src, store.ImagesPath(project, names[i])); err != nil {
			return nil, errors.WithContext(err, "project", project)
		}
	}

	m.logger.WithOperation("import").WithProject(project).Info(ctx, "imported images",
		"count", len(sources), "folder", folder)
	return names, nil
}

// Delete removes the named images and their cache entries. Deleting an
// image that does not exist is an IO_FAILURE; images before it in names
// are already gone.
func (m *Manager) Delete(ctx context.Context, project string, names []string) error {
	if err := validate.ProjectName(project); err != nil {
		return err
	}
	for _, name := range names {
		if err := validate.RelativeName(name); err != nil {
			return err
		}
	}

	for _, name := range names {
		if err := m.store.DeleteFile(ctx, store.ImagesPath(project, name)); err != nil {
			return errors.WithContext(err, "project", project)
		}
		m.evict(ctx, project, name)
	}
	return nil
}

// Move moves the named images into folder, or into the image root when
// folder is empty, and returns their new names in input order. Images
// already in place are left alone. Moving onto an existing file is an
// ALREADY_EXISTS error. On error the names of the images handled before
// the failure are returned with it, so moved[i] is the new name of
// names[i]. The project's caches are cleared afterwards.
func (m *Manager) Move(ctx context.Context, project string, names []string, folder string) ([]string, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	if folder != "" {
		if err := validate.FolderName(folder); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if err := validate.RelativeName(name); err != nil {
			return nil, err
		}
	}

	defer m.InvalidateProject(ctx, project)

	moved := make([]string, 0, len(names))
	for _, name := range names {
		target := joinName(folder, path.Base(name))
		if target == name {
			moved = append(moved, target)
			continue
		}

		dst := store.ImagesPath(project, target)
		exists, err := m.store.Exists(ctx, dst)
		if err != nil {
			return moved, err
		}
		if exists {
			return moved, errors.WithContextMap(
				errors.Newf(errors.CodeAlreadyExists, "cannot move %s: %s already exists", name, target),
				map[string]interface{}{"project": project, "image": name},
			)
		}
		if err := m.store.Rename(ctx, store.ImagesPath(project, name), dst); err != nil {
			return moved, errors.WithContext(err, "project", project)
		}
		moved = append(moved, target)
	}
	return moved, nil
}

// InvalidateProject drops every cached entry of project and returns how many
// entries were removed.
func (m *Manager) InvalidateProject(ctx context.Context, project string) int {
	m.gens.Bump(project)
	n := m.previews.DeleteProject(project)
	n += m.full.DeleteProject(project)
	m.metrics.RecordInvalidation(n)
	m.logger.WithProject(project).Debug(ctx, "invalidated project cache", "entries", n)
	return n
}

func (m *Manager) evict(ctx context.Context, project, name string) {
	m.gens.Bump(project)
	key := cache.NewKey(project, name)
	n := 0
	if m.previews.Delete(key) {
		n++
	}
	if m.full.Delete(key) {
		n++
	}
	m.metrics.RecordInvalidation(n)
	if n > 0 {
		m.logger.WithProject(project).Debug(ctx, "evicted image", "image", name, "entries", n)
	}
}

// Stats returns the size of both caches and the collected metrics.
func (m *Manager) Stats() Stats {
	return Stats{
		Previews:   m.previews.Len(),
		FullImages: m.full.Len(),
		Metrics:    m.metrics.Snapshot(),
	}
}

func joinName(folder, file string) string {
	if folder == "" {
		return file
	}
	return folder + "/" + file
}

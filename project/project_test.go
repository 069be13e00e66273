package project

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/evaluation"
	"github.com/jmgilman/imagedesk/fs/billy"
	"github.com/jmgilman/imagedesk/imagecache"
	"github.com/jmgilman/imagedesk/store"
)

type fakeInvalidator struct {
	mu       sync.Mutex
	projects []string
}

func (f *fakeInvalidator) InvalidateProject(_ context.Context, project string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, project)
	return 0
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestManager(t *testing.T) (*Manager, *store.Store, *fakeInvalidator, *clock) {
	t.Helper()
	st, err := store.New(billy.NewMemory(), store.WithHostFS(billy.NewMemory()))
	require.NoError(t, err)
	inv := &fakeInvalidator{}
	clk := &clock{now: time.Unix(1000, 0)}
	return NewManager(st, inv, WithClock(clk.Now)), st, inv, clk
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	m, st, _, _ := newTestManager(t)

	info, err := m.Create(ctx, "holiday")
	require.NoError(t, err)
	assert.Equal(t, "holiday", info.ProjectName)
	require.NotNil(t, info.LastOpenedAt)
	assert.Equal(t, int64(1000), *info.LastOpenedAt)

	ok, err := st.Exists(ctx, store.ImagesPath("holiday"))
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := st.ReadBytes(ctx, store.InfoPath("holiday"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"projectName":"holiday","lastOpenedAt":1000}`, string(data))

	got, err := m.Get(ctx, "holiday")
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestManager_CreateErrors(t *testing.T) {
	ctx := context.Background()
	m, _, _, _ := newTestManager(t)

	_, err := m.Create(ctx, "p")
	require.NoError(t, err)

	_, err = m.Create(ctx, "p")
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyExists))

	require.NoError(t, m.Archive(ctx, "p"))
	_, err = m.Create(ctx, "p")
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyExists), "archived name is taken")

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		_, err = m.Create(ctx, name)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidName), name)
	}
}

func TestManager_GetMissing(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	_, err := m.Get(context.Background(), "nope")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestManager_NamesOrderedByLastOpened(t *testing.T) {
	ctx := context.Background()
	m, st, _, clk := newTestManager(t)

	clk.now = time.Unix(100, 0)
	_, err := m.Create(ctx, "alpha")
	require.NoError(t, err)
	clk.now = time.Unix(300, 0)
	_, err = m.Create(ctx, "beta")
	require.NoError(t, err)

	// Directories without an info file sort last, by name.
	require.NoError(t, st.EnsureDirectory(ctx, store.ImagesPath("zeta")))
	require.NoError(t, st.EnsureDirectory(ctx, store.ImagesPath("gamma")))
	require.NoError(t, st.FS().WriteFile(store.ProjectsDir+"/stray.txt", []byte("x"), 0o644))

	names, err := m.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "alpha", "gamma", "zeta"}, names)

	clk.now = time.Unix(500, 0)
	info, err := m.RecordOpened(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(500), *info.LastOpenedAt)

	clk.now = time.Unix(600, 0)
	_, err = m.RecordOpened(ctx, "zeta")
	require.NoError(t, err)

	names, err = m.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "beta", "gamma"}, names)
}

func TestManager_RecordOpenedMissing(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	_, err := m.RecordOpened(context.Background(), "nope")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestManager_ArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, st, inv, _ := newTestManager(t)

	_, err := m.Create(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, st.FS().WriteFile(store.ImagesPath("p", "a.jpg"), []byte("a"), 0o644))

	require.NoError(t, m.Archive(ctx, "p"))

	names, err := m.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	archived, err := m.ArchivedNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, archived)

	require.NoError(t, m.Unarchive(ctx, "p"))
	names, err = m.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, names)

	data, err := st.ReadBytes(ctx, store.ImagesPath("p", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	assert.Equal(t, []string{"p", "p"}, inv.projects)
}

func TestManager_ArchiveErrors(t *testing.T) {
	ctx := context.Background()
	m, _, _, _ := newTestManager(t)

	err := m.Archive(ctx, "missing")
	assert.True(t, errors.HasCode(err, errors.CodeIO))

	_, err = m.Create(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, m.Archive(ctx, "p"))
	_, err = m.Create(ctx, "p2")
	require.NoError(t, err)

	err = m.Unarchive(ctx, "p2")
	assert.True(t, errors.HasCode(err, errors.CodeIO))
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	m, _, inv, _ := newTestManager(t)

	_, err := m.Create(ctx, "a")
	require.NoError(t, err)
	_, err = m.Create(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, m.Archive(ctx, "b"))

	require.NoError(t, m.Delete(ctx, "a"))
	require.NoError(t, m.DeleteArchived(ctx, "b"))

	names, err := m.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	archived, err := m.ArchivedNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)
	assert.Contains(t, inv.projects, "a")

	assert.True(t, errors.HasCode(m.Delete(ctx, "a"), errors.CodeIO))
	assert.True(t, errors.HasCode(m.DeleteArchived(ctx, "b"), errors.CodeIO))
}

type serviceFixture struct {
	svc    *Service
	images *imagecache.Manager
	ledger *evaluation.Ledger
	st     *store.Store
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.New(billy.NewMemory(), store.WithHostFS(billy.NewMemory()))
	require.NoError(t, err)
	images, err := imagecache.New(st)
	require.NoError(t, err)
	ledger := evaluation.NewLedger(st, nil)

	_, err = NewManager(st, images).Create(ctx, "p")
	require.NoError(t, err)

	return &serviceFixture{
		svc:    NewService(images, ledger, nil),
		images: images,
		ledger: ledger,
		st:     st,
	}
}

func (f *serviceFixture) seed(t *testing.T, names ...string) {
	t.Helper()
	ctx := context.Background()
	records := make([]evaluation.Record, len(names))
	for i, name := range names {
		require.NoError(t, f.st.FS().WriteFile(store.ImagesPath("p", name), []byte(name), 0o644))
		records[i] = evaluation.Record{
			ImageName: name,
			Result:    &evaluation.Result{OriginalImagePath: "/" + name, BriefDescription: "desc " + name},
		}
	}
	_, err := f.ledger.Upsert(ctx, "p", records)
	require.NoError(t, err)
}

func recordNames(t *testing.T, l *evaluation.Ledger) []string {
	t.Helper()
	records, err := l.Read(context.Background(), "p")
	require.NoError(t, err)
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.ImageName
	}
	return names
}

func TestService_DeleteImages(t *testing.T) {
	f := newServiceFixture(t)
	f.seed(t, "a.jpg", "b.jpg", "c.jpg")

	require.NoError(t, f.svc.DeleteImages(context.Background(), "p", []string{"a.jpg", "c.jpg"}))

	names, err := f.images.ImageNames(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg"}, names)
	assert.Equal(t, []string{"b.jpg"}, recordNames(t, f.ledger))
}

func TestService_DeleteImagesMissingKeepsRecords(t *testing.T) {
	f := newServiceFixture(t)
	f.seed(t, "a.jpg")

	err := f.svc.DeleteImages(context.Background(), "p", []string{"missing.jpg"})
	assert.True(t, errors.HasCode(err, errors.CodeIO))
	assert.Equal(t, []string{"a.jpg"}, recordNames(t, f.ledger))
}

func TestService_MoveImages(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, "a.jpg", "b.jpg")
	require.NoError(t, f.images.CreateFolder(ctx, "p", "cats"))

	moved, err := f.svc.MoveImages(ctx, "p", []string{"a.jpg", "b.jpg"}, "cats")
	require.NoError(t, err)
	assert.Equal(t, []string{"cats/a.jpg", "cats/b.jpg"}, moved)
	assert.Equal(t, []string{"cats/a.jpg", "cats/b.jpg"}, recordNames(t, f.ledger))

	records, err := f.ledger.Read(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "desc a.jpg", records[0].Result.BriefDescription)

	moved, err = f.svc.MoveImages(ctx, "p", []string{"cats/a.jpg"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, moved)
	assert.Equal(t, []string{"a.jpg", "cats/b.jpg"}, recordNames(t, f.ledger))
}

func TestService_MoveImagesCollision(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, "a.jpg", "cats/a.jpg")

	_, err := f.svc.MoveImages(ctx, "p", []string{"a.jpg"}, "cats")
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyExists))
	assert.Equal(t, []string{"a.jpg", "cats/a.jpg"}, recordNames(t, f.ledger))
}

func TestService_MoveImagesPartialKeepsMovedRecords(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, "a.jpg", "b.jpg", "cats/b.jpg")

	moved, err := f.svc.MoveImages(ctx, "p", []string{"a.jpg", "b.jpg"}, "cats")
	assert.True(t, errors.HasCode(err, errors.CodeAlreadyExists))
	assert.Equal(t, []string{"cats/a.jpg"}, moved)
	assert.Equal(t, []string{"b.jpg", "cats/a.jpg", "cats/b.jpg"}, recordNames(t, f.ledger))

	dropped, err := f.svc.Reconcile(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, dropped)

	records, err := f.ledger.Read(ctx, "p")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "desc a.jpg", records[1].Result.BriefDescription)
}

func TestService_RenameFolder(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, "root.jpg", "cats/a.jpg", "cats/b.jpg")

	require.NoError(t, f.svc.RenameFolder(ctx, "p", "cats", "felines"))

	names, err := f.images.ImageNames(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"root.jpg", "felines/a.jpg", "felines/b.jpg"}, names)
	assert.Equal(t, []string{"felines/a.jpg", "felines/b.jpg", "root.jpg"}, recordNames(t, f.ledger))
}

func TestService_DeleteFolder(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, "root.jpg", "cats/a.jpg", "dogs/b.jpg")

	require.NoError(t, f.svc.DeleteFolder(ctx, "p", "cats"))

	folders, err := f.images.ListFolders(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"dogs"}, folders)
	assert.Equal(t, []string{"dogs/b.jpg", "root.jpg"}, recordNames(t, f.ledger))
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, "a.jpg", "b.jpg", "cats/c.jpg")

	// Files removed behind the service's back.
	require.NoError(t, f.st.FS().Remove(store.ImagesPath("p", "b.jpg")))
	require.NoError(t, f.st.FS().Remove(store.ImagesPath("p", "cats/c.jpg")))

	dropped, err := f.svc.Reconcile(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "cats/c.jpg"}, dropped)

	records, err := f.svc.Evaluations(ctx, "p")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a.jpg", records[0].ImageName)
}

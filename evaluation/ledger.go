package evaluation

import (
	"context"
	"sort"
	"sync"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/imagecache"
	"github.com/jmgilman/imagedesk/internal/logging"
	"github.com/jmgilman/imagedesk/internal/validate"
	"github.com/jmgilman/imagedesk/store"
)

// Ledger persists evaluation records per project.
type Ledger struct {
	store  *store.Store
	locks  sync.Map // map[string]*sync.Mutex, one per project
	logger *logging.Logger
}

// NewLedger creates a ledger stored in st.
func NewLedger(st *store.Store, logger *logging.Logger) *Ledger {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Ledger{store: st, logger: logger}
}

func (l *Ledger) lock(project string) func() {
	mu, _ := l.locks.LoadOrStore(project, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// Read returns the project's records. A project that was never evaluated
// has an empty ledger. A ledger that cannot be parsed is a LEDGER_CORRUPT
// error.
func (l *Ledger) Read(ctx context.Context, project string) ([]Record, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	unlock := l.lock(project)
	defer unlock()
	return l.read(ctx, project)
}

func (l *Ledger) read(ctx context.Context, project string) ([]Record, error) {
	p := store.LedgerPath(project)
	records, err := store.ReadJSON[[]Record](ctx, l.store, p)
	switch {
	case err == nil:
		if records == nil {
			records = []Record{}
		}
		return records, nil
	case store.IsNotExist(err):
		return []Record{}, nil
	case errors.GetCode(err) == errors.CodeInvalidInput:
		return nil, errors.WrapWithContext(err, errors.CodeLedgerCorrupt, "evaluation ledger is corrupt",
			map[string]interface{}{"project": project, "path": p})
	default:
		return nil, errors.WithContext(err, "project", project)
	}
}

// Write replaces the project's ledger with records.
func (l *Ledger) Write(ctx context.Context, project string, records []Record) error {
	if err := validate.ProjectName(project); err != nil {
		return err
	}
	unlock := l.lock(project)
	defer unlock()
	return l.write(ctx, project, records)
}

func (l *Ledger) write(ctx context.Context, project string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	if err := l.store.WriteJSON(ctx, store.LedgerPath(project), records); err != nil {
		return errors.WithContext(err, "project", project)
	}
	return nil
}

// Upsert merges records into the ledger, replacing existing records with
// the same name, and returns the merged ledger sorted by name.
func (l *Ledger) Upsert(ctx context.Context, project string, records []Record) ([]Record, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	unlock := l.lock(project)
	defer unlock()

	current, err := l.read(ctx, project)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]Record, len(current)+len(records))
	for _, r := range current {
		merged[r.ImageName] = r
	}
	for _, r := range records {
		merged[r.ImageName] = r
	}

	out := sortedRecords(merged)
	if err := l.write(ctx, project, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename rewrites the keys of records that were moved. A renamed record
// replaces any stale record already stored under its new name.
func (l *Ledger) Rename(ctx context.Context, project string, renames []imagecache.Rename) error {
	if err := validate.ProjectName(project); err != nil {
		return err
	}
	if len(renames) == 0 {
		return nil
	}
	unlock := l.lock(project)
	defer unlock()

	current, err := l.read(ctx, project)
	if err != nil {
		return err
	}

	to := make(map[string]string, len(renames))
	for _, r := range renames {
		if _, ok := to[r.From]; !ok {
			to[r.From] = r.To
		}
	}

	renamed := make(map[string]Record)
	var untouched []Record
	for _, r := range current {
		if newName, ok := to[r.ImageName]; ok && newName != r.ImageName {
			r.ImageName = newName
			renamed[newName] = r
			continue
		}
		untouched = append(untouched, r)
	}
	if len(renamed) == 0 {
		return nil
	}
	for _, r := range untouched {
		if _, ok := renamed[r.ImageName]; !ok {
			renamed[r.ImageName] = r
		}
	}

	l.logger.WithOperation("rename_evaluations").WithProject(project).Debug(ctx, "renamed records",
		"count", len(renames))
	return l.write(ctx, project, sortedRecords(renamed))
}

// Remove drops the records of names. An empty names list does nothing.
func (l *Ledger) Remove(ctx context.Context, project string, names []string) error {
	if err := validate.ProjectName(project); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	unlock := l.lock(project)
	defer unlock()

	current, err := l.read(ctx, project)
	if err != nil {
		return err
	}

	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := make([]Record, 0, len(current))
	for _, r := range current {
		if _, ok := drop[r.ImageName]; !ok {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(current) {
		return nil
	}
	return l.write(ctx, project, kept)
}

// Reconcile drops every record whose name is not in existing and returns
// the dropped names, sorted.
func (l *Ledger) Reconcile(ctx context.Context, project string, existing []string) ([]string, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	unlock := l.lock(project)
	defer unlock()

	current, err := l.read(ctx, project)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		present[n] = struct{}{}
	}
	var dropped []string
	kept := make([]Record, 0, len(current))
	for _, r := range current {
		if _, ok := present[r.ImageName]; ok {
			kept = append(kept, r)
			continue
		}
		dropped = append(dropped, r.ImageName)
	}
	if len(dropped) == 0 {
		return nil, nil
	}
	sort.Strings(dropped)

	if err := l.write(ctx, project, kept); err != nil {
		return nil, err
	}
	l.logger.WithOperation("reconcile").WithProject(project).Info(ctx, "dropped orphaned records",
		"dropped", dropped)
	return dropped, nil
}

func sortedRecords(m map[string]Record) []Record {
	out := make([]Record, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImageName < out[j].ImageName })
	return out
}

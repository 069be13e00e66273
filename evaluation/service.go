package evaluation

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/internal/logging"
	"github.com/jmgilman/imagedesk/internal/validate"
	"github.com/jmgilman/imagedesk/store"
)

// Service evaluates project images and merges the outcome into the ledger.
type Service struct {
	ledger *Ledger
	client Client
	tree   Tree
	store  *store.Store
	logger *logging.Logger
}

// NewService creates a Service.
func NewService(ledger *Ledger, client Client, tree Tree, st *store.Store, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{ledger: ledger, client: client, tree: tree, store: st, logger: logger}
}

// Evaluate sends the requested images that exist in the project to the
// client, upserts the results and returns the whole ledger sorted by name.
// Requested names not found in the project are ignored; when none are
// found the call fails with NO_MATCHING_IMAGES.
func (s *Service) Evaluate(ctx context.Context, project string, req Request) ([]Record, error) {
	if err := validate.ProjectName(project); err != nil {
		return nil, err
	}
	logger := s.logger.WithOperation("evaluate").WithProject(project)

	names, err := s.tree.ImageNames(ctx, project)
	if err != nil {
		return nil, err
	}

	requested := make(map[string]struct{}, len(req.ImageNames))
	for _, n := range req.ImageNames {
		requested[n] = struct{}{}
	}

	pathToName := make(map[string]string)
	var paths []string
	for _, n := range names {
		if _, ok := requested[n]; !ok {
			continue
		}
		abs := s.store.AbsPath(store.ImagesPath(project, n))
		pathToName[abs] = n
		paths = append(paths, abs)
	}

	if len(paths) == 0 {
		return nil, errors.WithContextMap(
			errors.Newf(errors.CodeNoMatchingImages,
				"no matching images found in project; requested: [%s]", strings.Join(req.ImageNames, ", ")),
			map[string]interface{}{"project": project, "requested": req.ImageNames},
		)
	}

	s.client.SetCredentials(req.APIKey)
	start := time.Now()
	results, err := s.client.Evaluate(ctx, paths)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeEvaluationFailed, "evaluation client failed",
			map[string]interface{}{"project": project, "images": len(paths)})
	}

	records := make([]Record, 0, len(results))
	failed := 0
	for _, r := range results {
		name, ok := pathToName[r.FullImagePath]
		if !ok {
			name = path.Base(strings.ReplaceAll(r.FullImagePath, `\`, "/"))
		}
		if r.Success == nil {
			failed++
		}
		records = append(records, Record{ImageName: name, Result: r.Success, FailReason: r.Failure})
	}

	merged, err := s.ledger.Upsert(ctx, project, records)
	if err != nil {
		return nil, err
	}

	logger.WithDuration(time.Since(start)).Info(ctx, "evaluated images",
		"requested", len(req.ImageNames), "evaluated", len(records), "failed", failed)
	return merged, nil
}

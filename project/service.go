package project

import (
	"context"

	"github.com/jmgilman/imagedesk/evaluation"
	"github.com/jmgilman/imagedesk/imagecache"
	"github.com/jmgilman/imagedesk/internal/logging"
)

// Service changes a project's image tree and keeps the ledger in step.
type Service struct {
	images *imagecache.Manager
	ledger *evaluation.Ledger
	logger *logging.Logger
}

// NewService creates a Service.
func NewService(images *imagecache.Manager, ledger *evaluation.Ledger, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{images: images, ledger: ledger, logger: logger}
}

// DeleteImages deletes images, their cache entries and their records.
func (s *Service) DeleteImages(ctx context.Context, project string, names []string) error {
	if err := s.images.Delete(ctx, project, names); err != nil {
		return err
	}
	return s.ledger.Remove(ctx, project, names)
}

// MoveImages moves images into folder, or the image root when folder is
// empty, re-keys their records and returns the new names in input order.
// When the move stops part way, the records of the images already moved
// are re-keyed before the error is returned.
func (s *Service) MoveImages(ctx context.Context, project string, names []string, folder string) ([]string, error) {
	moved, moveErr := s.images.Move(ctx, project, names, folder)

	var renames []imagecache.Rename
	for i, to := range moved {
		if names[i] != to {
			renames = append(renames, imagecache.Rename{From: names[i], To: to})
		}
	}
	if len(renames) > 0 {
		if err := s.ledger.Rename(ctx, project, renames); err != nil {
			s.logger.WithOperation("move_images").WithProject(project).LogError(ctx, err,
				"images moved but records were not renamed")
			if moveErr == nil {
				return moved, err
			}
		}
	}
	return moved, moveErr
}

// RenameFolder renames a folder and re-keys the records of its images.
func (s *Service) RenameFolder(ctx context.Context, project, from, to string) error {
	renames, err := s.images.RenameFolder(ctx, project, from, to)
	if err != nil {
		return err
	}
	return s.ledger.Rename(ctx, project, renames)
}

// DeleteFolder deletes a folder with its images and their records.
func (s *Service) DeleteFolder(ctx context.Context, project, folder string) error {
	names, err := s.images.DeleteFolder(ctx, project, folder)
	if err != nil {
		return err
	}
	return s.ledger.Remove(ctx, project, names)
}

// Evaluations returns the project's ledger.
func (s *Service) Evaluations(ctx context.Context, project string) ([]evaluation.Record, error) {
	return s.ledger.Read(ctx, project)
}

// Reconcile drops records of images that no longer exist and returns
// their names.
func (s *Service) Reconcile(ctx context.Context, project string) ([]string, error) {
	names, err := s.images.ImageNames(ctx, project)
	if err != nil {
		return nil, err
	}
	return s.ledger.Reconcile(ctx, project, names)
}

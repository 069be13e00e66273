package evaluation

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/fs/billy"
	"github.com/jmgilman/imagedesk/fs/core"
	"github.com/jmgilman/imagedesk/internal/logging"
	"github.com/jmgilman/imagedesk/internal/validate"
)

// UnknownSuffix is used when a result carries no suggested suffix.
const UnknownSuffix = "_UNKNOWN"

var suffixSeparators = strings.NewReplacer("/", "", `\`, "")

// ExportFailure records an image that could not be exported.
type ExportFailure struct {
	ImageName string
	Err       error
}

// ExportResult lists the files written and the images that failed.
type ExportResult struct {
	Files    []string
	Failures []ExportFailure
}

// Exporter copies successfully evaluated images to an output directory,
// renamed with their suggested suffix.
type Exporter struct {
	source core.ReadFS
	logger *logging.Logger
}

// NewExporter creates an Exporter that reads the images at their
// OriginalImagePath through source. A nil source reads from the local disk.
func NewExporter(source core.ReadFS, logger *logging.Logger) *Exporter {
	if source == nil {
		source = billy.NewLocal("/")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Exporter{source: source, logger: logger}
}

// ExportToDir exports records into the local directory dir, creating it.
func (e *Exporter) ExportToDir(ctx context.Context, records []Record, dir string) (ExportResult, error) {
	if err := billy.NewLocal("/").MkdirAll(dir, 0o755); err != nil {
		return ExportResult{}, errors.WrapWithContext(err, errors.CodeIO, "failed to create output directory",
			map[string]interface{}{"path": dir})
	}
	return e.Export(ctx, records, billy.NewLocal(dir))
}

// Export writes each successful record's image to out as
// <stem><suffix>.<ext>. Name clashes, within this export or with files
// already in out, get a counter: <stem><suffix>_2.<ext>, _3 and so on.
// Failed records are skipped. A failed copy is collected in the result
// and does not stop the export. The root of out must exist.
func (e *Exporter) Export(ctx context.Context, records []Record, out core.FS) (ExportResult, error) {
	logger := e.logger.WithOperation("export")

	var res ExportResult
	used := make(map[string]struct{})
	for _, r := range records {
		if !r.Succeeded() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, errors.Wrap(err, errors.CodeTimeout, "export cancelled")
		}

		name, err := e.targetName(r.Result, used, out)
		if err != nil {
			res.Failures = append(res.Failures, ExportFailure{ImageName: r.ImageName, Err: err})
			continue
		}
		used[name] = struct{}{}

		if err := core.CopyFile(e.source, r.Result.OriginalImagePath, out, name); err != nil {
			wrapped := errors.WrapWithContext(err, errors.CodeIO, "failed to export image",
				map[string]interface{}{"image": r.ImageName, "source": r.Result.OriginalImagePath})
			logger.Error(ctx, "failed to export image", "image", r.ImageName, "error", err.Error())
			res.Failures = append(res.Failures, ExportFailure{ImageName: r.ImageName, Err: wrapped})
			continue
		}
		res.Files = append(res.Files, name)
	}

	logger.Info(ctx, "exported images", "files", len(res.Files), "failed", len(res.Failures))
	return res, nil
}

func (e *Exporter) targetName(r *Result, used map[string]struct{}, out core.FS) (string, error) {
	suffix := UnknownSuffix
	if r.NewSuggestedFilepathSuffix != nil {
		suffix = *r.NewSuggestedFilepathSuffix
	}

	// The suffix comes from the evaluation client and must not add path
	// components.
	suffix = suffixSeparators.Replace(suffix)

	file := path.Base(strings.ReplaceAll(r.OriginalImagePath, `\`, "/"))
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	base := stem + suffix

	candidate := base + ext
	if err := validate.FileName(candidate); err != nil {
		return "", err
	}
	for counter := 2; ; counter++ {
		if _, taken := used[candidate]; !taken {
			exists, err := out.Exists(candidate)
			if err != nil {
				return "", errors.Wrap(err, errors.CodeIO, "failed to check export target")
			}
			if !exists {
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

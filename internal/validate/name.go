// Package validate checks the names that become path components and cache
// keys: project names, folder names, file names and image relative names.
package validate

import (
	"path"
	"strings"
	"unicode"

	"github.com/jmgilman/imagedesk/errors"
)

// NameValidator validates single path components and relative image names.
type NameValidator struct {
	// AllowHiddenFiles determines whether names starting with "." are allowed.
	AllowHiddenFiles bool
}

// NewNameValidator creates a NameValidator with default settings.
func NewNameValidator() *NameValidator {
	return &NameValidator{AllowHiddenFiles: true}
}

// Component validates a single path component such as a project, folder or
// file name. kind is used in the error message ("project", "folder", ...).
func (v *NameValidator) Component(kind, name string) error {
	if err := v.component(name); err != nil {
		return errors.WithContextMap(
			errors.Newf(errors.CodeInvalidName, "invalid %s name %q: %s", kind, name, err),
			map[string]interface{}{"kind": kind, "name": name},
		)
	}
	return nil
}

// Relative validates an image relative name: "file" or "folder/file".
func (v *NameValidator) Relative(name string) error {
	parts := strings.Split(name, "/")
	if len(parts) > 2 {
		return errors.WithContext(
			errors.Newf(errors.CodeInvalidName, "invalid image name %q: nesting deeper than one folder", name),
			"name", name,
		)
	}
	for _, part := range parts {
		if err := v.component(part); err != nil {
			return errors.WithContext(
				errors.Newf(errors.CodeInvalidName, "invalid image name %q: %s", name, err),
				"name", name,
			)
		}
	}
	return nil
}

func (v *NameValidator) component(name string) error {
	if strings.TrimSpace(name) == "" {
		return errorString("empty name")
	}
	if name == "." || name == ".." {
		return errorString("reserved name")
	}
	if strings.ContainsAny(name, `/\`) {
		return errorString("contains a path separator")
	}
	if isAbsolute(name) {
		return errorString("absolute path not allowed")
	}
	for _, r := range name {
		if r == 0 {
			return errorString("NUL byte")
		}
		if unicode.IsControl(r) {
			return errorString("control character")
		}
	}
	if !v.AllowHiddenFiles && strings.HasPrefix(name, ".") {
		return errorString("hidden names not allowed")
	}
	return nil
}

// isAbsolute detects drive-letter paths that survive the separator check.
func isAbsolute(name string) bool {
	return len(name) >= 2 && name[1] == ':' && unicode.IsLetter(rune(name[0]))
}

type errorString string

func (e errorString) Error() string { return string(e) }

var defaultValidator = NewNameValidator()

// ProjectName validates a project name with the default validator.
func ProjectName(name string) error { return defaultValidator.Component("project", name) }

// FolderName validates a folder name with the default validator.
func FolderName(name string) error { return defaultValidator.Component("folder", name) }

// FileName validates a file name with the default validator.
func FileName(name string) error { return defaultValidator.Component("file", name) }

// RelativeName validates an image relative name with the default validator.
func RelativeName(name string) error { return defaultValidator.Relative(name) }

// BaseName returns the final element of a slash or backslash separated path.
// It fails with INVALID_NAME when no file name component can be extracted.
func BaseName(p string) (string, error) {
	cleaned := strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
	base := path.Base(cleaned)
	if cleaned == "" || base == "." || base == ".." || base == "/" {
		return "", errors.WithContext(
			errors.Newf(errors.CodeInvalidName, "invalid file path %q: no file name", p),
			"path", p,
		)
	}
	return base, nil
}

package config

import (
	"context"
	_ "embed"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/imagedesk/errors"
	"github.com/jmgilman/imagedesk/fs/core"
)

//go:embed schema.cue
var schemaSource []byte

// Format is the syntax of a configuration document.
type Format string

// Supported document formats.
const (
	FormatCUE  Format = "cue"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from the file extension.
func FormatFromPath(p string) (Format, bool) {
	switch strings.ToLower(path.Ext(p)) {
	case ".cue":
		return FormatCUE, true
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Load reads the configuration file at p from fsys.
//
// Returns CodeConfigLoadFailed when the file cannot be read,
// CodeConfigDecodeFailed when it cannot be parsed and CodeInvalidConfig when
// it does not satisfy the schema.
func Load(ctx context.Context, fsys core.ReadFS, p string) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}

	format, ok := FormatFromPath(p)
	if !ok {
		return Config{}, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "unsupported configuration file extension %q", path.Ext(p)),
			"path", p,
		)
	}

	data, err := fsys.ReadFile(p)
	if err != nil {
		return Config{}, errors.WrapWithContext(err, errors.CodeConfigLoadFailed,
			"failed to read configuration file", map[string]interface{}{"path": p})
	}

	cfg, err := Parse(ctx, data, format)
	if err != nil {
		return Config{}, errors.WithContext(err, "path", p)
	}
	return cfg, nil
}

// Parse decodes a configuration document of the given format.
func Parse(ctx context.Context, data []byte, format Format) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeTimeout, "context cancelled")
	}

	cueCtx := cuecontext.New()
	schema := cueCtx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, errors.Wrap(err, errors.CodeInternal, "embedded configuration schema is invalid")
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	doc, err := compile(cueCtx, data, format)
	if err != nil {
		return Config{}, err
	}

	val := def.Unify(doc)
	if err := val.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return Config{}, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"configuration does not match schema",
			map[string]interface{}{"format": string(format), "issues": issues(err)})
	}

	var cfg Config
	if err := val.Decode(&cfg); err != nil {
		return Config{}, errors.WrapWithContext(err, errors.CodeConfigDecodeFailed,
			"failed to decode configuration", map[string]interface{}{"format": string(format)})
	}
	return cfg, nil
}

// compile turns a document into a CUE value. CUE and JSON compile
// directly; YAML is parsed with yaml.v3 and encoded.
func compile(cueCtx *cue.Context, data []byte, format Format) (cue.Value, error) {
	var val cue.Value
	switch format {
	case FormatCUE, FormatJSON:
		val = cueCtx.CompileBytes(data, cue.Filename("config."+string(format)))
	case FormatYAML:
		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return cue.Value{}, errors.WrapWithContext(err, errors.CodeConfigDecodeFailed,
				"failed to parse configuration", map[string]interface{}{"format": string(format)})
		}
		if doc == nil {
			doc = map[string]interface{}{}
		}
		val = cueCtx.Encode(doc)
	default:
		return cue.Value{}, errors.Newf(errors.CodeInvalidConfig, "unsupported configuration format %q", format)
	}

	if err := val.Err(); err != nil {
		return cue.Value{}, errors.WrapWithContext(err, errors.CodeConfigDecodeFailed,
			"failed to parse configuration", map[string]interface{}{"format": string(format)})
	}
	return val, nil
}

// issues flattens a CUE error list into "path: message" strings.
func issues(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if p := e.Path(); len(p) > 0 {
			msg = strings.Join(p, ".") + ": " + msg
		}
		out = append(out, msg)
	}
	return out
}

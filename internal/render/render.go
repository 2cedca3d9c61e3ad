// Package render renders manifest templates with Go text/template and the
// sprig function library.
//
// Templates see the values Context as their root, so a key is referenced as
// {{ .image }}. Jinja-style {{ image }} references do not parse and must be
// rewritten with the leading dot. Besides sprig, templates can call toYaml,
// fromYaml and required.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/cameronsjo/kuberender/internal/values"
)

var (
	// ErrTemplateNotFound indicates the named template is not in the template directory.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRender indicates a template failed to parse or execute.
	ErrRender = errors.New("template render failed")
)

// Renderer renders named templates from a single directory.
type Renderer struct {
	dir    string
	strict bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStrict controls whether a reference to a missing key fails rendering.
// Strict mode is the default. In lenient mode missing keys render as empty
// text while literal "<no value>" text from the template or the values is kept.
// Use index or hasKey to probe optional keys in strict mode.
func WithStrict(strict bool) Option {
	return func(r *Renderer) { r.strict = strict }
}

// New creates a Renderer that resolves template names against dir.
func New(dir string, opts ...Option) *Renderer {
	r := &Renderer{dir: dir, strict: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the file a template name resolves to.
func (r *Renderer) Path(name string) string {
	return filepath.Join(r.dir, name)
}

// Render renders the named template with ctx as its data.
func (r *Renderer) Render(name string, ctx values.Context) (string, error) {
	path := r.Path(name)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return "", fmt.Errorf("read template %s: %w", path, err)
	}

	source := string(content)
	data := map[string]any(ctx)
	missingKey := "missingkey=error"
	if !r.strict {
		missingKey = "missingkey=zero"
		source = strings.ReplaceAll(source, missingValue, literalMissingValue)
		data = shield(data).(map[string]any)
	}

	tmpl, err := template.New(name).
		Option(missingKey).
		Funcs(sprig.TxtFuncMap()).
		Funcs(renderFuncs()).
		Parse(source)
	if err != nil {
		if key := undefinedFunc(err); key != "" {
			if _, ok := ctx[key]; ok {
				return "", fmt.Errorf("%w: parse %s: %w (reference values as {{ .%s }})", ErrRender, name, err, key)
			}
		}
		return "", fmt.Errorf("%w: parse %s: %w", ErrRender, name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute %s: %w", ErrRender, name, err)
	}

	out := buf.String()
	if !r.strict {
		out = strings.ReplaceAll(out, missingValue, "")
		out = strings.ReplaceAll(out, literalMissingValue, missingValue)
	}
	return out, nil
}

// missingValue is what text/template prints for a missing key under
// missingkey=zero.
const missingValue = "<no value>"

// literalMissingValue stands in for missingValue text written by the template
// author or carried in the values while a lenient render runs.
const literalMissingValue = "\ue000no-value\ue000"

func shield(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, missingValue, literalMissingValue)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = shield(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = shield(val)
		}
		return out
	default:
		return v
	}
}

var undefinedFuncPattern = regexp.MustCompile(`function "([^"]+)" not defined`)

// undefinedFunc returns the name from a "function not defined" parse error.
// Jinja-style {{ image }} references fail this way.
func undefinedFunc(err error) string {
	m := undefinedFuncPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return ""
	}
	return m[1]
}

package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cameronsjo/kuberender/internal/fileutil"
	"github.com/cameronsjo/kuberender/internal/ui"
	"github.com/cameronsjo/kuberender/internal/values"
)

// ErrWrite indicates a manifest could not be persisted.
var ErrWrite = errors.New("failed to write manifest")

// TemplateRenderer renders a named template with a values Context.
type TemplateRenderer interface {
	Render(name string, ctx values.Context) (string, error)
}

// Artifact is a canonicalized manifest produced from one binding.
type Artifact struct {
	Binding Binding

	// Path is where the artifact is (or would be) written.
	Path string

	// Kind and Name identify the Kubernetes object in the document.
	Kind string
	Name string

	// Content is the canonical YAML.
	Content []byte
}

// Ref returns "Kind/name" for the object in the artifact, or "" when the
// document carries neither.
func (a Artifact) Ref() string {
	if a.Kind == "" && a.Name == "" {
		return ""
	}
	return a.Kind + "/" + a.Name
}

// Label returns the output file name followed by the object reference.
func (a Artifact) Label() string {
	if ref := a.Ref(); ref != "" {
		return a.Binding.OutputFile + " (" + ref + ")"
	}
	return a.Binding.OutputFile
}

// Generator renders every binding and writes the results to one directory.
type Generator struct {
	renderer  TemplateRenderer
	outputDir string
	logger    *ui.Logger
	dryRun    io.Writer
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger *ui.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// WithDryRun prints artifacts to w instead of writing them to disk.
func WithDryRun(w io.Writer) GeneratorOption {
	return func(g *Generator) { g.dryRun = w }
}

// NewGenerator creates a Generator writing into outputDir.
func NewGenerator(renderer TemplateRenderer, outputDir string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		renderer:  renderer,
		outputDir: outputDir,
		logger:    ui.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build renders and canonicalizes a single binding without writing it.
func (g *Generator) Build(b Binding, vals values.Context) (*Artifact, error) {
	rendered, err := g.renderer.Render(b.Template, vals)
	if err != nil {
		return nil, err
	}

	doc, content, err := canonicalize(rendered)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Template, err)
	}

	kind, name := describe(doc)
	return &Artifact{
		Binding: b,
		Path:    filepath.Join(g.outputDir, b.OutputFile),
		Kind:    kind,
		Name:    name,
		Content: content,
	}, nil
}

// Generate renders, canonicalizes and writes every binding in order.
// The first failure stops generation; artifacts already written stay on disk
// and are returned alongside the error.
func (g *Generator) Generate(ctx context.Context, vals values.Context) ([]Artifact, error) {
	if g.dryRun == nil {
		if err := os.MkdirAll(g.outputDir, 0755); err != nil {
			err = fmt.Errorf("%w: create output directory %s: %w", ErrWrite, g.outputDir, err)
			g.logger.Error("%v", err)
			return nil, err
		}
	}

	artifacts := make([]Artifact, 0, len(bindings))
	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		artifact, err := g.Build(b, vals)
		if err == nil {
			err = g.emit(artifact)
		}
		if err != nil {
			g.logger.Error("Error generating YAML file for %s: %v", b.OutputFile, err)
			return artifacts, err
		}

		artifacts = append(artifacts, *artifact)
		if g.dryRun == nil {
			if ref := artifact.Ref(); ref != "" {
				g.logger.Success("Generated %s (%s)", artifact.Path, ref)
			} else {
				g.logger.Success("Generated %s", artifact.Path)
			}
		}
	}

	return artifacts, nil
}

func (g *Generator) emit(a *Artifact) error {
	if g.dryRun != nil {
		if _, err := fmt.Fprintf(g.dryRun, "--- %s ---\n%s", a.Label(), a.Content); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWrite, a.Binding.OutputFile, err)
		}
		return nil
	}

	if err := fileutil.WriteFileAtomic(a.Path, a.Content, 0644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, a.Path, err)
	}
	return nil
}

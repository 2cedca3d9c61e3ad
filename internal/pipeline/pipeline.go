// Package pipeline runs a complete kuberender pass: read values, generate
// every manifest, then optionally apply the output directory to a cluster.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/cameronsjo/kuberender/internal/config"
	"github.com/cameronsjo/kuberender/internal/kubectl"
	"github.com/cameronsjo/kuberender/internal/manifest"
	"github.com/cameronsjo/kuberender/internal/render"
	"github.com/cameronsjo/kuberender/internal/ui"
	"github.com/cameronsjo/kuberender/internal/values"
)

// Applier applies a directory of manifests to a cluster.
type Applier interface {
	Apply(ctx context.Context, dir string) (kubectl.Result, error)
}

// Pipeline wires the values reader, renderer, generator and applier for one run.
type Pipeline struct {
	cfg       *config.Config
	runID     string
	logger    *ui.Logger
	stdout    io.Writer
	stderr    io.Writer
	reader    *values.Reader
	renderer  *render.Renderer
	generator *manifest.Generator
	applier   Applier
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOutput sets where dry-run manifests and cluster CLI output go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(p *Pipeline) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// WithApplier replaces the kubectl applier.
func WithApplier(a Applier) Option {
	return func(p *Pipeline) { p.applier = a }
}

// WithRunID fixes the run id attached to log lines.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New validates cfg and builds a Pipeline. Relative paths in cfg are resolved
// against cfg.Root. Configuration errors are logged before they are returned.
func New(cfg *config.Config, logger *ui.Logger, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		runID:  uuid.NewString(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.With("run", shortID(p.runID))

	if err := cfg.Validate(); err != nil {
		return nil, p.fail("validate configuration", fmt.Errorf("invalid configuration: %w", err))
	}
	p.cfg = cfg.Resolve()

	lookup := values.LookupFunc(os.LookupEnv)
	if p.cfg.EnvFile != "" {
		l, err := values.DotenvLookup(p.cfg.EnvFile)
		if err != nil {
			return nil, p.fail("load env file", err)
		}
		lookup = l
	}
	p.reader = values.NewReader(p.logger, values.WithLookup(lookup))

	p.renderer = render.New(p.cfg.TemplateDir, render.WithStrict(p.cfg.Strict))

	genOpts := []manifest.GeneratorOption{manifest.WithLogger(p.logger)}
	if p.cfg.DryRun {
		genOpts = append(genOpts, manifest.WithDryRun(p.stdout))
	}
	p.generator = manifest.NewGenerator(p.renderer, p.cfg.OutputDir, genOpts...)

	if p.applier == nil {
		p.applier = kubectl.New(
			kubectl.WithBinary(p.cfg.ClusterCLI),
			kubectl.WithExtraArgs(p.cfg.ClusterArgs...),
			kubectl.WithOutput(p.stdout, p.stderr),
		)
	}

	return p, nil
}

// Values reads and merges the configured values files.
func (p *Pipeline) Values() (values.Context, error) {
	return p.reader.ReadAll(p.cfg.ValuesFiles...)
}

// Run reads values, generates every manifest and applies them when enabled.
// Errors are logged with the failing step before they are returned.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("Starting kuberender...")

	vals, err := p.Values()
	if err != nil {
		return p.fail("read values", err)
	}
	p.logger.Step(1, "Loaded %d values from %s", len(vals), p.cfg.ValuesFiles[0])

	artifacts, err := p.generator.Generate(ctx, vals)
	if err != nil {
		return p.fail("generate manifests", err)
	}
	if p.cfg.DryRun {
		p.logger.Step(2, "Rendered %d manifests (dry run, nothing written)", len(artifacts))
	} else {
		p.logger.Step(2, "Generated %d manifests in %s", len(artifacts), p.cfg.OutputDir)
	}

	if p.cfg.Apply {
		if err := p.Apply(ctx); err != nil {
			return err
		}
		p.logger.Step(3, "Applied manifests from %s", p.cfg.OutputDir)
	}

	p.logger.Success("Completed successfully")
	return nil
}

// Apply runs the cluster CLI over the output directory. A non-zero exit
// status is returned as a kubectl.ExitCodeError.
func (p *Pipeline) Apply(ctx context.Context) error {
	result, err := p.applier.Apply(ctx, p.cfg.OutputDir)
	if err != nil {
		return p.fail("apply manifests", err)
	}
	if err := result.Err(); err != nil {
		return p.fail(fmt.Sprintf("apply manifests (%s)", strings.Join(result.Args, " ")), err)
	}
	p.logger.Success("Applied Kubernetes resources from %s", p.cfg.OutputDir)
	return nil
}

// Diff reads values and compares fresh manifests with the output directory.
func (p *Pipeline) Diff(ctx context.Context) ([]manifest.Change, error) {
	vals, err := p.Values()
	if err != nil {
		return nil, p.fail("read values", err)
	}
	changes, err := p.generator.Diff(ctx, vals)
	if err != nil {
		return nil, p.fail("diff manifests", err)
	}
	return changes, nil
}

// Build reads values and renders the named binding without writing it.
func (p *Pipeline) Build(name string) (*manifest.Artifact, error) {
	b, ok := manifest.FindBinding(name)
	if !ok {
		return nil, fmt.Errorf("unknown manifest %q (valid: %v)", name, manifest.OutputFiles())
	}
	vals, err := p.Values()
	if err != nil {
		return nil, p.fail("read values", err)
	}
	artifact, err := p.generator.Build(b, vals)
	if err != nil {
		return nil, p.fail("render "+b.OutputFile, err)
	}
	return artifact, nil
}

// fail logs err against step and marks it as reported. Sentinels and
// kubectl.ExitCodeError still match through errors.Is and errors.As.
func (p *Pipeline) fail(step string, err error) error {
	p.logger.Error("An error occurred during %s: %v", step, err)
	return reportedError{err: err}
}

type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

// Reported reports whether err has already been logged by a Pipeline.
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Package kubectl applies generated manifests with the kubectl CLI.
package kubectl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the cluster CLI used when none is configured.
const DefaultBinary = "kubectl"

// ErrApplyInvocation indicates the cluster CLI could not be started at all.
var ErrApplyInvocation = errors.New("failed to invoke cluster apply")

// ExitCodeError reports a cluster CLI that ran but exited non-zero.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	if e.Code < 0 {
		return "apply was terminated by a signal"
	}
	return fmt.Sprintf("apply exited with status %d", e.Code)
}

// Result describes a completed apply.
type Result struct {
	// Args is the full command line that was run.
	Args []string

	// ExitCode is the process exit status, or -1 when the process was
	// terminated by a signal.
	ExitCode int
}

// Err returns an ExitCodeError for a non-zero exit, nil otherwise.
func (r Result) Err() error {
	if r.ExitCode != 0 {
		return ExitCodeError{Code: r.ExitCode}
	}
	return nil
}

// Applier runs "<binary> apply -f <dir>/".
type Applier struct {
	binary string
	args   []string
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Applier.
type Option func(*Applier)

// WithBinary sets the cluster CLI to run.
func WithBinary(binary string) Option {
	return func(a *Applier) {
		if binary != "" {
			a.binary = binary
		}
	}
}

// WithExtraArgs appends arguments after "apply -f <dir>/" (e.g. --context).
func WithExtraArgs(args ...string) Option {
	return func(a *Applier) { a.args = append(a.args, args...) }
}

// WithOutput routes the CLI's stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *Applier) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// New creates an Applier using kubectl by default.
func New(opts ...Option) *Applier {
	a := &Applier{
		binary: DefaultBinary,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Command returns the argument vector Apply runs for dir.
func (a *Applier) Command(dir string) []string {
	target := strings.TrimRight(dir, string(filepath.Separator)) + string(filepath.Separator)
	return append([]string{a.binary, "apply", "-f", target}, a.args...)
}

// Apply runs the cluster CLI against every manifest in dir and waits for it to
// exit. A process that started yields a Result and a nil error whatever its
// exit status, including death by signal or context cancellation; inspect
// Result.ExitCode or Result.Err. ErrApplyInvocation is returned only when the
// process could not be started.
func (a *Applier) Apply(ctx context.Context, dir string) (Result, error) {
	args := a.Command(dir)
	result := Result{Args: args}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr

	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrApplyInvocation, strings.Join(args, " "), err)
	}

	err := cmd.Wait()
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return result, fmt.Errorf("wait for %s: %w", args[0], err)
}

package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cameronsjo/kuberender/internal/values"
)

// DiffStatus describes how a freshly generated artifact compares to disk.
type DiffStatus string

const (
	DiffUnchanged DiffStatus = "unchanged"
	DiffChanged   DiffStatus = "changed"
	DiffNew       DiffStatus = "new"
)

// Change reports the status of one binding's output file.
type Change struct {
	Artifact Artifact
	Status   DiffStatus
}

// Diff renders every binding and compares the canonical output with the
// file currently in the output directory. Nothing is written.
func (g *Generator) Diff(ctx context.Context, vals values.Context) ([]Change, error) {
	changes := make([]Change, 0, len(bindings))
	for _, b := range bindings {
		if err := ctx.Err(); err != nil {
			return changes, err
		}

		artifact, err := g.Build(b, vals)
		if err != nil {
			g.logger.Error("Error generating YAML file for %s: %v", b.OutputFile, err)
			return changes, err
		}

		status, err := compare(artifact)
		if err != nil {
			return changes, err
		}
		changes = append(changes, Change{Artifact: *artifact, Status: status})
	}
	return changes, nil
}

func compare(a *Artifact) (DiffStatus, error) {
	existing, err := os.ReadFile(a.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DiffNew, nil
		}
		return "", fmt.Errorf("read %s: %w", a.Path, err)
	}
	if bytes.Equal(existing, a.Content) {
		return DiffUnchanged, nil
	}
	return DiffChanged, nil
}

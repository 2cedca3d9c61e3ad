package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kuberender/internal/manifest"
)

func newBindingsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "List the manifests kuberender generates",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := o.cfg.Resolve()
			for _, b := range manifest.Bindings() {
				printf(c, "%-14s <- %s\n", b.OutputFile, filepath.Join(cfg.TemplateDir, b.Template))
			}
			return nil
		},
	}
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kuberender/internal/manifest"
	"github.com/cameronsjo/kuberender/internal/preflight"
)

func newDoctorCmd(o *options) *cobra.Command {
	var applyCheck bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Pre-flight checks",
		Long: `Check that the values files and every manifest template exist and
that the cluster CLI is on PATH. A missing cluster CLI is only an error with
--apply.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg := o.cfg.Resolve()

			files := append([]string(nil), cfg.ValuesFiles...)
			for _, tmpl := range manifest.Templates() {
				files = append(files, filepath.Join(cfg.TemplateDir, tmpl))
			}
			if cfg.EnvFile != "" {
				files = append(files, cfg.EnvFile)
			}

			bins := []preflight.BinaryCheck{preflight.ClusterCLI(cfg.ClusterCLI, applyCheck)}
			warnings, errs := preflight.CheckAll(bins, files)

			o.logger.Header("Pre-flight checks")
			for _, w := range warnings {
				o.logger.Warning("%s", w)
			}
			for _, e := range errs {
				o.logger.Error("%s", e)
			}

			if len(errs) > 0 {
				return fmt.Errorf("%d pre-flight checks failed", len(errs))
			}
			o.logger.Success("Ready to render %s", manifestList())
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyCheck, "apply", false, "Require the cluster CLI")
	return cmd
}

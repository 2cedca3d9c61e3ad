package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kuberender/internal/manifest"
)

func newDiffCmd(o *options) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show which manifests would change",
		Long: `Render every manifest and compare it with the file in the output
directory. Nothing is written.

Examples:
  kuberender diff
  kuberender diff --exit-code   # exit 1 when anything would change`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, err := o.pipeline(c)
			if err != nil {
				return err
			}
			changes, err := p.Diff(c.Context())
			if err != nil {
				return err
			}

			pending := 0
			for _, ch := range changes {
				if ref := ch.Artifact.Ref(); ref != "" {
					printf(c, "%-9s %-40s %s\n", ch.Status, ch.Artifact.Path, ref)
				} else {
					printf(c, "%-9s %s\n", ch.Status, ch.Artifact.Path)
				}
				if ch.Status != manifest.DiffUnchanged {
					pending++
				}
			}

			if pending == 0 {
				o.logger.Success("Output is up to date")
				return nil
			}
			o.logger.Warning("%d of %d manifests would change", pending, len(changes))
			if exitCode {
				return fmt.Errorf("%d manifests out of date", pending)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit non-zero when any manifest would change")
	return cmd
}

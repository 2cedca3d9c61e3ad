package cmd

import (
	"github.com/spf13/cobra"
)

func newApplyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply the output directory to the cluster",
		Long: `Run '<kubectl> apply -f <output>/' against manifests already in the
output directory. Does not regenerate them; run kuberender first or use
'kuberender --apply'.

A non-zero exit from the cluster CLI fails this command.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, err := o.pipeline(c)
			if err != nil {
				return err
			}
			return p.Apply(c.Context())
		},
	}
}

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kuberender/internal/manifest"
)

func newRenderCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render one manifest to stdout",
		Long: `Render a single manifest with the merged values and print its
canonical YAML to stdout. Nothing is written to the output directory.

The manifest may be named by output file, template, or short name.

Examples:
  kuberender render deploy
  kuberender render hpa.yaml.j2
  image=app:v2 kuberender render deploy.yaml`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: validManifestNames(),
		RunE: func(c *cobra.Command, args []string) error {
			p, err := o.pipeline(c)
			if err != nil {
				return err
			}
			artifact, err := p.Build(args[0])
			if err != nil {
				return err
			}
			_, err = c.OutOrStdout().Write(artifact.Content)
			return err
		},
	}
}

func validManifestNames() []string {
	var names []string
	for _, b := range manifest.Bindings() {
		names = append(names, b.Name(), b.OutputFile, b.Template)
	}
	return names
}

func manifestList() string {
	return strings.Join(manifest.OutputFiles(), ", ")
}

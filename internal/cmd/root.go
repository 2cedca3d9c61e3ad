// Package cmd provides the CLI commands for kuberender.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kuberender/internal/config"
	"github.com/cameronsjo/kuberender/internal/pipeline"
	"github.com/cameronsjo/kuberender/internal/ui"
)

const version = "0.1.0"

// options carries the configuration shared by every command.
type options struct {
	cfg     *config.Config
	lenient bool
	logger  *ui.Logger
}

// NewRootCmd builds the kuberender command tree.
func NewRootCmd() *cobra.Command {
	o := &options{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "kuberender",
		Short: "Render Kubernetes manifests from a values file",
		Long: `kuberender - values in, manifests out

Reads values.yaml, overrides any top-level key that matches an environment
variable, renders the four manifest templates from templates/ and writes the
results to output/:

  service.yaml   <- templates/service.yaml.j2
  ingress.yaml   <- templates/ingress.yaml.j2
  deploy.yaml    <- templates/deploy.yaml.j2
  hpa.yaml       <- templates/hpa.yaml.j2

Templates use Go template syntax with sprig functions: {{ .image }}.
Jinja-style references such as {{ image }} must be rewritten with the
leading dot.

With no arguments kuberender runs with these defaults. Use --apply to run
'kubectl apply -f output/' afterwards.

Examples:
  kuberender                          # Generate with defaults
  image=app:v2 kuberender             # Override the image value
  kuberender -f values.yaml -f prod.yaml
  kuberender -n                       # Print manifests, write nothing
  kuberender --apply                  # Generate, then kubectl apply`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			o.setup(c)
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			p, err := o.pipeline(c)
			if err != nil {
				return err
			}
			return p.Run(c.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.cfg.Root, "root", "C", "", "Resolve relative paths against this directory")
	flags.StringArrayVarP(&o.cfg.ValuesFiles, "values", "f", o.cfg.ValuesFiles, "Values file; repeat to merge overlays in order")
	flags.StringVarP(&o.cfg.TemplateDir, "templates", "t", o.cfg.TemplateDir, "Template directory")
	flags.StringVarP(&o.cfg.OutputDir, "output", "o", o.cfg.OutputDir, "Output directory")
	flags.StringVar(&o.cfg.EnvFile, "env-file", "", "Dotenv file consulted for overrides after the process environment")
	flags.StringVar(&o.cfg.ClusterCLI, "kubectl", o.cfg.ClusterCLI, "Cluster CLI used for apply")
	flags.StringArrayVar(&o.cfg.ClusterArgs, "kubectl-arg", nil, "Extra argument appended to the apply command; repeatable")
	flags.BoolVar(&o.lenient, "lenient", false, "Render missing values as empty instead of failing")
	flags.BoolVarP(&o.cfg.Verbose, "verbose", "v", false, "Show debug output")
	flags.BoolVar(&o.cfg.NoColor, "no-color", false, "Disable colored output")

	cmd.Flags().BoolVar(&o.cfg.Apply, "apply", false, "Run '<kubectl> apply -f <output>/' after generating")
	cmd.Flags().BoolVarP(&o.cfg.DryRun, "dry-run", "n", false, "Print manifests to stdout without writing")

	cmd.SetVersionTemplate("kuberender version {{.Version}}\n")

	cmd.AddCommand(newRenderCmd(o))
	cmd.AddCommand(newDiffCmd(o))
	cmd.AddCommand(newApplyCmd(o))
	cmd.AddCommand(newBindingsCmd(o))
	cmd.AddCommand(newDoctorCmd(o))

	return cmd
}

// setup builds the logger and finalizes derived settings.
func (o *options) setup(c *cobra.Command) {
	o.cfg.Strict = !o.lenient

	logOpts := []ui.Option{ui.WithVerbose(o.cfg.Verbose)}
	if o.cfg.NoColor {
		logOpts = append(logOpts, ui.WithColor(false))
	}
	o.logger = ui.New(c.ErrOrStderr(), logOpts...)
}

func (o *options) pipeline(c *cobra.Command) (*pipeline.Pipeline, error) {
	return pipeline.New(o.cfg, o.logger, pipeline.WithOutput(c.OutOrStdout(), c.ErrOrStderr()))
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		report(os.Stderr, err)
		os.Exit(1)
	}
}

// report prints err unless the pipeline already logged it.
func report(w io.Writer, err error) {
	if pipeline.Reported(err) {
		return
	}
	ui.New(w).Error("%v", err)
}

// printf writes to the command's stdout.
func printf(c *cobra.Command, format string, args ...any) {
	fmt.Fprintf(c.OutOrStdout(), format, args...)
}

// Package config holds run settings and their compiled-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Compiled-in defaults. Running with no flags uses exactly these.
const (
	DefaultValuesFile  = "values.yaml"
	DefaultTemplateDir = "templates"
	DefaultOutputDir   = "output"
	DefaultClusterCLI  = "kubectl"
)

// Config holds the settings for one run.
type Config struct {
	// Root is the directory relative paths are resolved against.
	// Empty means the current working directory.
	Root string

	// ValuesFiles lists the values documents. The first is the base; later
	// files are merged over it in order.
	ValuesFiles []string

	// TemplateDir contains the manifest templates.
	TemplateDir string

	// OutputDir receives the generated manifests.
	OutputDir string

	// EnvFile is an optional dotenv file consulted for overrides after the
	// process environment.
	EnvFile string

	// Apply runs the cluster CLI over OutputDir after generation.
	Apply bool

	// ClusterCLI is the binary used for apply.
	ClusterCLI string

	// ClusterArgs are appended to the apply command line.
	ClusterArgs []string

	// DryRun prints manifests instead of writing them.
	DryRun bool

	// Strict fails rendering on references to missing keys.
	Strict bool

	// Verbose enables debug output.
	Verbose bool

	// NoColor disables colored output.
	NoColor bool
}

// Default returns the configuration used when no flags are given.
func Default() *Config {
	return &Config{
		ValuesFiles: []string{DefaultValuesFile},
		TemplateDir: DefaultTemplateDir,
		OutputDir:   DefaultOutputDir,
		ClusterCLI:  DefaultClusterCLI,
		Strict:      true,
	}
}

// Validate reports settings that cannot be used together or are missing.
func (c *Config) Validate() error {
	var errs []error
	if len(c.ValuesFiles) == 0 {
		errs = append(errs, errors.New("at least one values file is required"))
	}
	for i, f := range c.ValuesFiles {
		if f == "" {
			errs = append(errs, fmt.Errorf("values file %d is empty", i+1))
		}
	}
	if c.TemplateDir == "" {
		errs = append(errs, errors.New("template directory is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Apply && c.DryRun {
		errs = append(errs, errors.New("apply cannot be combined with dry run"))
	}
	if c.Apply && c.ClusterCLI == "" {
		errs = append(errs, errors.New("cluster CLI is required when apply is enabled"))
	}
	return errors.Join(errs...)
}

// Resolve returns a copy with every relative path joined onto Root.
func (c *Config) Resolve() *Config {
	out := *c
	out.ValuesFiles = make([]string, len(c.ValuesFiles))
	for i, f := range c.ValuesFiles {
		out.ValuesFiles[i] = c.path(f)
	}
	out.TemplateDir = c.path(c.TemplateDir)
	out.OutputDir = c.path(c.OutputDir)
	if c.EnvFile != "" {
		out.EnvFile = c.path(c.EnvFile)
	}
	out.ClusterArgs = append([]string(nil), c.ClusterArgs...)
	return &out
}

func (c *Config) path(p string) string {
	if c.Root == "" || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Package preflight provides pre-flight validation for required binaries and input files.
package preflight

import (
	"os/exec"

	"github.com/cameronsjo/kuberender/internal/fileutil"
)

// BinaryCheck represents a binary kuberender may shell out to.
type BinaryCheck struct {
	Name        string
	Required    bool   // false = warning only
	InstallHint string // e.g., "brew install kubectl" or "https://..."
}

// ClusterCLI returns the check for the cluster CLI used by apply. It is only
// required when apply is enabled.
func ClusterCLI(name string, applyEnabled bool) BinaryCheck {
	return BinaryCheck{
		Name:        name,
		Required:    applyEnabled,
		InstallHint: "Install kubectl: https://kubernetes.io/docs/tasks/tools/",
	}
}

// CheckBinaries returns the binaries from bins that are not on PATH.
func CheckBinaries(bins ...BinaryCheck) []BinaryCheck {
	var missing []BinaryCheck
	for _, bin := range bins {
		if !IsBinaryAvailable(bin.Name) {
			missing = append(missing, bin)
		}
	}
	return missing
}

// IsBinaryAvailable checks if a specific binary is available in PATH.
func IsBinaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// MissingFiles returns the paths that do not exist as regular files.
func MissingFiles(paths ...string) []string {
	var missing []string
	for _, path := range paths {
		if !fileutil.IsFile(path) {
			missing = append(missing, path)
		}
	}
	return missing
}

// CheckAll performs all pre-flight checks and returns warnings and errors.
// Errors are for missing required binaries and missing files, warnings are
// for missing optional binaries.
func CheckAll(bins []BinaryCheck, files []string) (warnings []string, errors []string) {
	for _, bin := range CheckBinaries(bins...) {
		msg := bin.Name + ": " + bin.InstallHint
		if bin.Required {
			errors = append(errors, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}

	for _, path := range MissingFiles(files...) {
		errors = append(errors, path+": file not found")
	}

	return warnings, errors
}

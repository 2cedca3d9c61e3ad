package manifest

import (
	"slices"

	"github.com/samber/lo"
)

// Binding pairs an output file with the template it is rendered from.
type Binding struct {
	// OutputFile is the file name written to the output directory.
	OutputFile string

	// Template is the template name resolved against the template directory.
	Template string
}

// bindings is the closed set of manifests, in generation order.
var bindings = []Binding{
	{OutputFile: "service.yaml", Template: "service.yaml.j2"},
	{OutputFile: "ingress.yaml", Template: "ingress.yaml.j2"},
	{OutputFile: "deploy.yaml", Template: "deploy.yaml.j2"},
	{OutputFile: "hpa.yaml", Template: "hpa.yaml.j2"},
}

// Bindings returns the manifest bindings in generation order.
func Bindings() []Binding {
	return slices.Clone(bindings)
}

// OutputFiles returns the output file names in generation order.
func OutputFiles() []string {
	return lo.Map(bindings, func(b Binding, _ int) string { return b.OutputFile })
}

// Templates returns the template names in generation order.
func Templates() []string {
	return lo.Map(bindings, func(b Binding, _ int) string { return b.Template })
}

// FindBinding looks up a binding by output file, template name, or the
// short name shared by both (e.g. "deploy").
func FindBinding(name string) (Binding, bool) {
	return lo.Find(bindings, func(b Binding) bool {
		return b.OutputFile == name || b.Template == name || b.Name() == name
	})
}

// Name returns the short name of the binding (the output file without extension).
func (b Binding) Name() string {
	return b.OutputFile[:len(b.OutputFile)-len(".yaml")]
}

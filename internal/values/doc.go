// Package values loads the values document that drives template rendering.
//
// A values file is a YAML mapping. Additional values files may be layered on
// top of the first one with a recursive merge. After merging, every top-level
// key that also names an environment variable takes that variable's string
// value:
//
//	# values.yaml
//	replicaCount: 3
//	image: app:v1
//
//	$ image=app:v2 kuberender
//	# context: {replicaCount: 3, image: "app:v2"}
//
// Environment variables whose names are not keys of the document are ignored,
// so the document defines the set of overridable keys. Overridden values are
// always strings; no type coercion takes place.
//
// Values files encrypted with SOPS are decrypted transparently when the
// required keys are available to the sops library.
package values

// Package manifest generates the Kubernetes manifests for an application.
//
// Four bindings are fixed at compile time and generated in this order:
//
//	service.yaml  <- service.yaml.j2
//	ingress.yaml  <- ingress.yaml.j2
//	deploy.yaml   <- deploy.yaml.j2
//	hpa.yaml      <- hpa.yaml.j2
//
// Each template is rendered with the values Context, parsed back as a single
// YAML document and written in canonical form: mapping keys sorted, block
// style, two-space indentation. Generation stops at the first failing
// binding. Files written before the failure are left in place.
package manifest

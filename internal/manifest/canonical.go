package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ErrInvalidOutput indicates rendered text is not a single YAML document.
var ErrInvalidOutput = errors.New("rendered output is not valid YAML")

// Canonicalize parses rendered text as exactly one YAML document and
// re-serializes it with sorted mapping keys and two-space block indentation.
func Canonicalize(rendered string) ([]byte, error) {
	_, data, err := canonicalize(rendered)
	return data, err
}

func canonicalize(rendered string) (any, []byte, error) {
	dec := yaml.NewDecoder(strings.NewReader(rendered))

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: empty document", ErrInvalidOutput)
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: empty document", ErrInvalidOutput)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
		}
		return nil, nil, fmt.Errorf("%w: expected a single document", ErrInvalidOutput)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	if err := enc.Close(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	return doc, buf.Bytes(), nil
}

// describe extracts kind and metadata.name from a Kubernetes-shaped document.
// Documents of any other shape yield empty strings.
func describe(doc any) (kind, name string) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", ""
	}
	u := unstructured.Unstructured{Object: obj}
	return u.GetKind(), u.GetName()
}

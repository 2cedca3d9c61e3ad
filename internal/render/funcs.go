package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// renderFuncs returns the template functions added on top of sprig.
func renderFuncs() template.FuncMap {
	return template.FuncMap{
		"toYaml": func(v any) (string, error) {
			var buf bytes.Buffer
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(v); err != nil {
				return "", fmt.Errorf("toYaml: %w", err)
			}
			if err := enc.Close(); err != nil {
				return "", fmt.Errorf("toYaml: %w", err)
			}
			return strings.TrimSuffix(buf.String(), "\n"), nil
		},
		"fromYaml": func(s string) (any, error) {
			var result any
			if err := yaml.Unmarshal([]byte(s), &result); err != nil {
				return nil, fmt.Errorf("fromYaml: %w", err)
			}
			return result, nil
		},
		"required": func(msg string, v any) (any, error) {
			if v == nil {
				return nil, fmt.Errorf("required: %s", msg)
			}
			if s, ok := v.(string); ok && s == "" {
				return nil, fmt.Errorf("required: %s", msg)
			}
			return v, nil
		},
	}
}

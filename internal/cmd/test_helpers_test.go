package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCmd runs a fresh command tree with args and returns stdout and stderr.
func executeCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)

	root := NewRootCmd()
	root.SetArgs(append(args, "--no-color"))
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	err = root.ExecuteContext(context.Background())

	return outBuf.String(), errBuf.String(), err
}

// setupProject writes values.yaml and the four templates into a temp directory.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"values.yaml":               "name: web\nimage: app:v1\nreplicaCount: 2\nhost: web.example.com\n",
		"templates/service.yaml.j2": "apiVersion: v1\nkind: Service\nmetadata:\n  name: {{ .name }}\n",
		"templates/ingress.yaml.j2": "apiVersion: networking.k8s.io/v1\nkind: Ingress\nmetadata:\n  name: {{ .name }}\nspec:\n  rules:\n    - host: {{ .host }}\n",
		"templates/deploy.yaml.j2":  "kind: Deployment\napiVersion: apps/v1\nmetadata:\n  name: {{ .name }}\nspec:\n  replicas: {{ .replicaCount }}\n  image: {{ .image }}\n",
		"templates/hpa.yaml.j2":     "apiVersion: autoscaling/v2\nkind: HorizontalPodAutoscaler\nmetadata:\n  name: {{ .name }}\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/kuberender/internal/config"
	"github.com/cameronsjo/kuberender/internal/kubectl"
	"github.com/cameronsjo/kuberender/internal/manifest"
	"github.com/cameronsjo/kuberender/internal/render"
	"github.com/cameronsjo/kuberender/internal/ui"
	"github.com/cameronsjo/kuberender/internal/values"
)

type fakeApplier struct {
	result kubectl.Result
	err    error
	dirs   []string
}

func (f *fakeApplier) Apply(_ context.Context, dir string) (kubectl.Result, error) {
	f.dirs = append(f.dirs, dir)
	return f.result, f.err
}

var manifestTemplates = map[string]string{
	"service.yaml.j2": "apiVersion: v1\nkind: Service\nmetadata:\n  name: {{ .name }}\n",
	"ingress.yaml.j2": "apiVersion: networking.k8s.io/v1\nkind: Ingress\nmetadata:\n  name: {{ .name }}\n",
	"deploy.yaml.j2":  "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: {{ .name }}\nspec:\n  replicas: {{ .replicaCount }}\n  image: {{ .image }}\n",
	"hpa.yaml.j2":     "apiVersion: autoscaling/v2\nkind: HorizontalPodAutoscaler\nmetadata:\n  name: {{ .name }}\n",
}

// setupProject lays out values.yaml and templates/ under a temp root.
func setupProject(t *testing.T, valuesYAML string) *config.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "values.yaml"), []byte(valuesYAML), 0644))

	templateDir := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(templateDir, 0755))
	for name, content := range manifestTemplates {
		require.NoError(t, os.WriteFile(filepath.Join(templateDir, name), []byte(content), 0644))
	}

	cfg := config.Default()
	cfg.Root = root
	return cfg
}

func newTestPipeline(t *testing.T, cfg *config.Config, opts ...Option) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	logs := new(bytes.Buffer)
	opts = append([]Option{WithOutput(new(bytes.Buffer), new(bytes.Buffer)), WithRunID("run-test")}, opts...)
	p, err := New(cfg, ui.New(logs, ui.WithColor(false)), opts...)
	require.NoError(t, err)
	return p, logs
}

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func TestRun_EnvironmentOverrideScenario(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 3\nimage: \"app:v1\"\n")
	t.Setenv("image", "app:v2")

	p, logs := newTestPipeline(t, cfg)
	require.NoError(t, p.Run(context.Background()))

	outputDir := filepath.Join(cfg.Root, "output")
	for _, name := range manifest.OutputFiles() {
		assert.FileExists(t, filepath.Join(outputDir, name))
	}

	deploy := readYAML(t, filepath.Join(outputDir, "deploy.yaml"))
	assert.Equal(t, "app:v2", deploy["spec"].(map[string]any)["image"])
	assert.Equal(t, 3, deploy["spec"].(map[string]any)["replicas"])

	assert.Contains(t, logs.String(), "Starting kuberender...")
	assert.Contains(t, logs.String(), "Completed successfully")
	assert.Contains(t, logs.String(), "run=run-test")
}

func TestRun_ApplyDisabledByDefault(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app\n")
	applier := &fakeApplier{}

	p, _ := newTestPipeline(t, cfg, WithApplier(applier))
	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, applier.dirs)
}

func TestRun_Apply(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app\n")
	cfg.Apply = true

	t.Run("success", func(t *testing.T) {
		applier := &fakeApplier{}
		p, logs := newTestPipeline(t, cfg, WithApplier(applier))

		require.NoError(t, p.Run(context.Background()))
		assert.Equal(t, []string{filepath.Join(cfg.Root, "output")}, applier.dirs)
		assert.Contains(t, logs.String(), "Applied Kubernetes resources")
	})

	t.Run("non-zero exit surfaced", func(t *testing.T) {
		applier := &fakeApplier{result: kubectl.Result{
			Args:     []string{"kubectl", "apply", "-f", "output/", "--context", "prod"},
			ExitCode: 1,
		}}
		p, logs := newTestPipeline(t, cfg, WithApplier(applier))

		err := p.Run(context.Background())
		var exitErr kubectl.ExitCodeError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.True(t, Reported(err))
		assert.Contains(t, logs.String(), "An error occurred during apply manifests (kubectl apply -f output/ --context prod): apply exited with status 1")
		assert.NotContains(t, logs.String(), "Completed successfully")
	})

	t.Run("invocation failure", func(t *testing.T) {
		applier := &fakeApplier{err: kubectl.ErrApplyInvocation}
		p, _ := newTestPipeline(t, cfg, WithApplier(applier))

		assert.ErrorIs(t, p.Run(context.Background()), kubectl.ErrApplyInvocation)
	})
}

func TestRun_MissingValuesFile(t *testing.T) {
	cfg := setupProject(t, "name: web\n")
	require.NoError(t, os.Remove(filepath.Join(cfg.Root, "values.yaml")))

	p, logs := newTestPipeline(t, cfg)
	err := p.Run(context.Background())

	assert.ErrorIs(t, err, values.ErrConfigNotFound)
	assert.NoDirExists(t, filepath.Join(cfg.Root, "output"), "nothing rendered before values are read")
	assert.Contains(t, logs.String(), "An error occurred during read values")
}

func TestRun_InvalidOutputKeepsEarlierFiles(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app\n")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "templates", "deploy.yaml.j2"),
		[]byte("spec: [unbalanced\n"), 0644))

	p, _ := newTestPipeline(t, cfg)
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, manifest.ErrInvalidOutput)

	outputDir := filepath.Join(cfg.Root, "output")
	assert.FileExists(t, filepath.Join(outputDir, "service.yaml"))
	assert.FileExists(t, filepath.Join(outputDir, "ingress.yaml"))
	assert.NoFileExists(t, filepath.Join(outputDir, "deploy.yaml"))
	assert.NoFileExists(t, filepath.Join(outputDir, "hpa.yaml"))
}

func TestRun_MissingKeyStrictAndLenient(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\n")

	p, _ := newTestPipeline(t, cfg)
	assert.ErrorIs(t, p.Run(context.Background()), render.ErrRender)

	cfg.Strict = false
	p, _ = newTestPipeline(t, cfg)
	require.NoError(t, p.Run(context.Background()))
}

func TestRun_DryRun(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 2\nimage: app\n")
	cfg.DryRun = true
	stdout := new(bytes.Buffer)

	p, _ := newTestPipeline(t, cfg, WithOutput(stdout, new(bytes.Buffer)))
	require.NoError(t, p.Run(context.Background()))

	assert.NoDirExists(t, filepath.Join(cfg.Root, "output"))
	assert.Contains(t, stdout.String(), "--- deploy.yaml (Deployment/web) ---")
}

func TestRun_EnvFile(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app:v1\n")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, ".env"), []byte("image=app:dotenv\n"), 0644))
	cfg.EnvFile = ".env"

	p, _ := newTestPipeline(t, cfg)
	require.NoError(t, p.Run(context.Background()))

	deploy := readYAML(t, filepath.Join(cfg.Root, "output", "deploy.yaml"))
	assert.Equal(t, "app:dotenv", deploy["spec"].(map[string]any)["image"])
}

func TestRun_ValuesOverlayFiles(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app:v1\n")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "prod.yaml"), []byte("replicaCount: 6\n"), 0644))
	cfg.ValuesFiles = append(cfg.ValuesFiles, "prod.yaml")

	p, _ := newTestPipeline(t, cfg)
	require.NoError(t, p.Run(context.Background()))

	deploy := readYAML(t, filepath.Join(cfg.Root, "output", "deploy.yaml"))
	assert.Equal(t, 6, deploy["spec"].(map[string]any)["replicas"])
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = ""
	logs := new(bytes.Buffer)

	_, err := New(cfg, ui.New(logs, ui.WithColor(false)), WithRunID("run-test"))
	require.Error(t, err)
	assert.True(t, Reported(err))
	assert.Contains(t, logs.String(), "An error occurred during validate configuration: invalid configuration: output directory is required run=run-test")
}

func TestNew_MissingEnvFile(t *testing.T) {
	cfg := config.Default()
	cfg.EnvFile = filepath.Join(t.TempDir(), "missing.env")
	logs := new(bytes.Buffer)

	_, err := New(cfg, ui.New(logs, ui.WithColor(false)))
	require.Error(t, err)
	assert.True(t, Reported(err))
	assert.Contains(t, logs.String(), "An error occurred during load env file")
}

func TestNew_GeneratesRunID(t *testing.T) {
	logs := new(bytes.Buffer)
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app\n")
	cfg.DryRun = true

	p, err := New(cfg, ui.New(logs, ui.WithColor(false)), WithOutput(new(bytes.Buffer), new(bytes.Buffer)))
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))
	assert.Regexp(t, `Starting kuberender\.\.\. run=[0-9a-f]{8}\n`, logs.String())
}

func TestReported(t *testing.T) {
	assert.False(t, Reported(errors.New("plain")))
	assert.False(t, Reported(nil))
}

func TestDiff(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app:v1\n")
	p, _ := newTestPipeline(t, cfg)
	require.NoError(t, p.Run(context.Background()))

	t.Setenv("image", "app:v9")
	changes, err := p.Diff(context.Background())
	require.NoError(t, err)

	statuses := map[string]manifest.DiffStatus{}
	for _, c := range changes {
		statuses[c.Artifact.Binding.OutputFile] = c.Status
	}
	assert.Equal(t, manifest.DiffChanged, statuses["deploy.yaml"])
	assert.Equal(t, manifest.DiffUnchanged, statuses["service.yaml"])
}

func TestBuild(t *testing.T) {
	cfg := setupProject(t, "name: web\nreplicaCount: 1\nimage: app:v1\n")
	p, _ := newTestPipeline(t, cfg)

	artifact, err := p.Build("service")
	require.NoError(t, err)
	assert.Equal(t, "Service", artifact.Kind)
	assert.NoFileExists(t, artifact.Path)

	_, err = p.Build("configmap")
	assert.Error(t, err)
}

func TestApply_Standalone(t *testing.T) {
	cfg := setupProject(t, "name: web\n")
	applier := &fakeApplier{err: errors.New("exec: not found")}

	p, _ := newTestPipeline(t, cfg, WithApplier(applier))
	assert.Error(t, p.Apply(context.Background()))
	assert.Len(t, applier.dirs, 1)
}

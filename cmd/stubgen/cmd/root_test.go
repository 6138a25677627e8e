package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/stubgen/config"
	"github.com/teranos/stubgen/errors"
)

const pointSchema = `format_version: "1.0.0"
requested_files: [0x10]
nodes:
  - id: 0x10
    kind: file
    display_name: point.capnp
    nested: [0x11]
  - id: 0x11
    kind: struct
    display_name: "point.capnp:Point"
    scope_id: 0x10
    fields:
      - {name: x, kind: slot, type: {kind: float64}}
      - {name: y, kind: slot, type: {kind: float64}}
`

// execute runs the command tree with fresh configuration and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.Reset()
	t.Cleanup(config.Reset)

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func writeSchema(t *testing.T) (dir, doc string) {
	t.Helper()
	dir = t.TempDir()
	doc = filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(doc, []byte(pointSchema), 0644))
	return dir, doc
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"drift", ErrDrift, ExitDrift},
		{"wrapped drift", errors.Wrap(ErrDrift, "check"), ExitDrift},
		{"other", errors.New("boom"), ExitError},
		{"invalid schema", errors.NewInvalidSchema("bad"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestGenerate_WritesNextToDocument(t *testing.T) {
	dir, doc := writeSchema(t)

	_, err := execute(t, "generate", doc)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "point_capnp.pyi"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "class _PointStructModule(_StructModule):")
	assert.FileExists(t, filepath.Join(dir, "py.typed"))
}

func TestGenerate_OutputFlag(t *testing.T) {
	_, doc := writeSchema(t)
	out := filepath.Join(t.TempDir(), "stubs")

	_, err := execute(t, "generate", doc, "-o", out)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "point_capnp.pyi"))
}

func TestGenerate_Stdout(t *testing.T) {
	dir, doc := writeSchema(t)

	stdout, err := execute(t, "generate", doc, "--stdout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PointReader: TypeAlias = _PointStructModule.Reader")
	assert.NotContains(t, stdout, "# point_capnp.pyi", "a single file is printed without a path comment")
	assert.NoFileExists(t, filepath.Join(dir, "point_capnp.pyi"))
}

func TestGenerate_InvalidDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"format_version": "2.0.0", "requested_files": [], "nodes": []}`), 0644))

	_, err := execute(t, "generate", doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidSchema))
	assert.Equal(t, ExitError, ExitCode(err))
}

func TestCheck(t *testing.T) {
	dir, doc := writeSchema(t)

	_, err := execute(t, "check", doc)
	require.Error(t, err, "nothing generated yet")
	assert.Equal(t, ExitDrift, ExitCode(err))

	_, err = execute(t, "generate", doc)
	require.NoError(t, err)

	_, err = execute(t, "check", doc)
	require.NoError(t, err)

	stub := filepath.Join(dir, "point_capnp.pyi")
	content, err := os.ReadFile(stub)
	require.NoError(t, err)
	edited := bytes.Replace(content, []byte("x: float\n"), []byte("x: int\n"), 1)
	require.NoError(t, os.WriteFile(stub, edited, 0644))

	stdout, err := execute(t, "check", doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDrift))
	assert.Equal(t, ExitDrift, ExitCode(err))
	assert.Contains(t, stdout, "-        x: int")
	assert.Contains(t, stdout, "+        x: float")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, config.FileName)
	assert.FileExists(t, path)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSuffix, cfg.Output.Suffix)

	_, err = execute(t, "init", dir)
	assert.Error(t, err, "existing file is kept without --force")

	_, err = execute(t, "init", dir, "--force")
	require.NoError(t, err)
	assert.FileExists(t, path+".back1")
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, ">= 1.0.0, < 2.0.0", info["schema_formats"])

	stdout, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stubgen dev")
}

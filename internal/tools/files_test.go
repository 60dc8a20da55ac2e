package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ashutoshrp06/ocpm-builder/internal/functions"
	"github.com/stretchr/testify/require"
)

type stageFixture struct {
	roots Roots
	exec  *Executor
}

func newStageFixture(t *testing.T) stageFixture {
	t.Helper()
	base := t.TempDir()
	roots := Roots{
		Input:    filepath.Join(base, "input"),
		Template: filepath.Join(base, "template"),
		Output:   filepath.Join(base, "output"),
	}
	for _, d := range []string{roots.Input, roots.Template, roots.Output} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	catalog, err := functions.Default()
	require.NoError(t, err)
	registry, err := NewStageRegistry(roots, catalog, nil)
	require.NoError(t, err)

	return stageFixture{roots: roots, exec: NewExecutor(registry, nil)}
}

func (f stageFixture) call(t *testing.T, name string, args map[string]any) map[string]any {
	t.Helper()
	out := f.exec.Execute(context.Background(), name, args)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload), "result: %s", out)
	return payload
}

func put(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewStageRegistry_MatchesCatalog(t *testing.T) {
	f := newStageFixture(t)
	catalog, _ := functions.Default()

	registry := f.exec.registry
	require.Equal(t, catalog.List(), registry.List())

	read, ok := registry.Get("read_file")
	require.True(t, ok)
	require.Equal(t, []Parameter{{
		Name:        "path",
		Type:        "string",
		Description: "Relative path within the input files folder.",
		Required:    true,
	}}, read.Parameters())
}

func TestNewStageRegistry_UnknownCatalogTool(t *testing.T) {
	catalog, err := functions.Parse([]byte("functions:\n  - name: delete_everything\n"))
	require.NoError(t, err)

	_, err = NewStageRegistry(Roots{}, catalog, nil)
	require.Error(t, err)
}

func TestScanInputs(t *testing.T) {
	f := newStageFixture(t)
	put(t, f.roots.Input, "notes/meeting.md", "# Meeting")
	put(t, f.roots.Input, "a.csv", "x,y\n")
	put(t, f.roots.Input, ".hidden", "secret")
	put(t, f.roots.Input, ".git/config", "[core]")

	got := f.call(t, "scan_inputs", nil)

	require.Equal(t, float64(2), got["count"])
	files := got["files"].([]any)
	require.Equal(t, "a.csv", files[0].(map[string]any)["path"])
	require.Equal(t, "notes/meeting.md", files[1].(map[string]any)["path"])
	require.Equal(t, float64(9), files[1].(map[string]any)["size_bytes"])
}

func TestScanInputs_EmptyAndMissing(t *testing.T) {
	f := newStageFixture(t)

	got := f.call(t, "scan_inputs", map[string]any{})
	require.Empty(t, got["files"])
	require.Contains(t, got["message"], "No input files found. Please place your project files in: "+f.roots.Input)
	require.NotContains(t, got, "count")

	require.NoError(t, os.RemoveAll(f.roots.Input))
	got = f.call(t, "scan_inputs", nil)
	require.Equal(t, "Input directory not found: "+f.roots.Input, got["error"])
}

func TestReadFile(t *testing.T) {
	f := newStageFixture(t)
	put(t, f.roots.Input, "brief.md", "hello")
	put(t, f.roots.Input, "logo.png", "\x89PNG\xff\xfe")

	got := f.call(t, "read_file", map[string]any{"path": "brief.md"})
	require.Equal(t, map[string]any{"path": "brief.md", "content": "hello"}, got)

	got = f.call(t, "read_file", map[string]any{"path": "logo.png"})
	require.Equal(t, "Binary file, cannot read as text.", got["error"])
	require.Equal(t, float64(6), got["size_bytes"])

	got = f.call(t, "read_file", map[string]any{"path": "missing.md"})
	require.Equal(t, "File not found: missing.md", got["error"])

	got = f.call(t, "read_file", map[string]any{"path": ""})
	require.Contains(t, got["error"], "path must not be empty")
}

func TestPathTraversalTouchesNothing(t *testing.T) {
	f := newStageFixture(t)
	sibling := f.roots.Output + "2"

	tests := []struct {
		tool string
		args map[string]any
	}{
		{"read_file", map[string]any{"path": "../output/x"}},
		{"read_template_file", map[string]any{"path": "../../etc/passwd"}},
		{"write_file", map[string]any{"path": "../output2/evil.json", "content": "{}"}},
		{"create_directory", map[string]any{"path": "../output2/dir"}},
	}

	for _, tt := range tests {
		got := f.call(t, tt.tool, tt.args)
		require.Equal(t, "Path traversal not allowed.", got["error"], tt.tool)
	}

	_, err := os.Stat(sibling)
	require.True(t, os.IsNotExist(err), "sibling directory must not be created")
}

func TestWriteFile_DanglingSymlinkStaysInside(t *testing.T) {
	f := newStageFixture(t)
	escaped := filepath.Join(filepath.Dir(f.roots.Output), "outside", "escaped.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(escaped), 0o755))

	if err := os.Symlink("../outside/escaped.txt", filepath.Join(f.roots.Output, "link.json")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got := f.call(t, "write_file", map[string]any{"path": "link.json", "content": "pwned"})
	require.Equal(t, "Path traversal not allowed.", got["error"])

	_, err := os.Stat(escaped)
	require.True(t, os.IsNotExist(err), "write must not follow the link out of the output root")
}

func TestWriteFile(t *testing.T) {
	f := newStageFixture(t)

	got := f.call(t, "write_file", map[string]any{
		"path":    "objects/object_Order.json",
		"content": "{\"name\": \"Ordér\"}",
	})
	require.Equal(t, "ok", got["status"])
	require.Equal(t, float64(18), got["bytes_written"])

	data, err := os.ReadFile(filepath.Join(f.roots.Output, "objects", "object_Order.json"))
	require.NoError(t, err)
	require.Equal(t, "{\"name\": \"Ordér\"}", string(data))

	got = f.call(t, "write_file", map[string]any{"path": "objects/object_Order.json", "content": ""})
	require.Equal(t, float64(0), got["bytes_written"])

	got = f.call(t, "write_file", map[string]any{"path": "x.md"})
	require.Contains(t, got["error"], "missing required parameter: content")
}

func TestCreateDirectory(t *testing.T) {
	f := newStageFixture(t)

	for i := 0; i < 2; i++ {
		got := f.call(t, "create_directory", map[string]any{"path": "events"})
		require.Equal(t, map[string]any{"status": "ok", "path": "events"}, got)
	}
	info, err := os.Stat(filepath.Join(f.roots.Output, "events"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestTemplateTools(t *testing.T) {
	f := newStageFixture(t)
	put(t, f.roots.Template, "objects/object_A.json", "{}")
	put(t, f.roots.Template, "objects/object_B.json", "{}")
	put(t, f.roots.Template, "objects/.keep", "")
	put(t, f.roots.Template, "events/event_A.json", "{}")
	put(t, f.roots.Template, ".cache/x", "")
	put(t, f.roots.Template, "README.md", "")

	got := f.call(t, "list_template_folders", nil)
	require.Equal(t, float64(2), got["count"])
	require.Equal(t, []any{
		map[string]any{"name": "events", "file_count": float64(1)},
		map[string]any{"name": "objects", "file_count": float64(2)},
	}, got["folders"])

	got = f.call(t, "read_template_file", map[string]any{"path": "objects/object_A.json"})
	require.Equal(t, "{}", got["content"])

	got = f.call(t, "read_template_file", map[string]any{"path": "objects/object_Z.json"})
	require.Equal(t, "Template file not found: objects/object_Z.json", got["error"])

	require.NoError(t, os.RemoveAll(f.roots.Template))
	got = f.call(t, "list_template_folders", nil)
	require.Equal(t, "Template directory not found: "+f.roots.Template, got["error"])
}

func TestValidateOutput(t *testing.T) {
	f := newStageFixture(t)
	put(t, f.roots.Template, "objects/object_A.json", "{}")
	put(t, f.roots.Template, "events/event_A.json", "{}")
	put(t, f.roots.Output, "objects/.keep", "")

	got := f.call(t, "validate_output", nil)
	require.Equal(t, false, got["valid"])
	require.Equal(t, []any{"Missing folder: events/"}, got["errors"])

	got = f.call(t, "validate_output", map[string]any{"strict": true})
	require.Contains(t, got["error"], "unknown parameter: strict")
}

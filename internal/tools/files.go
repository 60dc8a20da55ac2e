package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ashutoshrp06/ocpm-builder/internal/functions"
	"github.com/ashutoshrp06/ocpm-builder/internal/textdiff"
	"go.uber.org/zap"
)

const (
	msgPathTraversal = "Path traversal not allowed."
	msgBinaryFile    = "Binary file, cannot read as text."
)

// baseTool carries the catalog entry a tool is advertised with.
type baseTool struct {
	def    functions.Definition
	params []Parameter
}

func newBaseTool(def functions.Definition) baseTool {
	return baseTool{def: def, params: parametersFrom(def)}
}

func (b baseTool) Name() string            { return b.def.Name }
func (b baseTool) Description() string     { return b.def.Description }
func (b baseTool) Parameters() []Parameter { return b.params }

// parametersFrom flattens the catalog's JSON Schema into Parameters, sorted
// by name.
func parametersFrom(def functions.Definition) []Parameter {
	required := make(map[string]bool)
	for _, r := range def.Required() {
		required[r] = true
	}

	props := def.Properties()
	params := make([]Parameter, 0, len(props))
	for name, raw := range props {
		p := Parameter{Name: name, Required: required[name]}
		if prop, ok := raw.(map[string]any); ok {
			p.Type, _ = prop["type"].(string)
			p.Description, _ = prop["description"].(string)
			if enum, ok := prop["enum"].([]any); ok {
				for _, v := range enum {
					if s, ok := v.(string); ok {
						p.Enum = append(p.Enum, s)
					}
				}
			}
		}
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params
}

type fileEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

type scanResult struct {
	Files []fileEntry `json:"files"`
	Count int         `json:"count"`
}

type scanEmptyResult struct {
	Files   []fileEntry `json:"files"`
	Message string      `json:"message"`
}

type contentResult struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type fileError struct {
	Path      string `json:"path,omitempty"`
	Error     string `json:"error"`
	SizeBytes *int64 `json:"size_bytes,omitempty"`
}

type writeResult struct {
	Status       string `json:"status"`
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
}

type dirResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type folderEntry struct {
	Name      string `json:"name"`
	FileCount int    `json:"file_count"`
}

type foldersResult struct {
	Folders []folderEntry `json:"folders"`
	Count   int           `json:"count"`
}

// ScanInputsTool lists the project input files.
type ScanInputsTool struct {
	baseTool
	root string
}

func (t *ScanInputsTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	if err := decodeArgs(params, &noArgs{}); err != nil {
		return nil, err
	}

	if info, err := os.Stat(t.root); err != nil || !info.IsDir() {
		return fileError{Error: fmt.Sprintf("Input directory not found: %s", t.root)}, nil
	}

	files := []fileEntry{}
	err := filepath.WalkDir(t.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != t.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(t.root, path)
		if err != nil {
			return err
		}
		files = append(files, fileEntry{Path: filepath.ToSlash(rel), SizeBytes: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if len(files) == 0 {
		return scanEmptyResult{
			Files: files,
			Message: "No input files found. Please place your project files in: " + t.root + "\n" +
				"Accepted file types: text, markdown, CSV, JSON, images, PDFs, meeting transcripts.",
		}, nil
	}
	return scanResult{Files: files, Count: len(files)}, nil
}

// ReadFileTool reads a project input file as text.
type ReadFileTool struct {
	baseTool
	root string
}

func (t *ReadFileTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	var args pathArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}
	return readText(t.root, args.Path, "File not found", true)
}

// ReadTemplateFileTool reads a file of the reference template as text.
type ReadTemplateFileTool struct {
	baseTool
	root string
}

func (t *ReadTemplateFileTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	var args pathArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}
	return readText(t.root, args.Path, "Template file not found", false)
}

func readText(root, rel, notFound string, withSize bool) (any, error) {
	full, err := Resolve(root, rel)
	if err != nil {
		if errors.Is(err, ErrPathTraversal) {
			return fileError{Path: rel, Error: msgPathTraversal}, nil
		}
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return fileError{Path: rel, Error: fmt.Sprintf("%s: %s", notFound, rel)}, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	if !utf8.Valid(data) {
		res := fileError{Path: rel, Error: msgBinaryFile}
		if withSize {
			size := info.Size()
			res.SizeBytes = &size
		}
		return res, nil
	}
	return contentResult{Path: rel, Content: string(data)}, nil
}

// WriteFileTool writes a text file under the output root.
type WriteFileTool struct {
	baseTool
	root   string
	logger *zap.Logger
}

func (t *WriteFileTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	var args writeArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if err := (pathArgs{Path: args.Path}).validate(); err != nil {
		return nil, err
	}

	full, err := Resolve(t.root, args.Path)
	if err != nil {
		if errors.Is(err, ErrPathTraversal) {
			return fileError{Path: args.Path, Error: msgPathTraversal}, nil
		}
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	if previous, err := os.ReadFile(full); err == nil {
		stats := textdiff.Summarize(string(previous), args.Content)
		t.logger.Debug("Overwriting output file",
			zap.String("path", args.Path),
			zap.Int("lines_added", stats.Added),
			zap.Int("lines_removed", stats.Removed),
			zap.Bool("changed", stats.Changed()))
	}

	if err := os.WriteFile(full, []byte(args.Content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", args.Path, err)
	}

	return writeResult{Status: "ok", Path: args.Path, BytesWritten: len(args.Content)}, nil
}

// CreateDirectoryTool creates a directory under the output root.
type CreateDirectoryTool struct {
	baseTool
	root string
}

func (t *CreateDirectoryTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	var args pathArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}

	full, err := Resolve(t.root, args.Path)
	if err != nil {
		if errors.Is(err, ErrPathTraversal) {
			return fileError{Path: args.Path, Error: msgPathTraversal}, nil
		}
		return nil, err
	}

	if err := os.MkdirAll(full, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", args.Path, err)
	}
	return dirResult{Status: "ok", Path: args.Path}, nil
}

// ListTemplateFoldersTool lists the template's category folders.
type ListTemplateFoldersTool struct {
	baseTool
	root string
}

func (t *ListTemplateFoldersTool) Execute(ctx context.Context, params map[string]any) (any, error) {
	if err := decodeArgs(params, &noArgs{}); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(t.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileError{Error: fmt.Sprintf("Template directory not found: %s", t.root)}, nil
		}
		return nil, fmt.Errorf("failed to list template directory: %w", err)
	}

	folders := []folderEntry{}
	for _, e := range entries {
		if !e.IsDir() || isHidden(e.Name()) {
			continue
		}
		count, err := countFiles(filepath.Join(t.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list template folder %s: %w", e.Name(), err)
		}
		folders = append(folders, folderEntry{Name: e.Name(), FileCount: count})
	}
	return foldersResult{Folders: folders, Count: len(folders)}, nil
}

func countFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() && !isHidden(e.Name()) {
			n++
		}
	}
	return n, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

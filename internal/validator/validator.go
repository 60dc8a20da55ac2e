package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Validate checks outputRoot against templateRoot. All checks run in a fixed
// order on every call and none of them stops the others; problems with the
// roots themselves are reported as errors in the returned report. Two calls
// over unchanged trees produce identical reports.
func Validate(outputRoot, templateRoot string) Report {
	r := &run{
		output:   outputRoot,
		template: templateRoot,
		parsed:   make(map[string]*document),
		objects:  make(map[string]struct{}),
		events:   make(map[string]struct{}),
	}

	r.checkFolders()
	r.checkNaming()
	r.checkSchemas()
	r.checkMandatoryFields()
	r.checkCrossReferences()

	return r.report()
}

// run holds the state of a single validation pass. Parsed documents are
// cached here and never outlive the pass.
type run struct {
	collector

	output   string
	template string

	outputFolders []string
	parsed        map[string]*document
	objects       map[string]struct{}
	events        map[string]struct{}
}

type document struct {
	value any
	err   error
	// unreadable is set when the file could not be read at all.
	unreadable bool
}

func (r *run) report() Report {
	errs := r.errors
	if errs == nil {
		errs = []string{}
	}
	warns := r.warnings
	if warns == nil {
		warns = []string{}
	}

	return Report{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warns,
		Summary: Summary{
			FoldersChecked: len(r.outputFolders),
			ErrorsFound:    len(errs),
			WarningsFound:  len(warns),
			ObjectsFound:   len(r.objects),
			EventsFound:    len(r.events),
		},
	}
}

// folderExists reports whether folder is a directory under the output root.
func (r *run) folderExists(folder string) bool {
	info, err := os.Stat(filepath.Join(r.output, folder))
	return err == nil && info.IsDir()
}

// entries lists the non-hidden names inside an output folder, sorted.
func (r *run) entries(folder string) ([]string, error) {
	list, err := os.ReadDir(filepath.Join(r.output, folder))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, e := range list {
		if isHidden(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// jsonFiles lists the non-hidden .json names of an existing output folder.
// Unreadable folders yield nothing; checkNaming reports them.
func (r *run) jsonFiles(folder string) []string {
	if !r.folderExists(folder) {
		return nil
	}
	names, err := r.entries(folder)
	if err != nil {
		return nil
	}
	out := names[:0]
	for _, n := range names {
		if isJSONFile(n) {
			out = append(out, n)
		}
	}
	return out
}

// load parses folder/name once per run.
func (r *run) load(folder, name string) *document {
	rel := folder + "/" + name
	if doc, ok := r.parsed[rel]; ok {
		return doc
	}

	doc := &document{}
	data, err := os.ReadFile(filepath.Join(r.output, folder, name))
	if err != nil {
		doc.err = err
		doc.unreadable = true
	} else if err := json.Unmarshal(data, &doc.value); err != nil {
		doc.err = err
	}
	r.parsed[rel] = doc
	return doc
}

// subdirs lists the non-hidden immediate subdirectories of root, sorted.
func subdirs(root string) ([]string, error) {
	list, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range list {
		if !e.IsDir() || isHidden(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func describeRootError(kind, root string, err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("%s directory not found: %s", kind, root)
	}
	return fmt.Sprintf("Cannot read %s directory: %s: %v", strings.ToLower(kind), root, err)
}

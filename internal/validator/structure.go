package validator

import "strings"

// checkFolders compares the subfolders of the template with those of the
// output. Missing folders are errors, extra folders are warnings. When either
// root cannot be listed the comparison is skipped and the root is reported.
func (r *run) checkFolders() {
	expected, terr := subdirs(r.template)
	if terr != nil {
		r.errorf("%s", describeRootError("Template", r.template, terr))
	}
	actual, oerr := subdirs(r.output)
	if oerr != nil {
		r.errorf("%s", describeRootError("Output", r.output, oerr))
	}
	r.outputFolders = actual

	if terr != nil || oerr != nil {
		return
	}

	want := toSet(expected)
	have := toSet(actual)

	for _, f := range expected {
		if _, ok := have[f]; !ok {
			r.errorf("Missing folder: %s/", f)
		}
	}
	for _, f := range actual {
		if _, ok := want[f]; !ok {
			r.warnf("Unexpected folder: %s/", f)
		}
	}
}

// checkNaming enforces the per-category file prefix and the .json extension.
func (r *run) checkNaming() {
	for _, c := range Categories {
		if !r.folderExists(c.Folder) {
			continue
		}
		names, err := r.entries(c.Folder)
		if err != nil {
			r.errorf("Cannot read folder: %s/: %v", c.Folder, err)
			continue
		}
		for _, name := range names {
			if !strings.HasPrefix(name, c.Prefix) {
				r.errorf("Bad file name: %s/%s (expected prefix '%s')", c.Folder, name, c.Prefix)
			}
			if !isJSONFile(name) {
				r.errorf("Not a JSON file: %s/%s", c.Folder, name)
			}
		}
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

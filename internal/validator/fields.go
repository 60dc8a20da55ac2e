package validator

// checkMandatoryFields requires an "ID" field on every object and both "ID"
// and "Time" on every event. Files that did not parse, or whose fields list is
// malformed, were already reported and are skipped here.
func (r *run) checkMandatoryFields() {
	mandatory := []struct {
		folder string
		fields []string
	}{
		{"objects", []string{"ID"}},
		{"events", []string{"ID", "Time"}},
	}

	for _, m := range mandatory {
		for _, name := range r.jsonFiles(m.folder) {
			doc := r.load(m.folder, name)
			if doc.err != nil {
				continue
			}
			obj, ok := doc.value.(map[string]any)
			if !ok {
				continue
			}
			present, ok := fieldNames(obj)
			if !ok {
				continue
			}
			for _, f := range m.fields {
				if _, found := present[f]; !found {
					r.errorf("Missing mandatory '%s' field: %s/%s", f, m.folder, name)
				}
			}
		}
	}
}

// fieldNames collects the "name" of every entry in the "fields" list. A
// missing list counts as empty; a list that is not an array of objects is
// reported as malformed.
func fieldNames(entry map[string]any) (map[string]struct{}, bool) {
	names := make(map[string]struct{})
	raw, present := entry["fields"]
	if !present {
		return names, true
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	for _, item := range list {
		field, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		if n, ok := field["name"].(string); ok {
			names[n] = struct{}{}
		}
	}
	return names, true
}

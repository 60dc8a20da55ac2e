package validator

import "sort"

// checkCrossReferences warns about event relationships that point at objects
// which were never defined, and about factories and SQL statements that lack
// their counterpart.
func (r *run) checkCrossReferences() {
	for _, name := range r.jsonFiles("events") {
		doc := r.load("events", name)
		if doc.err != nil {
			continue
		}
		event, ok := doc.value.(map[string]any)
		if !ok {
			continue
		}
		for _, target := range relationshipTargets(event) {
			if _, defined := r.objects[target]; !defined {
				r.warnf("Event %s references non-existent object '%s'", name, target)
			}
		}
	}

	if !r.folderExists("factories") || !r.folderExists("sql_statements") {
		return
	}

	factories, _ := CategoryFor("factories")
	statements, _ := CategoryFor("sql_statements")

	factoryNames := make(map[string]struct{})
	for _, f := range r.jsonFiles(factories.Folder) {
		factoryNames[factories.BaseName(f)] = struct{}{}
	}
	statementNames := make(map[string]struct{})
	for _, f := range r.jsonFiles(statements.Folder) {
		statementNames[statements.BaseName(f)] = struct{}{}
	}

	for _, n := range difference(factoryNames, statementNames) {
		r.warnf("Factory without SQL statement: %s", n)
	}
	for _, n := range difference(statementNames, factoryNames) {
		r.warnf("SQL statement without factory: %s", n)
	}
}

// relationshipTargets extracts relationships[].target.object_ref.name.
// Entries of the wrong shape are ignored.
func relationshipTargets(event map[string]any) []string {
	list, ok := event["relationships"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		rel, ok := item.(map[string]any)
		if !ok {
			continue
		}
		target, ok := rel["target"].(map[string]any)
		if !ok {
			continue
		}
		ref, ok := target["object_ref"].(map[string]any)
		if !ok {
			continue
		}
		if name, ok := ref["name"].(string); ok && name != "" {
			out = append(out, name)
		}
	}
	return out
}

// difference returns the sorted members of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

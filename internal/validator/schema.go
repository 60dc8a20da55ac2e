package validator

import (
	"encoding/json"
	"sort"
)

// checkSchemas parses every .json file of every category, checks its
// top-level shape and required keys, and records object and event names for
// the cross-reference check. Array categories are checked on their first
// element only.
func (r *run) checkSchemas() {
	for _, c := range Categories {
		for _, name := range r.jsonFiles(c.Folder) {
			rel := c.Folder + "/" + name
			doc := r.load(c.Folder, name)
			if doc.unreadable {
				r.errorf("Cannot read file: %s: %v", rel, doc.err)
				continue
			}
			if doc.err != nil {
				r.errorf("Invalid JSON: %s: %v", rel, doc.err)
				continue
			}

			var target map[string]any
			switch c.Shape {
			case ShapeArray:
				list, ok := doc.value.([]any)
				if !ok {
					r.errorf("Expected JSON array: %s", rel)
					continue
				}
				if len(list) == 0 {
					r.warnf("Empty array: %s", rel)
					continue
				}
				first, ok := list[0].(map[string]any)
				if !ok {
					r.errorf("Expected JSON object in array: %s", rel)
					continue
				}
				target = first
			default:
				obj, ok := doc.value.(map[string]any)
				if !ok {
					r.errorf("Expected JSON object: %s", rel)
					continue
				}
				target = obj
			}

			if missing := missingKeys(target, c.Required); len(missing) > 0 {
				encoded, _ := json.Marshal(missing)
				r.errorf("Missing keys in %s: %s", rel, encoded)
			}

			r.recordName(c.Folder, target)
		}
	}
}

func (r *run) recordName(folder string, entry map[string]any) {
	name, ok := entry["name"].(string)
	if !ok {
		return
	}
	switch folder {
	case "objects":
		r.objects[name] = struct{}{}
	case "events":
		r.events[name] = struct{}{}
	}
}

func missingKeys(entry map[string]any, required []string) []string {
	var missing []string
	for _, k := range required {
		if _, ok := entry[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}

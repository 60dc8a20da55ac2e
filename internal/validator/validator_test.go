package validator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeJSON(t *testing.T, root, rel string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, rel, string(data))
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

// entry builds a document carrying every required key of a category.
func entry(t *testing.T, folder string, overrides map[string]any) map[string]any {
	t.Helper()
	c, ok := CategoryFor(folder)
	if !ok {
		t.Fatalf("unknown category %s", folder)
	}
	doc := make(map[string]any, len(c.Required))
	for _, k := range c.Required {
		doc[k] = ""
	}
	for k, v := range overrides {
		doc[k] = v
	}
	return doc
}

func fields(names ...string) []any {
	out := make([]any, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]any{"name": n})
	}
	return out
}

func TestValidate_MissingFolder(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "objects", "events")
	mkdirs(t, out, "objects")

	report := Validate(out, tmpl)

	if report.Valid {
		t.Fatal("expected invalid report")
	}
	want := []string{"Missing folder: events/"}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Fatalf("Errors = %v, want %v", report.Errors, want)
	}
	if report.Summary.FoldersChecked != 1 {
		t.Errorf("FoldersChecked = %d, want 1", report.Summary.FoldersChecked)
	}
}

func TestValidate_UnexpectedFolderIsWarning(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "objects")
	mkdirs(t, out, "objects", "scratch", ".git")

	report := Validate(out, tmpl)

	if !report.Valid {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	want := []string{"Unexpected folder: scratch/"}
	if !reflect.DeepEqual(report.Warnings, want) {
		t.Fatalf("Warnings = %v, want %v", report.Warnings, want)
	}
}

func TestValidate_MissingKeysListed(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "objects")

	obj := entry(t, "objects", map[string]any{"name": "Order"})
	delete(obj, "fields")
	writeJSON(t, out, "objects/object_Order.json", obj)

	report := Validate(out, tmpl)

	want := `Missing keys in objects/object_Order.json: ["fields"]`
	found := false
	for _, e := range report.Errors {
		if strings.HasPrefix(e, "Missing keys in") {
			if e != want {
				t.Fatalf("got %q, want %q", e, want)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("missing-keys error not reported: %v", report.Errors)
	}
}

func TestValidate_CompleteFilesProduceNoSchemaErrors(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	folders := make([]string, 0, len(Categories))
	for _, c := range Categories {
		folders = append(folders, c.Folder)
	}
	mkdirs(t, tmpl, folders...)

	for _, c := range Categories {
		doc := entry(t, c.Folder, map[string]any{"extra_key": true})
		switch c.Folder {
		case "objects":
			doc["name"] = "Order"
			doc["fields"] = fields("ID", "Amount")
		case "events":
			doc["name"] = "CreateOrder"
			doc["fields"] = fields("ID", "Time")
		}
		rel := c.Folder + "/" + c.Prefix + "Sample.json"
		if c.Shape == ShapeArray {
			writeJSON(t, out, rel, []any{doc})
		} else {
			writeJSON(t, out, rel, doc)
		}
	}

	report := Validate(out, tmpl)

	if !report.Valid || len(report.Errors) != 0 {
		t.Fatalf("expected valid report, got errors %v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}
	if report.Summary.ObjectsFound != 1 || report.Summary.EventsFound != 1 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if report.Summary.FoldersChecked != len(Categories) {
		t.Errorf("FoldersChecked = %d, want %d", report.Summary.FoldersChecked, len(Categories))
	}
}

func TestValidate_DanglingObjectReference(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "events")

	event := entry(t, "events", map[string]any{
		"name":   "ShipFoo",
		"fields": fields("ID", "Time"),
		"relationships": []any{
			map[string]any{"target": map[string]any{"object_ref": map[string]any{"name": "Foo"}}},
			"not an object",
		},
	})
	writeJSON(t, out, "events/event_ShipFoo.json", event)

	report := Validate(out, tmpl)

	if !report.Valid {
		t.Fatalf("expected valid report, got errors %v", report.Errors)
	}
	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "'Foo'") {
		t.Fatalf("Warnings = %v, want one warning about Foo", report.Warnings)
	}
	if report.Warnings[0] != "Event event_ShipFoo.json references non-existent object 'Foo'" {
		t.Errorf("unexpected warning text: %q", report.Warnings[0])
	}
}

func TestValidate_Naming(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "objects")
	writeJSON(t, out, "objects/Order.json", entry(t, "objects", map[string]any{"fields": fields("ID")}))
	writeFile(t, out, "objects/object_notes.txt", "hello")
	writeFile(t, out, "objects/.DS_Store", "")

	report := Validate(out, tmpl)

	want := []string{
		"Bad file name: objects/Order.json (expected prefix 'object_')",
		"Not a JSON file: objects/object_notes.txt",
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Fatalf("Errors = %v, want %v", report.Errors, want)
	}
}

func TestValidate_ShapesAndParsing(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "factories", "objects", "sql_statements")
	writeFile(t, out, "objects/object_Broken.json", "{not json")
	writeJSON(t, out, "objects/object_List.json", []any{})
	writeJSON(t, out, "factories/factories_Order.json", map[string]any{})
	writeJSON(t, out, "sql_statements/sql_statement_Order.json", []any{})

	report := Validate(out, tmpl)

	wantPrefixes := []string{
		"Invalid JSON: objects/object_Broken.json: ",
		"Expected JSON object: objects/object_List.json",
		"Expected JSON array: factories/factories_Order.json",
	}
	if len(report.Errors) != len(wantPrefixes) {
		t.Fatalf("Errors = %v", report.Errors)
	}
	for i, e := range report.Errors {
		if !strings.HasPrefix(e, wantPrefixes[i]) {
			t.Errorf("error %d = %q, want prefix %q", i, e, wantPrefixes[i])
		}
	}
	wantWarnings := []string{"Empty array: sql_statements/sql_statement_Order.json"}
	if !reflect.DeepEqual(report.Warnings, wantWarnings) {
		t.Fatalf("Warnings = %v, want %v", report.Warnings, wantWarnings)
	}
}

func TestValidate_MandatoryFields(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "objects", "events")
	writeJSON(t, out, "objects/object_A.json", entry(t, "objects", map[string]any{"name": "A", "fields": fields("Amount")}))
	writeJSON(t, out, "events/event_B.json", entry(t, "events", map[string]any{"name": "B", "fields": fields("ID")}))
	writeJSON(t, out, "events/event_C.json", entry(t, "events", map[string]any{"name": "C", "fields": []any{}}))

	report := Validate(out, tmpl)

	want := []string{
		"Missing mandatory 'ID' field: objects/object_A.json",
		"Missing mandatory 'Time' field: events/event_B.json",
		"Missing mandatory 'ID' field: events/event_C.json",
		"Missing mandatory 'Time' field: events/event_C.json",
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Fatalf("Errors = %v, want %v", report.Errors, want)
	}
}

func TestValidate_FactoryStatementPairing(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "factories", "sql_statements")

	writeJSON(t, out, "factories/factories_Order.json", []any{entry(t, "factories", nil)})
	writeJSON(t, out, "factories/factories_Invoice.json", []any{entry(t, "factories", nil)})
	writeJSON(t, out, "sql_statements/sql_statement_Order.json", []any{entry(t, "sql_statements", nil)})
	writeJSON(t, out, "sql_statements/sql_statement_Delivery.json", []any{entry(t, "sql_statements", nil)})
	writeJSON(t, out, "sql_statements/sql_statement_Aardvark.json", []any{entry(t, "sql_statements", nil)})

	report := Validate(out, tmpl)

	if !report.Valid {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	want := []string{
		"Factory without SQL statement: Invoice",
		"SQL statement without factory: Aardvark",
		"SQL statement without factory: Delivery",
	}
	if !reflect.DeepEqual(report.Warnings, want) {
		t.Fatalf("Warnings = %v, want %v", report.Warnings, want)
	}
}

func TestValidate_PairingSkippedWhenFolderMissing(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "factories")
	writeJSON(t, out, "factories/factories_Order.json", []any{entry(t, "factories", nil)})

	report := Validate(out, tmpl)

	if len(report.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", report.Warnings)
	}
}

func TestValidate_MissingRoots(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "out")
	tmpl := filepath.Join(base, "template")

	report := Validate(out, tmpl)

	want := []string{
		"Template directory not found: " + tmpl,
		"Output directory not found: " + out,
	}
	if !reflect.DeepEqual(report.Errors, want) {
		t.Fatalf("Errors = %v, want %v", report.Errors, want)
	}
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	if report.Warnings == nil {
		t.Fatal("warnings must be an empty slice, not nil")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()
	mkdirs(t, tmpl, "objects", "events", "processes")
	mkdirs(t, out, "extra_b", "extra_a")
	writeJSON(t, out, "objects/object_Z.json", entry(t, "objects", map[string]any{"name": "Z"}))
	writeJSON(t, out, "objects/object_A.json", map[string]any{"name": "A"})
	writeJSON(t, out, "events/event_E.json", entry(t, "events", map[string]any{
		"relationships": []any{
			map[string]any{"target": map[string]any{"object_ref": map[string]any{"name": "Q"}}},
			map[string]any{"target": map[string]any{"object_ref": map[string]any{"name": "P"}}},
		},
	}))

	first := Validate(out, tmpl)
	second := Validate(out, tmpl)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("reports differ:\n%s\n%s", a, b)
	}
	if first.Warnings[0] != "Unexpected folder: extra_a/" {
		t.Errorf("warnings not sorted: %v", first.Warnings)
	}
}

func TestReport_JSONShape(t *testing.T) {
	tmpl, out := t.TempDir(), t.TempDir()

	data, err := json.Marshal(Validate(out, tmpl))
	if err != nil {
		t.Fatal(err)
	}

	want := `{"valid":true,"errors":[],"warnings":[],"summary":{"folders_checked":0,"errors_found":0,"warnings_found":0,"objects_found":0,"events_found":0}}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
}

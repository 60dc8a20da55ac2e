package validator

import "strings"

// Shape is the top-level JSON shape expected for a category's files.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

// Category describes one OCPM folder: how its files are named, what shape
// they have and which keys every entry must carry.
type Category struct {
	Folder   string
	Prefix   string
	Shape    Shape
	Required []string
}

// Categories is the ordered table every check iterates.
var Categories = []Category{
	{
		Folder: "objects",
		Prefix: "object_",
		Shape:  ShapeObject,
		Required: []string{
			"categories", "change_date", "changed_by", "color", "created_by",
			"creation_date", "description", "fields", "id", "managed",
			"multi_link", "name", "namespace", "relationships", "tags",
		},
	},
	{
		Folder: "events",
		Prefix: "event_",
		Shape:  ShapeObject,
		Required: []string{
			"categories", "change_date", "changed_by", "created_by",
			"creation_date", "description", "fields", "id", "name",
			"namespace", "relationships", "tags",
		},
	},
	{
		Folder: "factories",
		Prefix: "factories_",
		Shape:  ShapeArray,
		Required: []string{
			"change_date", "changed_by", "created_by", "creation_date",
			"data_connection_id", "disabled", "display_name", "factory_id",
			"has_overwrites", "name", "namespace", "target",
			"user_factory_template_reference", "validation_status",
		},
	},
	{
		Folder: "sql_statements",
		Prefix: "sql_statement_",
		Shape:  ShapeArray,
		Required: []string{
			"change_date", "changed_by", "created_by", "creation_date",
			"data_connection_id", "description", "disabled", "display_name",
			"draft", "factory_id", "factory_validation_status",
			"has_user_template", "local_parameters", "namespace", "target",
			"transformations",
		},
	},
	{
		Folder:   "processes",
		Prefix:   "process_",
		Shape:    ShapeObject,
		Required: []string{"name", "columns", "objects", "events"},
	},
	{
		Folder: "catalog_processes",
		Prefix: "catalog_processes_",
		Shape:  ShapeObject,
		Required: []string{
			"change_date", "changed_by", "created_by", "creation_date",
			"data_source_connections", "description", "display_name",
			"enable_date", "enabled", "event_count", "name", "object_count",
		},
	},
	{
		Folder: "perspectives",
		Prefix: "perspective_",
		Shape:  ShapeObject,
		Required: []string{
			"base_ref", "categories", "change_date", "changed_by", "created_by",
			"creation_date", "default_projection", "description", "events",
			"id", "name", "namespace", "objects", "projections", "tags",
		},
	},
	{
		Folder:   "data_sources",
		Prefix:   "data_sources_",
		Shape:    ShapeObject,
		Required: []string{"data_source_id", "data_source_type", "display_name"},
	},
	{
		Folder: "environments",
		Prefix: "environments_",
		Shape:  ShapeObject,
		Required: []string{
			"change_date", "changed_by", "content_tag", "created_by",
			"creation_date", "display_name", "id", "name", "package_key",
			"package_version", "readonly",
		},
	},
}

// CategoryFor returns the category registered for a folder name.
func CategoryFor(folder string) (Category, bool) {
	for _, c := range Categories {
		if c.Folder == folder {
			return c, true
		}
	}
	return Category{}, false
}

// BaseName strips the category prefix and the .json extension.
func (c Category) BaseName(file string) string {
	return strings.TrimSuffix(strings.TrimPrefix(file, c.Prefix), ".json")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isJSONFile(name string) bool {
	return strings.HasSuffix(name, ".json")
}

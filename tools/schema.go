package tools

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	DoNotReference:             true,
	ExpandedStruct:             true,
}

// SchemaFor reflects the struct type T into a tool input schema.
//
// Only fields tagged `jsonschema:"required"` are required; descriptions come
// from `jsonschema:"description=..."` or `jsonschema_description` tags. Every
// object node, including nested structs and array items, ends up with an
// explicit required list.
func SchemaFor[T any]() (mcptypes.ToolInputSchema, error) {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return mcptypes.ToolInputSchema{}, fmt.Errorf("tool input must be a struct, got %s", t.Kind())
	}

	raw, err := json.Marshal(reflector.ReflectFromType(t))
	if err != nil {
		return mcptypes.ToolInputSchema{}, fmt.Errorf("marshal schema: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return mcptypes.ToolInputSchema{}, fmt.Errorf("decode schema: %w", err)
	}
	normalizeNode(doc)

	schema := mcptypes.ToolInputSchema{
		Type:       "object",
		Properties: map[string]any{},
		Required:   toStrings(doc["required"]),
	}
	if props, ok := doc["properties"].(map[string]any); ok {
		schema.Properties = props
	}
	return schema, nil
}

// normalizeInputSchema applies the same required-list marking to schemas
// built with the mcp builder API.
func normalizeInputSchema(s mcptypes.ToolInputSchema) mcptypes.ToolInputSchema {
	if s.Type == "" {
		s.Type = "object"
	}
	if s.Properties == nil {
		s.Properties = map[string]any{}
	}
	if s.Required == nil {
		s.Required = []string{}
	}
	for _, prop := range s.Properties {
		if m, ok := prop.(map[string]any); ok {
			normalizeNode(m)
		}
	}
	return s
}

// normalizeNode walks a JSON schema node and gives every object an explicit
// required list and closes it to additional properties.
func normalizeNode(node map[string]any) {
	delete(node, "$schema")
	delete(node, "$id")

	_, hasProps := node["properties"]
	if node["type"] == "object" || hasProps {
		if _, ok := node["required"]; !ok {
			node["required"] = []any{}
		}
		if _, ok := node["additionalProperties"]; !ok {
			node["additionalProperties"] = false
		}
	}

	if props, ok := node["properties"].(map[string]any); ok {
		for _, p := range props {
			if m, ok := p.(map[string]any); ok {
				normalizeNode(m)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		normalizeNode(items)
	}
	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		if list, ok := node[key].([]any); ok {
			for _, v := range list {
				if m, ok := v.(map[string]any); ok {
					normalizeNode(m)
				}
			}
		}
	}
}

func toStrings(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []any:
		for _, s := range list {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
	case []string:
		out = append(out, list...)
	}
	return out
}

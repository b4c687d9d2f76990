package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineItem struct {
	SKU      string `json:"sku" jsonschema:"required"`
	Quantity int    `json:"quantity" jsonschema:"required"`
	Note     string `json:"note,omitempty"`
}

type address struct {
	Street string `json:"street" jsonschema:"required"`
	Zip    string `json:"zip,omitempty"`
}

type orderInput struct {
	Customer string     `json:"customer" jsonschema:"required" jsonschema_description:"Customer name, as printed on the invoice"`
	Shipping address    `json:"shipping" jsonschema:"required"`
	Items    []lineItem `json:"items" jsonschema:"required"`
	Comment  string     `json:"comment,omitempty"`
}

func TestSchemaForRequiredFields(t *testing.T) {
	schema, err := SchemaFor[orderInput]()
	require.NoError(t, err)

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"customer", "shipping", "items"}, schema.Required)
	assert.Contains(t, schema.Properties, "comment")

	customer := schema.Properties["customer"].(map[string]any)
	assert.Equal(t, "Customer name, as printed on the invoice", customer["description"])

	shipping := schema.Properties["shipping"].(map[string]any)
	assert.Equal(t, "object", shipping["type"])
	assert.ElementsMatch(t, []any{"street"}, shipping["required"])
	assert.Equal(t, false, shipping["additionalProperties"])

	items := schema.Properties["items"].(map[string]any)
	assert.Equal(t, "array", items["type"])
	item := items["items"].(map[string]any)
	assert.ElementsMatch(t, []any{"sku", "quantity"}, item["required"])
}

type emptyInput struct{}

func TestSchemaForEmptyStruct(t *testing.T) {
	schema, err := SchemaFor[emptyInput]()
	require.NoError(t, err)
	assert.Equal(t, "object", schema.Type)
	assert.Empty(t, schema.Properties)
	assert.NotNil(t, schema.Required)
	assert.Empty(t, schema.Required)
}

func TestSchemaForRejectsNonStruct(t *testing.T) {
	_, err := SchemaFor[string]()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
}

func TestNormalizeNodeMarksNestedObjects(t *testing.T) {
	node := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"inner": map[string]any{
				"type":       "object",
				"properties": map[string]any{"x": map[string]any{"type": "string"}},
			},
			"list": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
	}

	normalizeNode(node)

	assert.NotContains(t, node, "$schema")
	assert.Equal(t, []any{}, node["required"])
	inner := node["properties"].(map[string]any)["inner"].(map[string]any)
	assert.Equal(t, []any{}, inner["required"])
	list := node["properties"].(map[string]any)["list"].(map[string]any)
	assert.Equal(t, false, list["items"].(map[string]any)["additionalProperties"])
}

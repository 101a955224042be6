package skill

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the SKILL.md front-matter, reflected
// from the Frontmatter struct.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(Frontmatter{})
}

// JSONSchema documents both accepted spellings of allowed-tools: a YAML
// list of tool names, or a single comma- or space-separated string.
func (ToolList) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			{Type: "string"},
		},
	}
}

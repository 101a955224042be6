package skill

import (
	"bytes"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// ToolList is the normalized form of the frontmatter's allowed-tools field.
// The corpus is inconsistent about its shape: some documents use a YAML
// list, others a single space- or comma-separated string. Both decode to
// the same slice.
type ToolList []string

// Frontmatter mirrors the YAML frontmatter block of a SKILL.md document.
// The jsonschema tags drive the published schema for the format.
type Frontmatter struct {
	Name          string   `mapstructure:"name" json:"name" jsonschema:"required,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Description   string   `mapstructure:"description" json:"description" jsonschema:"required"`
	License       string   `mapstructure:"license" json:"license,omitempty"`
	Compatibility string   `mapstructure:"compatibility" json:"compatibility,omitempty"`
	AllowedTools  ToolList `mapstructure:"allowed-tools" json:"allowed-tools,omitempty"`
	UserInvocable *bool    `mapstructure:"user-invocable" json:"user-invocable,omitempty"`
	Metadata      Metadata `mapstructure:"metadata" json:"metadata,omitempty"`
}

// FrontmatterFields is the set of recognized top-level frontmatter keys.
var FrontmatterFields = []string{
	"name", "description", "license", "compatibility",
	"allowed-tools", "user-invocable", "metadata",
}

// ParseDocument parses a SKILL.md document into its raw frontmatter map and
// Markdown body. The frontmatter is parsed by goldmark so that documents
// with unusual but valid YAML keep working the same way they render.
func ParseDocument(content []byte) (map[string]interface{}, string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, "", errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, "", errors.New("missing frontmatter")
	}

	return metaData, extractBody(string(content)), nil
}

// DecodeFrontmatter decodes a raw frontmatter map into a Frontmatter
// struct, normalizing allowed-tools to a list regardless of how the
// document spelled it.
func DecodeFrontmatter(raw map[string]interface{}) (*Frontmatter, error) {
	var fm Frontmatter

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fm,
		WeaklyTypedInput: true,
		DecodeHook:       toolListHook(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create frontmatter decoder")
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode frontmatter")
	}

	return &fm, nil
}

// Parse parses a SKILL.md document into a Skill. The Directory field is
// left for the caller to fill in.
func Parse(content []byte) (*Skill, error) {
	raw, body, err := ParseDocument(content)
	if err != nil {
		return nil, err
	}

	fm, err := DecodeFrontmatter(raw)
	if err != nil {
		return nil, err
	}

	if fm.Name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if fm.Description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return fm.toSkill(body), nil
}

func (fm *Frontmatter) toSkill(body string) *Skill {
	// user-invocable defaults to true when absent
	invocable := true
	if fm.UserInvocable != nil {
		invocable = *fm.UserInvocable
	}

	return &Skill{
		Name:          strings.TrimSpace(fm.Name),
		Description:   strings.TrimSpace(fm.Description),
		License:       fm.License,
		Compatibility: fm.Compatibility,
		AllowedTools:  fm.AllowedTools,
		UserInvocable: invocable,
		Metadata:      fm.Metadata,
		Content:       body,
	}
}

// toolListHook converts the scalar and sequence spellings of allowed-tools
// into a ToolList.
func toolListHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(ToolList(nil)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ToolList(SplitTools(v)), nil
		case []interface{}:
			tools := make(ToolList, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, errors.Errorf("allowed-tools entries must be strings, got %T", item)
				}
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					tools = append(tools, trimmed)
				}
			}
			return tools, nil
		default:
			return nil, errors.Errorf("allowed-tools must be a string or a list, got %T", data)
		}
	}
}

// SplitTools splits the scalar spelling of allowed-tools on commas and
// whitespace.
func SplitTools(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	tools := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tools = append(tools, f)
		}
	}
	return tools
}

// SplitRaw splits raw document content into the frontmatter YAML text and
// the Markdown body. The boolean reports whether a frontmatter block was
// found. Lint rules use the raw YAML text for strict re-decoding.
func SplitRaw(content string) (yamlText, body string, ok bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}

	rest := strings.TrimPrefix(content, "---")
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			yamlText = strings.Join(lines[:i], "\n")
			body = strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
			return yamlText, body, true
		}
	}

	return "", content, false
}

// extractBody removes the YAML frontmatter and returns the body.
func extractBody(content string) string {
	_, body, ok := SplitRaw(content)
	if !ok {
		return content
	}
	return body
}

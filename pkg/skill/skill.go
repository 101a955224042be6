// Package skill provides the document model for a corpus of Markdown skill
// documents. A skill is a directory containing a SKILL.md file whose YAML
// frontmatter describes the skill's purpose, licensing, and tool
// requirements, followed by a Markdown body with the instructions
// themselves. Skills are discovered from layered directories so that
// repo-local documents shadow user-global ones.
package skill

// SkillFileName is the canonical document name inside a skill directory.
const SkillFileName = "SKILL.md"

// KnownCategories is the informal category set used by metadata.category.
var KnownCategories = []string{"data", "meta", "operations", "security", "vcs"}

// Skill represents a discovered skill document with normalized metadata.
type Skill struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	License       string   `json:"license,omitempty"`
	Compatibility string   `json:"compatibility,omitempty"`
	AllowedTools  []string `json:"allowedTools,omitempty"`
	UserInvocable bool     `json:"userInvocable"`
	Metadata      Metadata `json:"metadata"`

	// Directory is the full path to the skill directory. Empty for
	// builtin skills served from the embedded bundle.
	Directory string `json:"directory,omitempty"`
	// Content is the Markdown body of SKILL.md, without the frontmatter.
	Content string `json:"-"`
	// Builtin reports whether the skill came from the embedded bundle.
	Builtin bool `json:"builtin,omitempty"`
}

// Metadata holds the nested metadata block of the frontmatter.
type Metadata struct {
	Author   string `yaml:"author,omitempty" json:"author,omitempty" mapstructure:"author"`
	Version  string `yaml:"version,omitempty" json:"version,omitempty" mapstructure:"version"`
	Category string `yaml:"category,omitempty" json:"category,omitempty" mapstructure:"category"`
}

// KnownCategory reports whether the category is one of the documented set.
func KnownCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}

// FilterByAllowlist filters skills by an allowlist of names. An empty
// allowlist returns all skills.
func FilterByAllowlist(skills map[string]*Skill, allowed []string) map[string]*Skill {
	if len(allowed) == 0 {
		return skills
	}

	filtered := make(map[string]*Skill)
	for _, name := range allowed {
		if s, exists := skills[name]; exists {
			filtered[name] = s
		}
	}
	return filtered
}

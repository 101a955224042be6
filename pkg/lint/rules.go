package lint

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skillctl/skillctl/pkg/skill"
)

// Rule identifiers, stable for machine consumption of lint output.
const (
	RuleFrontmatterParse   = "frontmatter-parse"
	RuleNameRequired       = "name-required"
	RuleNameFormat         = "name-format"
	RuleNameDirMismatch    = "name-dir-mismatch"
	RuleDescRequired       = "description-required"
	RuleDescLength         = "description-length"
	RuleCompatLength       = "compatibility-length"
	RuleCategoryKnown      = "category-known"
	RuleVersionFormat      = "version-format"
	RuleAllowedToolsFormat = "allowed-tools-format"
	RuleUnknownField       = "unknown-field"
	RuleRefMissing         = "ref-missing"
	RuleSkillRefUnresolved = "skill-ref-unresolved"
	RuleDuplicateName      = "duplicate-name"
)

// Field limits for frontmatter values.
const (
	MaxNameLength   = 64
	MaxDescLength   = 1024
	MaxCompatLength = 500
)

var (
	namePattern    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	versionPattern = regexp.MustCompile(`^v?\d+\.\d+(\.\d+)?([-.][0-9A-Za-z.-]+)?$`)
)

// ValidSkillName reports whether name is a lowercase hyphenated slug within
// the length limit.
func ValidSkillName(name string) bool {
	return name != "" && len(name) <= MaxNameLength && namePattern.MatchString(name)
}

type addFunc func(rule string, severity Severity, message string)

func checkName(doc *document, add addFunc) {
	name := doc.fm.Name
	if name == "" {
		add(RuleNameRequired, SeverityError, "missing required field: name")
		return
	}
	if len(name) > MaxNameLength {
		add(RuleNameFormat, SeverityError, fmt.Sprintf("name exceeds %d characters", MaxNameLength))
	}
	if !namePattern.MatchString(name) {
		add(RuleNameFormat, SeverityError, "name must be a lowercase hyphenated slug")
	}
	if name != doc.dirName {
		add(RuleNameDirMismatch, SeverityError,
			fmt.Sprintf("name '%s' does not match directory name '%s'", name, doc.dirName))
	}
}

func checkDescription(doc *document, add addFunc) {
	desc := doc.fm.Description
	if desc == "" {
		add(RuleDescRequired, SeverityError, "missing required field: description")
		return
	}
	if len(desc) > MaxDescLength {
		add(RuleDescLength, SeverityError, fmt.Sprintf("description exceeds %d characters", MaxDescLength))
	}
}

func checkCompatibility(doc *document, add addFunc) {
	if len(doc.fm.Compatibility) > MaxCompatLength {
		add(RuleCompatLength, SeverityError, fmt.Sprintf("compatibility exceeds %d characters", MaxCompatLength))
	}
}

func checkCategory(doc *document, add addFunc) {
	category := doc.fm.Metadata.Category
	if category == "" {
		return
	}
	if !skill.KnownCategory(category) {
		add(RuleCategoryKnown, SeverityWarning,
			fmt.Sprintf("category '%s' is not one of %s", category, strings.Join(skill.KnownCategories, ", ")))
	}
}

func checkVersion(doc *document, add addFunc) {
	version := doc.fm.Metadata.Version
	if version == "" {
		return
	}
	if !versionPattern.MatchString(version) {
		add(RuleVersionFormat, SeverityWarning,
			fmt.Sprintf("version '%s' is not semver-like", version))
	}
}

// checkAllowedToolsShape flags the scalar spelling of allowed-tools. The
// value still normalizes, but the corpus convention is a YAML list.
func checkAllowedToolsShape(doc *document, add addFunc) {
	raw, present := doc.raw["allowed-tools"]
	if !present {
		return
	}
	if _, isString := raw.(string); isString {
		add(RuleAllowedToolsFormat, SeverityWarning,
			"allowed-tools is a string; prefer a YAML list")
	}
}

// strictFrontmatter only exists for unknown-field detection via yaml.v3
// strict decoding. allowed-tools is a yaml.Node because both spellings are
// accepted there.
type strictFrontmatter struct {
	Name          string    `yaml:"name"`
	Description   string    `yaml:"description"`
	License       string    `yaml:"license"`
	Compatibility string    `yaml:"compatibility"`
	AllowedTools  yaml.Node `yaml:"allowed-tools"`
	UserInvocable bool      `yaml:"user-invocable"`
	Metadata      struct {
		Author   string `yaml:"author"`
		Version  string `yaml:"version"`
		Category string `yaml:"category"`
	} `yaml:"metadata"`
}

func checkUnknownFields(doc *document, add addFunc) {
	yamlText, _, ok := skill.SplitRaw(string(doc.content))
	if !ok {
		return
	}

	dec := yaml.NewDecoder(strings.NewReader(yamlText))
	dec.KnownFields(true)

	var fm strictFrontmatter
	if err := dec.Decode(&fm); err != nil {
		// The goldmark parse already succeeded, so any failure here is a
		// strictness violation rather than broken YAML.
		add(RuleUnknownField, SeverityWarning, err.Error())
	}
}

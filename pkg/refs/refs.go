// Package refs extracts and resolves cross-references from skill document
// bodies. Two conventions are recognized: file references, written as
// Markdown links or inline code paths such as `references/checklist.md`,
// and skill references, written in prose as "see the `api-design` skill".
package refs

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind classifies a reference.
type Kind string

const (
	// KindFile is a reference to another file, relative to the skill directory.
	KindFile Kind = "file"
	// KindSkill is a reference to another skill by name.
	KindSkill Kind = "skill"
)

// Reference is a single outgoing reference found in a document body.
type Reference struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target"`
}

// skillRefPattern matches the prose convention for cross-skill references,
// e.g. "See the `code/api-design` skill" or "see `commit-message` skill".
// The class includes '.' so that a path-looking span followed by "skill"
// still counts as a skill reference, not a file path.
var skillRefPattern = regexp.MustCompile("`([a-z0-9][a-z0-9./-]*)`\\s+skill")

// Extract returns all references found in a Markdown body. File references
// are deduplicated against skill references: a code span that matched the
// skill convention is not also reported as a file.
func Extract(body string) []Reference {
	var out []Reference
	seen := make(map[Reference]bool)

	add := func(r Reference) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	skillTargets := make(map[string]bool)
	for _, m := range skillRefPattern.FindAllStringSubmatch(body, -1) {
		skillTargets[m[1]] = true
		add(Reference{Kind: KindSkill, Target: m[1]})
	}

	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Link:
			if target, ok := fileTarget(string(node.Destination)); ok {
				add(Reference{Kind: KindFile, Target: target})
			}
		case *ast.Image:
			if target, ok := fileTarget(string(node.Destination)); ok {
				add(Reference{Kind: KindFile, Target: target})
			}
		case *ast.CodeSpan:
			value := string(node.Text(source)) //nolint:staticcheck // Text is fine for code spans
			if skillTargets[value] {
				return ast.WalkContinue, nil
			}
			if target, ok := codePathTarget(value); ok {
				add(Reference{Kind: KindFile, Target: target})
			}
		}

		return ast.WalkContinue, nil
	})

	return out
}

// fileTarget normalizes a link destination to a relative file path, or
// reports false for external and intra-document targets.
func fileTarget(dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}
	if strings.HasPrefix(dest, "/") {
		return "", false
	}

	// Strip anchors from relative targets
	if idx := strings.Index(dest, "#"); idx != -1 {
		dest = dest[:idx]
	}
	if dest == "" {
		return "", false
	}

	return dest, true
}

// codePathTarget recognizes inline code spans that name a relative Markdown
// file, e.g. `references/checklist.md`.
func codePathTarget(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasSuffix(value, ".md") {
		return "", false
	}
	if strings.ContainsAny(value, " \t\n") {
		return "", false
	}
	if strings.Contains(value, "://") || strings.HasPrefix(value, "/") {
		return "", false
	}
	return value, true
}

// MissingFiles returns the file references that do not resolve to an
// existing file under the skill directory.
func MissingFiles(skillDir string, references []Reference) []string {
	var missing []string
	for _, r := range references {
		if r.Kind != KindFile {
			continue
		}
		if _, err := os.Stat(filepath.Join(skillDir, filepath.FromSlash(r.Target))); err != nil {
			missing = append(missing, r.Target)
		}
	}
	return missing
}

// UnresolvedSkills returns the skill references not satisfied by the known
// predicate. Bundle-installed skills carry an org/repo prefix, so a bare
// target also resolves when a known name ends with "/<target>".
func UnresolvedSkills(references []Reference, names []string) []string {
	var unresolved []string
	for _, r := range references {
		if r.Kind != KindSkill {
			continue
		}
		if !resolves(r.Target, names) {
			unresolved = append(unresolved, r.Target)
		}
	}
	return unresolved
}

func resolves(target string, names []string) bool {
	for _, name := range names {
		if name == target || strings.HasSuffix(name, "/"+target) {
			return true
		}
	}
	return false
}

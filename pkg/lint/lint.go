// Package lint validates a skill corpus against the documentation
// conventions the documents are supposed to follow: required frontmatter
// fields, name and length constraints, the informal category set, and
// resolvable cross-references. The linter reports findings rather than
// failing fast so a whole corpus can be checked in one pass.
package lint

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/logger"
	"github.com/skillctl/skillctl/pkg/refs"
	"github.com/skillctl/skillctl/pkg/skill"
)

// Severity classifies a finding.
type Severity string

const (
	// SeverityError marks violations of hard requirements.
	SeverityError Severity = "error"
	// SeverityWarning marks style and consistency issues.
	SeverityWarning Severity = "warning"
)

// Finding is a single rule violation in a document.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Skill    string   `json:"skill"`
	File     string   `json:"file"`
	Message  string   `json:"message"`
}

// Report aggregates findings over a corpus scan.
type Report struct {
	Scanned  int       `json:"scanned"`
	Findings []Finding `json:"findings"`
}

// Errors returns the number of error-severity findings.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning-severity findings.
func (r *Report) Warnings() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Err returns the error-severity findings as a single error, or nil when
// the corpus has no hard violations.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			result = multierror.Append(result, errors.Errorf("%s: %s: %s", f.Skill, f.Rule, f.Message))
		}
	}
	return result.ErrorOrNil()
}

// Linter checks skill directories for convention violations.
type Linter struct {
	ignoreGlobs []string
}

// Option configures a Linter.
type Option func(*Linter)

// WithIgnoreGlobs skips skill directories whose names match any of the
// given doublestar globs.
func WithIgnoreGlobs(globs ...string) Option {
	return func(l *Linter) {
		l.ignoreGlobs = append(l.ignoreGlobs, globs...)
	}
}

// New creates a Linter.
func New(opts ...Option) *Linter {
	l := &Linter{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// document is a scanned SKILL.md, parsed as far as parsing succeeded.
type document struct {
	dirName string
	dir     string
	file    string
	content []byte
	raw     map[string]interface{}
	fm      *skill.Frontmatter
	body    string
}

// LintDirs lints every skill directory found under the given corpus
// directories. Cross-corpus rules (duplicate names, skill reference
// resolution) see the union of all directories.
func (l *Linter) LintDirs(ctx context.Context, dirs []string) (*Report, error) {
	var docs []*document

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).WithError(err).Debug("skipping unreadable corpus directory")
			continue
		}

		for _, entry := range entries {
			entryPath := filepath.Join(dir, entry.Name())
			info, err := os.Stat(entryPath)
			if err != nil || !info.IsDir() {
				continue
			}
			if l.ignored(entry.Name()) {
				continue
			}

			skillFile := filepath.Join(entryPath, skill.SkillFileName)
			content, err := os.ReadFile(skillFile)
			if err != nil {
				continue
			}

			docs = append(docs, &document{
				dirName: entry.Name(),
				dir:     entryPath,
				file:    skillFile,
				content: content,
			})
		}
	}

	report := &Report{Scanned: len(docs)}

	for _, doc := range docs {
		l.parseDocument(doc, report)
	}

	names := corpusNames(docs)
	for _, doc := range docs {
		l.lintDocument(doc, names, report)
	}
	lintDuplicates(docs, report)

	sortFindings(report.Findings)
	return report, nil
}

// LintFile lints a single skill directory in isolation. Skill references
// to other corpus members cannot be resolved in this mode and are skipped.
func (l *Linter) LintFile(ctx context.Context, skillDir string) (*Report, error) {
	skillFile := filepath.Join(skillDir, skill.SkillFileName)
	content, err := os.ReadFile(skillFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", skillFile)
	}

	doc := &document{
		dirName: filepath.Base(skillDir),
		dir:     skillDir,
		file:    skillFile,
		content: content,
	}

	report := &Report{Scanned: 1}
	l.parseDocument(doc, report)
	l.lintDocument(doc, nil, report)
	sortFindings(report.Findings)
	return report, nil
}

func (l *Linter) ignored(dirName string) bool {
	for _, g := range l.ignoreGlobs {
		if ok, err := doublestar.Match(g, dirName); err == nil && ok {
			return true
		}
	}
	return false
}

func (l *Linter) parseDocument(doc *document, report *Report) {
	raw, body, err := skill.ParseDocument(doc.content)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Rule:     RuleFrontmatterParse,
			Severity: SeverityError,
			Skill:    doc.dirName,
			File:     doc.file,
			Message:  err.Error(),
		})
		return
	}
	doc.raw = raw
	doc.body = body

	fm, err := skill.DecodeFrontmatter(raw)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Rule:     RuleFrontmatterParse,
			Severity: SeverityError,
			Skill:    doc.dirName,
			File:     doc.file,
			Message:  err.Error(),
		})
		return
	}
	doc.fm = fm
}

func corpusNames(docs []*document) []string {
	var names []string
	for _, doc := range docs {
		if doc.fm != nil && doc.fm.Name != "" {
			names = append(names, doc.fm.Name)
		}
	}
	return names
}

func lintDuplicates(docs []*document, report *Report) {
	byName := make(map[string][]*document)
	for _, doc := range docs {
		if doc.fm != nil && doc.fm.Name != "" {
			byName[doc.fm.Name] = append(byName[doc.fm.Name], doc)
		}
	}

	for name, dups := range byName {
		if len(dups) < 2 {
			continue
		}
		for _, doc := range dups[1:] {
			report.Findings = append(report.Findings, Finding{
				Rule:     RuleDuplicateName,
				Severity: SeverityError,
				Skill:    doc.dirName,
				File:     doc.file,
				Message:  "duplicate skill name '" + name + "' (also defined in " + dups[0].dir + ")",
			})
		}
	}
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Rule < findings[j].Rule
	})
}

// lintDocument runs the per-document rules. names is the full corpus name
// set for skill reference resolution; nil skips that rule.
func (l *Linter) lintDocument(doc *document, names []string, report *Report) {
	if doc.fm == nil {
		return
	}

	add := func(rule string, severity Severity, message string) {
		report.Findings = append(report.Findings, Finding{
			Rule:     rule,
			Severity: severity,
			Skill:    doc.dirName,
			File:     doc.file,
			Message:  message,
		})
	}

	checkName(doc, add)
	checkDescription(doc, add)
	checkCompatibility(doc, add)
	checkCategory(doc, add)
	checkVersion(doc, add)
	checkAllowedToolsShape(doc, add)
	checkUnknownFields(doc, add)

	references := refs.Extract(doc.body)
	for _, missing := range refs.MissingFiles(doc.dir, references) {
		add(RuleRefMissing, SeverityError, "referenced file does not exist: "+missing)
	}
	if names != nil {
		for _, unresolved := range refs.UnresolvedSkills(references, names) {
			add(RuleSkillRefUnresolved, SeverityWarning, "referenced skill not found in corpus: "+unresolved)
		}
	}
}

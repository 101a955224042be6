package skill

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Discovery handles skill discovery from configured directories.
//
// Precedence is positional: standalone directories are scanned first
// (repo-local before user-global), then bundle directories, then the
// builtin filesystem. The first skill seen under a given name wins.
type Discovery struct {
	skillDirs  []string
	bundleDirs []bundleDirConfig
	builtins   fs.FS
}

// bundleDirConfig represents an installed bundle's skills directory with
// its org/repo name prefix.
type bundleDirConfig struct {
	dir    string
	prefix string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets custom standalone skill directories
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.skillDirs = dirs
		return nil
	}
}

// WithBundleDir adds a bundles root; each org/repo subtree containing a
// skills directory becomes a prefixed source.
func WithBundleDir(dir string) Option {
	return func(d *Discovery) error {
		d.addBundleDirs(dir)
		return nil
	}
}

// WithBuiltins serves skills from an embedded filesystem at lowest
// precedence.
func WithBuiltins(fsys fs.FS) Option {
	return func(d *Discovery) error {
		d.builtins = fsys
		return nil
	}
}

// WithDefaultDirs initializes the default layered directories.
func WithDefaultDirs() Option {
	return func(d *Discovery) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		d.skillDirs = []string{
			"./.skillctl/skills",                          // Repo-local (highest precedence)
			filepath.Join(homeDir, ".skillctl", "skills"), // User-global
		}

		d.bundleDirs = []bundleDirConfig{}
		d.addBundleDirs("./.skillctl/bundles")
		d.addBundleDirs(filepath.Join(homeDir, ".skillctl", "bundles"))

		return nil
	}
}

// addBundleDirs scans a bundles root and registers every org/repo subtree
// that carries a skills directory.
func (d *Discovery) addBundleDirs(bundlesDir string) {
	_ = filepath.Walk(bundlesDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		skillsDir := filepath.Join(p, "skills")
		if _, err := os.Stat(skillsDir); err != nil {
			return nil
		}

		relPath, err := filepath.Rel(bundlesDir, p)
		if err != nil {
			return nil
		}

		bundleName := filepath.ToSlash(relPath)
		d.bundleDirs = append(d.bundleDirs, bundleDirConfig{
			dir:    skillsDir,
			prefix: bundleName + "/",
		})

		return filepath.SkipDir
	})
}

// NewDiscovery creates a new skill discovery instance. With no options the
// default layered directories are used.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		if err := WithDefaultDirs()(d); err != nil {
			return nil, err
		}
		return d, nil
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Dirs returns the standalone skill directories in precedence order.
func (d *Discovery) Dirs() []string {
	dirs := make([]string, 0, len(d.skillDirs)+len(d.bundleDirs))
	dirs = append(dirs, d.skillDirs...)
	for _, b := range d.bundleDirs {
		dirs = append(dirs, b.dir)
	}
	return dirs
}

// DiscoverSkills finds all available skills from configured sources.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, dir := range d.skillDirs {
		d.discoverFromDir(dir, "", skills)
	}

	for _, bundle := range d.bundleDirs {
		d.discoverFromDir(bundle.dir, bundle.prefix, skills)
	}

	if d.builtins != nil {
		d.discoverBuiltins(skills)
	}

	return skills, nil
}

// discoverFromDir discovers skills from a directory with an optional name
// prefix. Unreadable directories and unparseable documents are skipped; the
// lint command is the place that reports them.
func (d *Discovery) discoverFromDir(dir, prefix string, skills map[string]*Skill) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		// os.Stat follows symlinked skill directories
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		content, err := os.ReadFile(filepath.Join(entryPath, SkillFileName))
		if err != nil {
			continue
		}

		s, err := Parse(content)
		if err != nil {
			continue
		}

		name := s.Name
		if prefix != "" {
			name = prefix + s.Name
		}

		if _, exists := skills[name]; !exists {
			s.Name = name
			s.Directory = entryPath
			skills[name] = s
		}
	}
}

// discoverBuiltins loads skills from the embedded bundle at lowest
// precedence.
func (d *Discovery) discoverBuiltins(skills map[string]*Skill) {
	entries, err := fs.ReadDir(d.builtins, ".")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		content, err := fs.ReadFile(d.builtins, path.Join(entry.Name(), SkillFileName))
		if err != nil {
			continue
		}

		s, err := Parse(content)
		if err != nil {
			continue
		}

		if _, exists := skills[s.Name]; !exists {
			s.Builtin = true
			skills[s.Name] = s
		}
	}
}

// GetSkill returns a specific skill by name.
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	s, exists := skills[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return s, nil
}

// ListSkillNames returns the sorted names of all available skills.
func (d *Discovery) ListSkillNames() ([]string, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

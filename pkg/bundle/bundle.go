// Package bundle installs and removes skill bundles from GitHub
// repositories. A bundle is the skills/ directory of a repo, copied under
// .skillctl/bundles/<org>/<repo>/skills so discovery can serve its skills
// under the org/repo/ name prefix.
package bundle

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/skill"
)

const (
	skillctlDir   = ".skillctl"
	bundlesSubdir = "bundles"
	skillsSubdir  = "skills"
)

// ValidateRepoName validates a GitHub repository name format.
// Expected format: "org/repo" (e.g., "acme/playbooks").
func ValidateRepoName(repo string) error {
	if repo == "" {
		return errors.New("repository name cannot be empty")
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository format %q: expected 'org/repo'", repo)
	}
	return nil
}

// Installer copies skill directories from a cloned GitHub repository into
// the local or global bundles tree.
type Installer struct {
	global    bool
	force     bool
	targetDir string
}

// Option configures an Installer or Remover instance
type Option func(*Installer)

// WithGlobal targets the user-global ~/.skillctl tree instead of the
// repo-local one.
func WithGlobal(global bool) Option {
	return func(i *Installer) {
		i.global = global
	}
}

// WithForce overwrites an existing bundle of the same name
func WithForce(force bool) Option {
	return func(i *Installer) {
		i.force = force
	}
}

// NewInstaller creates a new bundle installer
func NewInstaller(opts ...Option) (*Installer, error) {
	i := &Installer{}
	for _, opt := range opts {
		opt(i)
	}

	base, err := baseDir(i.global)
	if err != nil {
		return nil, err
	}
	i.targetDir = base

	return i, nil
}

func baseDir(global bool) (string, error) {
	if !global {
		return skillctlDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(homeDir, skillctlDir), nil
}

// InstallResult describes what an install copied into place.
type InstallResult struct {
	Bundle string   // org/repo
	Skills []string // unprefixed skill directory names
}

// Install clones a GitHub repository and copies every skill directory under
// its skills/ tree into bundles/<org>/<repo>/skills.
func (i *Installer) Install(ctx context.Context, repo string, ref string) (*InstallResult, error) {
	if err := ValidateRepoName(repo); err != nil {
		return nil, err
	}

	if err := validateGHCLI(); err != nil {
		return nil, err
	}

	tempDir, err := i.cloneRepo(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	skillDirs, err := findSkillDirs(filepath.Join(tempDir, skillsSubdir))
	if err != nil || len(skillDirs) == 0 {
		return nil, errors.Errorf("no skills found in repository (expected a %s/ directory with SKILL.md subdirectories)", skillsSubdir)
	}

	bundleDir := filepath.Join(i.targetDir, bundlesSubdir, filepath.FromSlash(repo))
	if err := i.checkExisting(bundleDir); err != nil {
		return nil, err
	}

	result := &InstallResult{Bundle: repo}

	destSkillsDir := filepath.Join(bundleDir, skillsSubdir)
	if err := os.MkdirAll(destSkillsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create skills directory")
	}
	for _, dir := range skillDirs {
		name := filepath.Base(dir)
		if err := copyDir(dir, filepath.Join(destSkillsDir, name)); err != nil {
			return nil, errors.Wrapf(err, "failed to install skill %s", name)
		}
		result.Skills = append(result.Skills, name)
	}

	return result, nil
}

// InstallSkill clones a GitHub repository and copies a single directory out
// of it into the standalone skills tree, unprefixed.
func (i *Installer) InstallSkill(ctx context.Context, repo, ref, dir string) (string, error) {
	if err := ValidateRepoName(repo); err != nil {
		return "", err
	}

	if err := validateGHCLI(); err != nil {
		return "", err
	}

	tempDir, err := i.cloneRepo(ctx, repo, ref)
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tempDir)

	srcDir := filepath.Join(tempDir, filepath.FromSlash(dir))
	content, err := os.ReadFile(filepath.Join(srcDir, skill.SkillFileName))
	if err != nil {
		return "", errors.Errorf("%s does not contain a %s file", dir, skill.SkillFileName)
	}
	s, err := skill.Parse(content)
	if err != nil {
		return "", errors.Wrapf(err, "invalid skill document in %s", dir)
	}

	destDir := filepath.Join(i.targetDir, skillsSubdir, s.Name)
	if err := i.checkExisting(destDir); err != nil {
		return "", err
	}

	if err := copyDir(srcDir, destDir); err != nil {
		return "", errors.Wrapf(err, "failed to install skill %s", s.Name)
	}

	return s.Name, nil
}

func validateGHCLI() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return errors.New("gh CLI not found: install it from https://cli.github.com and authenticate with 'gh auth login'")
	}
	return nil
}

func (i *Installer) cloneRepo(ctx context.Context, repo, ref string) (string, error) {
	tempDir, err := os.MkdirTemp("", "skillctl-bundle-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}

	args := []string{"repo", "clone", repo, tempDir}
	if ref != "" {
		args = append(args, "--", "--branch", ref, "--depth", "1")
	} else {
		args = append(args, "--", "--depth", "1")
	}

	cmd := exec.CommandContext(ctx, "gh", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(tempDir)
		return "", errors.Wrapf(err, "failed to clone repository: %s", string(output))
	}

	return tempDir, nil
}

// findSkillDirs returns the immediate subdirectories of dir that carry a
// SKILL.md document.
func findSkillDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillPath := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(skillPath, skill.SkillFileName)); err == nil {
			dirs = append(dirs, skillPath)
		}
	}
	return dirs, nil
}

func (i *Installer) checkExisting(path string) error {
	if _, err := os.Stat(path); err == nil {
		if !i.force {
			return errors.Errorf("already installed at %s (use --force to overwrite)", path)
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrap(err, "failed to remove existing install")
		}
	}
	return nil
}

func copyDir(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}

		return copyFile(path, destPath)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// Remover handles bundle removal
type Remover struct {
	baseDir string
}

// NewRemover creates a new bundle remover
func NewRemover(opts ...Option) (*Remover, error) {
	i := &Installer{}
	for _, opt := range opts {
		opt(i)
	}

	base, err := baseDir(i.global)
	if err != nil {
		return nil, err
	}

	return &Remover{baseDir: base}, nil
}

// Remove removes an installed bundle by its org/repo name, pruning the
// org directory when it becomes empty.
func (r *Remover) Remove(name string) error {
	if err := ValidateRepoName(name); err != nil {
		return err
	}

	bundlePath := filepath.Join(r.baseDir, bundlesSubdir, filepath.FromSlash(name))

	if _, err := os.Stat(bundlePath); os.IsNotExist(err) {
		return errors.Errorf("bundle '%s' not found", name)
	}

	if err := os.RemoveAll(bundlePath); err != nil {
		return errors.Wrap(err, "failed to remove bundle")
	}

	orgDir := filepath.Dir(bundlePath)
	if entries, err := os.ReadDir(orgDir); err == nil && len(entries) == 0 {
		os.Remove(orgDir)
	}

	return nil
}

// RemoveSkill removes a standalone skill directory by name.
func (r *Remover) RemoveSkill(name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return errors.Errorf("invalid skill name %q", name)
	}

	skillPath := filepath.Join(r.baseDir, skillsSubdir, name)

	if _, err := os.Stat(filepath.Join(skillPath, skill.SkillFileName)); os.IsNotExist(err) {
		return errors.Errorf("skill '%s' not found", name)
	}

	return errors.Wrap(os.RemoveAll(skillPath), "failed to remove skill")
}

// ListBundles returns the org/repo names of all installed bundles.
func (r *Remover) ListBundles() ([]string, error) {
	bundlesDir := filepath.Join(r.baseDir, bundlesSubdir)

	orgs, err := os.ReadDir(bundlesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var bundles []string
	for _, org := range orgs {
		if !org.IsDir() {
			continue
		}
		repos, err := os.ReadDir(filepath.Join(bundlesDir, org.Name()))
		if err != nil {
			continue
		}
		for _, repo := range repos {
			if !repo.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(bundlesDir, org.Name(), repo.Name(), skillsSubdir)); err == nil {
				bundles = append(bundles, org.Name()+"/"+repo.Name())
			}
		}
	}

	return bundles, nil
}

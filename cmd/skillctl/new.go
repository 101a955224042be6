package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/skill"
)

const skillTemplate = `---
name: %s
description: %q
metadata:
  category: %s
---

# %s

Describe when and how to apply this skill.

## Steps

1. First step.
`

var newCmd = &cobra.Command{
	Use:   "new name",
	Short: "Scaffold a new skill",
	Long: `Scaffold a new skill directory with a SKILL.md template.

The skill is created under ./.skillctl/skills (or ~/.skillctl/skills with
-g). The name must be a lowercase hyphenated slug.

Examples:
  skillctl new rate-limiting
  skillctl new incident-response -c operations --description "Runbook for paging"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		global, _ := cmd.Flags().GetBool("global")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		newSkill(args[0], description, category, global)
	},
}

func init() {
	newCmd.Flags().BoolP("global", "g", false, "Create under ~/.skillctl instead of the current repository")
	newCmd.Flags().String("description", "", "Skill description")
	newCmd.Flags().StringP("category", "c", "", "Skill category")
	rootCmd.AddCommand(newCmd)
}

func newSkill(name, description, category string, global bool) {
	if !lint.ValidSkillName(name) {
		presenter.Error(fmt.Errorf("invalid skill name %q", name), "Name must be a lowercase hyphenated slug")
		os.Exit(1)
	}
	if category != "" && !skill.KnownCategory(category) {
		presenter.Warning(fmt.Sprintf("Category '%s' is not one of the usual categories (%s)",
			category, strings.Join(skill.KnownCategories, ", ")))
	}
	if description == "" {
		description = "TODO: describe when this skill applies"
	}
	if category == "" {
		category = "meta"
	}

	base := ".skillctl"
	if global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			presenter.Error(err, "Failed to get home directory")
			os.Exit(1)
		}
		base = filepath.Join(homeDir, ".skillctl")
	}

	skillDir := filepath.Join(base, "skills", name)
	skillFile := filepath.Join(skillDir, skill.SkillFileName)
	if _, err := os.Stat(skillFile); err == nil {
		presenter.Error(fmt.Errorf("skill already exists at %s", skillDir), "Failed to create skill")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Join(skillDir, "references"), 0o755); err != nil {
		presenter.Error(err, "Failed to create skill directory")
		os.Exit(1)
	}

	content := fmt.Sprintf(skillTemplate, name, description, category, titleFromSlug(name))
	if err := os.WriteFile(skillFile, []byte(content), 0o644); err != nil {
		presenter.Error(err, "Failed to write skill file")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Created skill '%s' at %s", name, skillDir))
}

// titleFromSlug turns "rate-limiting" into "Rate Limiting". Slugs are
// ASCII lowercase so byte arithmetic is safe.
func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}

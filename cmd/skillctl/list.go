package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/skill"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills in the corpus",
	Long:  `List all discovered skills with their names, categories, and descriptions.`,
	Run: func(cmd *cobra.Command, _ []string) {
		category, _ := cmd.Flags().GetString("category")
		asJSON, _ := cmd.Flags().GetBool("json")
		listSkills(category, asJSON)
	},
}

func init() {
	listCmd.Flags().StringP("category", "c", "", "Only show skills in this category")
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}

func listSkills(category string, asJSON bool) {
	discovery, err := newDiscovery()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill discovery")
		os.Exit(1)
	}

	skills, err := discovery.DiscoverSkills()
	if err != nil {
		presenter.Error(err, "Failed to discover skills")
		os.Exit(1)
	}

	names, err := discovery.ListSkillNames()
	if err != nil {
		presenter.Error(err, "Failed to list skills")
		os.Exit(1)
	}

	var selected []*skill.Skill
	for _, name := range names {
		s := skills[name]
		if category != "" && s.Metadata.Category != category {
			continue
		}
		selected = append(selected, s)
	}

	if asJSON {
		payload, err := json.MarshalIndent(selected, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to marshal skills")
			os.Exit(1)
		}
		fmt.Println(string(payload))
		return
	}

	if len(selected) == 0 {
		presenter.Info("No skills found")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSOURCE\tDESCRIPTION")
	for _, s := range selected {
		source := s.Directory
		if s.Builtin {
			source = "(builtin)"
		}
		description := s.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Metadata.Category, source, description)
	}
	tw.Flush()
}

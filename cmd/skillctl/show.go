package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/render"
)

var showCmd = &cobra.Command{
	Use:   "show <skill-name>",
	Short: "Show a skill document",
	Long: `Show a skill's metadata and instructions. The body is rendered for the
terminal unless --raw is given or output is piped.

Examples:
  skillctl show commit-message
  skillctl show acme/playbooks/rate-limiting --raw`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetBool("raw")
		showSkill(args[0], raw)
	},
}

func init() {
	showCmd.Flags().Bool("raw", false, "Print the raw Markdown body without terminal rendering")
	rootCmd.AddCommand(showCmd)
}

func showSkill(name string, raw bool) {
	discovery, err := newDiscovery()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill discovery")
		os.Exit(1)
	}

	s, err := discovery.GetSkill(name)
	if err != nil {
		presenter.Error(err, "Skill not found")
		os.Exit(1)
	}

	presenter.Section(s.Name)
	presenter.Info("Description: " + s.Description)
	if s.Metadata.Category != "" {
		presenter.Info("Category:    " + s.Metadata.Category)
	}
	if s.License != "" {
		presenter.Info("License:     " + s.License)
	}
	if len(s.AllowedTools) > 0 {
		presenter.Info("Tools:       " + strings.Join(s.AllowedTools, ", "))
	}
	if s.Directory != "" {
		presenter.Info("Directory:   " + s.Directory)
	}
	presenter.Separator()

	var renderer *render.Renderer
	if raw {
		renderer = render.NewPlain()
	} else {
		renderer, err = render.New()
		if err != nil {
			presenter.Error(err, "Failed to create renderer")
			os.Exit(1)
		}
	}

	out, err := renderer.Render(s.Content)
	if err != nil {
		presenter.Error(err, "Failed to render skill")
		os.Exit(1)
	}
	fmt.Print(out)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/bundle"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var removeCmd = &cobra.Command{
	Use:   "remove name",
	Short: "Remove an installed skill or bundle",
	Long: `Remove an installed skill or bundle.

An org/repo argument removes the whole bundle; a bare name removes a
standalone skill directory. With no argument, lists installed bundles.

Examples:
  skillctl remove acme/playbooks
  skillctl remove rate-limiting
  skillctl remove -g acme/playbooks
  skillctl remove`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		global, _ := cmd.Flags().GetBool("global")
		if len(args) == 0 {
			listBundles(global)
			return
		}
		removeInstalled(args[0], global)
	},
}

func init() {
	removeCmd.Flags().BoolP("global", "g", false, "Remove from ~/.skillctl instead of the current repository")
	rootCmd.AddCommand(removeCmd)
}

func removeInstalled(name string, global bool) {
	remover, err := bundle.NewRemover(bundle.WithGlobal(global))
	if err != nil {
		presenter.Error(err, "Failed to initialize remover")
		os.Exit(1)
	}

	if strings.Contains(name, "/") {
		if err := remover.Remove(name); err != nil {
			presenter.Error(err, fmt.Sprintf("Failed to remove bundle %s", name))
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Removed bundle '%s'", name))
		return
	}

	if err := remover.RemoveSkill(name); err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to remove skill %s", name))
		os.Exit(1)
	}
	presenter.Success(fmt.Sprintf("Removed skill '%s'", name))
}

func listBundles(global bool) {
	remover, err := bundle.NewRemover(bundle.WithGlobal(global))
	if err != nil {
		presenter.Error(err, "Failed to initialize remover")
		os.Exit(1)
	}

	bundles, err := remover.ListBundles()
	if err != nil {
		presenter.Error(err, "Failed to list bundles")
		os.Exit(1)
	}

	if len(bundles) == 0 {
		presenter.Info("No bundles installed")
		return
	}

	presenter.Section("Installed bundles")
	for _, b := range bundles {
		presenter.Info(fmt.Sprintf("  %s", b))
	}
}

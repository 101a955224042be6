package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/bundle"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var addCmd = &cobra.Command{
	Use:   "add org/repo",
	Short: "Install skills from a GitHub repository",
	Long: `Install skills from a GitHub repository via the gh CLI.

By default the repository's skills/ directory is installed as a bundle under
.skillctl/bundles/org/repo; its skills are then addressed as org/repo/<name>.
With --dir a single directory of the repository is installed as a standalone
skill instead.

Examples:
  skillctl add acme/playbooks
  skillctl add acme/playbooks --ref v2
  skillctl add acme/playbooks --dir skills/rate-limiting
  skillctl add acme/playbooks -g --force`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		global, _ := cmd.Flags().GetBool("global")
		force, _ := cmd.Flags().GetBool("force")
		ref, _ := cmd.Flags().GetString("ref")
		dir, _ := cmd.Flags().GetString("dir")
		addSkills(cmd, args[0], ref, dir, global, force)
	},
}

func init() {
	addCmd.Flags().BoolP("global", "g", false, "Install to ~/.skillctl instead of the current repository")
	addCmd.Flags().Bool("force", false, "Overwrite an existing install")
	addCmd.Flags().String("ref", "", "Branch or tag to install from")
	addCmd.Flags().String("dir", "", "Install a single repository directory as a standalone skill")
	rootCmd.AddCommand(addCmd)
}

func addSkills(cmd *cobra.Command, repo, ref, dir string, global, force bool) {
	ctx := cmd.Context()

	installer, err := bundle.NewInstaller(
		bundle.WithGlobal(global),
		bundle.WithForce(force),
	)
	if err != nil {
		presenter.Error(err, "Failed to initialize installer")
		os.Exit(1)
	}

	if dir != "" {
		name, err := installer.InstallSkill(ctx, repo, ref, dir)
		if err != nil {
			presenter.Error(err, fmt.Sprintf("Failed to install skill from %s", repo))
			os.Exit(1)
		}
		presenter.Success(fmt.Sprintf("Installed skill '%s'", name))
		return
	}

	result, err := installer.Install(ctx, repo, ref)
	if err != nil {
		presenter.Error(err, fmt.Sprintf("Failed to install bundle %s", repo))
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Installed bundle '%s' with %d skill(s)", result.Bundle, len(result.Skills)))
	for _, name := range result.Skills {
		presenter.Info(fmt.Sprintf("  %s", result.Bundle+"/"+name))
	}
	if !global {
		presenter.Info("Skills are available in this repository; use -g to install them user-wide")
	}
}

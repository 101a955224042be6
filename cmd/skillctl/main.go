package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillctl/skillctl/pkg/builtin"
	"github.com/skillctl/skillctl/pkg/logger"
	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/skill"
)

var rootCmd = &cobra.Command{
	Use:   "skillctl",
	Short: "Manage, lint, and serve a corpus of Markdown skill documents",
	Long: `skillctl manages a corpus of Markdown skill documents with YAML
frontmatter. It discovers skills from layered directories, validates them
against the corpus conventions, indexes them for fast lookup, and serves
them to humans (terminal, HTTP) and agents (MCP).`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("SKILLCTL")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillctl")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringSlice("skill-dir", nil, "Skill directories to use instead of the default layered set (repeatable)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("skill_dirs", rootCmd.PersistentFlags().Lookup("skill-dir"))
}

// newDiscovery builds the discovery for the configured corpus: either the
// explicit --skill-dir set or the default layered directories, with the
// builtin bundle at lowest precedence either way.
func newDiscovery() (*skill.Discovery, error) {
	if dirs := viper.GetStringSlice("skill_dirs"); len(dirs) > 0 {
		return skill.NewDiscovery(
			skill.WithSkillDirs(dirs...),
			skill.WithBuiltins(builtin.FS()),
		)
	}

	return skill.NewDiscovery(
		skill.WithDefaultDirs(),
		skill.WithBuiltins(builtin.FS()),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var lintCmd = &cobra.Command{
	Use:   "lint [skill-dir]",
	Short: "Check the corpus for convention violations",
	Long: `Check skill documents against the corpus conventions: required
frontmatter fields, naming rules, field limits, and resolvable
cross-references. Without an argument the whole configured corpus is
checked; with a directory argument only that skill is.

Exits non-zero when error-severity findings exist (or any findings, with
--fail-on-warn).`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		ignore, _ := cmd.Flags().GetStringSlice("ignore")
		failOnWarn, _ := cmd.Flags().GetBool("fail-on-warn")

		var target string
		if len(args) == 1 {
			target = args[0]
		}
		lintCorpus(cmd, target, format, ignore, failOnWarn)
	},
}

func init() {
	lintCmd.Flags().String("format", "text", "Output format (text, json)")
	lintCmd.Flags().StringSlice("ignore", nil, "Skill directory globs to skip (repeatable)")
	lintCmd.Flags().Bool("fail-on-warn", false, "Exit non-zero on warnings as well as errors")
	rootCmd.AddCommand(lintCmd)
}

func lintCorpus(cmd *cobra.Command, target, format string, ignore []string, failOnWarn bool) {
	ctx := cmd.Context()
	linter := lint.New(lint.WithIgnoreGlobs(ignore...))

	var report *lint.Report
	var err error

	if target != "" {
		report, err = linter.LintFile(ctx, target)
	} else {
		discovery, derr := newDiscovery()
		if derr != nil {
			presenter.Error(derr, "Failed to initialize skill discovery")
			os.Exit(1)
		}
		report, err = linter.LintDirs(ctx, discovery.Dirs())
	}
	if err != nil {
		presenter.Error(err, "Failed to lint corpus")
		os.Exit(1)
	}

	switch format {
	case "json":
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to marshal report")
			os.Exit(1)
		}
		fmt.Println(string(payload))
	default:
		printReport(report)
	}

	if report.Errors() > 0 || (failOnWarn && report.Warnings() > 0) {
		os.Exit(1)
	}
}

func printReport(report *lint.Report) {
	for _, f := range report.Findings {
		label := color.YellowString("warning")
		if f.Severity == lint.SeverityError {
			label = color.RedString("error")
		}
		fmt.Printf("%s: %s: [%s] %s\n", f.File, label, f.Rule, f.Message)
	}

	if len(report.Findings) == 0 {
		presenter.Success(fmt.Sprintf("%d skill(s) checked, no issues found", report.Scanned))
		return
	}

	presenter.Info(fmt.Sprintf("%d skill(s) checked: %d error(s), %d warning(s)",
		report.Scanned, report.Errors(), report.Warnings()))
}

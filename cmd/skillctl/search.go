package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/catalog"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the skill catalog",
	Long: `Search indexed skills by substring, name glob, and category. The
catalog is built on first use; run 'skillctl index' after corpus changes.

Examples:
  skillctl search schema
  skillctl search --glob 'git-*'
  skillctl search --category security replication`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var query string
		if len(args) == 1 {
			query = args[0]
		}
		nameGlob, _ := cmd.Flags().GetString("glob")
		category, _ := cmd.Flags().GetString("category")
		asJSON, _ := cmd.Flags().GetBool("json")
		searchSkills(cmd, query, nameGlob, category, asJSON)
	},
}

func init() {
	searchCmd.Flags().String("glob", "", "Filter names by glob pattern")
	searchCmd.Flags().StringP("category", "c", "", "Filter by category")
	searchCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func searchSkills(cmd *cobra.Command, query, nameGlob, category string, asJSON bool) {
	ctx := cmd.Context()

	c, err := openCatalog(ctx)
	if err != nil {
		presenter.Error(err, "Failed to open catalog")
		os.Exit(1)
	}
	defer c.Close()

	// Build the index on first use
	stats, err := c.Stats(ctx)
	if err != nil {
		presenter.Error(err, "Failed to read catalog")
		os.Exit(1)
	}
	if stats.LastScan == nil {
		if _, err := rebuildIndex(ctx, c); err != nil {
			presenter.Error(err, "Failed to build index")
			os.Exit(1)
		}
	}

	entries, err := c.List(ctx, catalog.Filter{
		Substring: query,
		NameGlob:  nameGlob,
		Category:  category,
	})
	if err != nil {
		presenter.Error(err, "Search failed")
		os.Exit(1)
	}

	if asJSON {
		payload, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to marshal results")
			os.Exit(1)
		}
		fmt.Println(string(payload))
		return
	}

	if len(entries) == 0 {
		presenter.Info("No matching skills")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tDESCRIPTION")
	for _, e := range entries {
		description := e.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Category, description)
	}
	tw.Flush()
}

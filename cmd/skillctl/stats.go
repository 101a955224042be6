package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/presenter"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long:  `Show counts of indexed skills, by category, and the last scan.`,
	Run: func(cmd *cobra.Command, _ []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		showStats(cmd, asJSON)
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func showStats(cmd *cobra.Command, asJSON bool) {
	ctx := cmd.Context()

	c, err := openCatalog(ctx)
	if err != nil {
		presenter.Error(err, "Failed to open catalog")
		os.Exit(1)
	}
	defer c.Close()

	stats, err := c.Stats(ctx)
	if err != nil {
		presenter.Error(err, "Failed to read catalog")
		os.Exit(1)
	}

	if asJSON {
		payload, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to marshal stats")
			os.Exit(1)
		}
		fmt.Println(string(payload))
		return
	}

	if stats.LastScan == nil {
		presenter.Info("Catalog is empty; run 'skillctl index' first")
		return
	}

	presenter.Info(fmt.Sprintf("Indexed skills: %d (%d builtin)", stats.Total, stats.Builtin))
	presenter.Info(fmt.Sprintf("Last scan: %s (%s)", stats.LastScan.StartedAt.Local().Format("2006-01-02 15:04:05"), stats.LastScan.ID))

	if len(stats.ByCategory) == 0 {
		return
	}

	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSKILLS")
	for _, category := range categories {
		fmt.Fprintf(tw, "%s\t%d\n", category, stats.ByCategory[category])
	}
	tw.Flush()
}

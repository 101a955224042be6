package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillctl/skillctl/pkg/catalog"
	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/watcher"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the skill catalog index",
	Long: `Scan the corpus and rebuild the SQLite catalog used by search and
stats. With --watch, keep running and re-index whenever documents change.`,
	Run: func(cmd *cobra.Command, _ []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		runIndex(cmd.Context(), watch)
	},
}

func init() {
	indexCmd.Flags().BoolP("watch", "w", false, "Keep watching the corpus and re-index on changes")
	indexCmd.Flags().String("db", "", "Catalog database path (default ~/.skillctl/catalog.db)")
	viper.BindPFlag("catalog_db", indexCmd.Flags().Lookup("db"))
	rootCmd.AddCommand(indexCmd)
}

func openCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return catalog.Open(ctx, viper.GetString("catalog_db"))
}

func rebuildIndex(ctx context.Context, c *catalog.Catalog) (int, error) {
	discovery, err := newDiscovery()
	if err != nil {
		return 0, err
	}

	skills, err := discovery.DiscoverSkills()
	if err != nil {
		return 0, err
	}

	if _, err := c.Rebuild(ctx, skills); err != nil {
		return 0, err
	}
	return len(skills), nil
}

func runIndex(ctx context.Context, watch bool) {
	c, err := openCatalog(ctx)
	if err != nil {
		presenter.Error(err, "Failed to open catalog")
		os.Exit(1)
	}
	defer c.Close()

	count, err := rebuildIndex(ctx, c)
	if err != nil {
		presenter.Error(err, "Failed to rebuild index")
		os.Exit(1)
	}
	presenter.Success(fmt.Sprintf("Indexed %d skill(s)", count))

	if !watch {
		return
	}

	discovery, err := newDiscovery()
	if err != nil {
		presenter.Error(err, "Failed to initialize skill discovery")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(discovery.Dirs(), watcher.DefaultDebounce, func(ctx context.Context) {
		count, err := rebuildIndex(ctx, c)
		if err != nil {
			presenter.Error(err, "Re-index failed")
			return
		}
		presenter.Info(fmt.Sprintf("Re-indexed %d skill(s)", count))
	})

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		presenter.Error(err, "Watcher stopped")
		os.Exit(1)
	}
}

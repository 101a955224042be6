package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/mcpserver"
	"github.com/skillctl/skillctl/pkg/presenter"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing the skill corpus",
	Long: `Run a Model Context Protocol server over stdio, exposing the skill
corpus to MCP clients as list_skills, get_skill, and lint_corpus tools.`,
	Run: func(cmd *cobra.Command, _ []string) {
		discovery, err := newDiscovery()
		if err != nil {
			presenter.Error(err, "Failed to initialize skill discovery")
			os.Exit(1)
		}

		srv := mcpserver.New(discovery, lint.New())
		if err := mcpserver.ServeStdio(srv); err != nil {
			presenter.Error(err, "MCP server exited with error")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

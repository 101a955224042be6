// Package mcpserver exposes the skill corpus to MCP clients over stdio.
// Agents use the tools to enumerate skills, load one into context, and
// check the corpus for convention violations.
package mcpserver

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/lint"
	"github.com/skillctl/skillctl/pkg/skill"
	"github.com/skillctl/skillctl/pkg/version"
)

// New creates an MCP server with the skill tools registered.
func New(discovery *skill.Discovery, linter *lint.Linter) *server.MCPServer {
	s := server.NewMCPServer(
		"skillctl",
		version.Get().Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(listSkillsTool(), listSkillsHandler(discovery))
	s.AddTool(getSkillTool(), getSkillHandler(discovery))
	s.AddTool(lintCorpusTool(), lintCorpusHandler(discovery, linter))

	return s
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listSkillsTool() mcp.Tool {
	return mcp.NewTool("list_skills",
		mcp.WithDescription("List all available skills with their names, descriptions, and categories. Use this to decide which skill to load for the task at hand."),
		mcp.WithString("category",
			mcp.Description("Restrict the listing to a metadata category (data, meta, operations, security, vcs)"),
		),
	)
}

func listSkillsHandler(discovery *skill.Discovery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := req.GetString("category", "")

		skills, err := discovery.DiscoverSkills()
		if err != nil {
			return nil, errors.Wrap(err, "failed to discover skills")
		}

		names := make([]string, 0, len(skills))
		for name := range skills {
			names = append(names, name)
		}
		sort.Strings(names)

		type summary struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Category    string `json:"category,omitempty"`
		}

		summaries := make([]summary, 0, len(names))
		for _, name := range names {
			sk := skills[name]
			if category != "" && sk.Metadata.Category != category {
				continue
			}
			summaries = append(summaries, summary{
				Name:        sk.Name,
				Description: sk.Description,
				Category:    sk.Metadata.Category,
			})
		}

		payload, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal skill list")
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func getSkillTool() mcp.Tool {
	return mcp.NewTool("get_skill",
		mcp.WithDescription("Load a skill document by name, returning its full Markdown instructions"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The skill name, including any bundle prefix (e.g. acme/playbooks/rate-limiting)"),
		),
	)
}

func getSkillHandler(discovery *skill.Discovery) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("name", "")
		if name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		sk, err := discovery.GetSkill(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(sk.Content), nil
	}
}

func lintCorpusTool() mcp.Tool {
	return mcp.NewTool("lint_corpus",
		mcp.WithDescription("Check the whole skill corpus for convention violations and return the findings as JSON"),
	)
}

func lintCorpusHandler(discovery *skill.Discovery, linter *lint.Linter) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := linter.LintDirs(ctx, discovery.Dirs())
		if err != nil {
			return nil, errors.Wrap(err, "failed to lint corpus")
		}

		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal lint report")
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

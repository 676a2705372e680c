// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Trendline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(store contract.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"Trendline Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{store: store}

	// --- 1. Tool: get_measures ---
	s.AddTool(mcp.NewTool("get_measures",
		mcp.WithDescription("Read the measures of a project or component at its last analysis, optionally with variations over each differential period."),
		mcp.WithString("component", mcp.Description("Component key or uuid."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric keys. Defaults to every stored metric.")),
		mcp.WithBoolean("trends", mcp.Description("Include variations over the resolved periods.")),
	), h.handleGetMeasures)

	// --- 2. Tool: list_issues ---
	s.AddTool(mcp.NewTool("list_issues",
		mcp.WithDescription("List the issues of a project."),
		mcp.WithString("project", mcp.Description("Project key or uuid."), mcp.Required()),
		mcp.WithBoolean("open_only", mcp.Description("Only return unresolved issues.")),
		mcp.WithString("severity", mcp.Description("Minimum severity."), mcp.Enum("INFO", "MINOR", "MAJOR", "CRITICAL", "BLOCKER")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleListIssues)

	// --- 3. Tool: get_issue_changelog ---
	s.AddTool(mcp.NewTool("get_issue_changelog",
		mcp.WithDescription("Read the field changes and comments recorded for an issue, oldest first."),
		mcp.WithString("issue_key", mcp.Description("The issue key."), mcp.Required()),
	), h.handleGetIssueChangelog)

	// --- 4. Tool: get_periods ---
	s.AddTool(mcp.NewTool("get_periods",
		mcp.WithDescription("Read the analysis history of a project with the baseline snapshot of each differential period."),
		mcp.WithString("project", mcp.Description("Project key or uuid."), mcp.Required()),
	), h.handleGetPeriods)

	return s
}

// StartMCPServer starts the Trendline MCP server on stdio.
func StartMCPServer(_ context.Context, store contract.Store) error {
	s := NewMCPServer(store)
	return server.ServeStdio(s)
}

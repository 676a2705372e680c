package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	store contract.Store
}

// jsonResult marshals data as the text content of a tool result.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// requiredString reads a required argument, trimming whitespace.
func requiredString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(request.GetString(name, ""))
	if v == "" {
		return "", mcp.NewToolResultError(name + " is required")
	}
	return v, nil
}

func (h *toolHandler) handleGetMeasures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	component, errResult := requiredString(request, "component")
	if errResult != nil {
		return errResult, nil
	}
	metrics := contract.SplitList(request.GetString("metrics", ""))
	trends := request.GetBool("trends", false)

	report, err := h.store.FindMeasures(ctx, component, metrics, trends)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("measures lookup failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleListIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, errResult := requiredString(request, "project")
	if errResult != nil {
		return errResult, nil
	}
	minSeverity := schema.Severity(strings.ToUpper(request.GetString("severity", "")))
	if _, ok := schema.ValidSeverities[minSeverity]; minSeverity != "" && !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid severity %q", minSeverity)), nil
	}

	issues, err := h.store.FindIssues(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("issues lookup failed: %v", err)), nil
	}
	issues = filterIssues(issues, request.GetBool("open_only", false), minSeverity)
	if l := request.GetInt("limit", 0); l > 0 && l < len(issues) {
		issues = issues[:l]
	}
	return jsonResult(issues)
}

// filterIssues keeps open issues when openOnly is set and issues at or above minSeverity.
func filterIssues(issues []schema.Issue, openOnly bool, minSeverity schema.Severity) []schema.Issue {
	filtered := make([]schema.Issue, 0, len(issues))
	for _, i := range issues {
		if openOnly && !i.IsOpen() {
			continue
		}
		if minSeverity != "" && schema.SeverityRank(i.Severity) < schema.SeverityRank(minSeverity) {
			continue
		}
		filtered = append(filtered, i)
	}
	return filtered
}

func (h *toolHandler) handleGetIssueChangelog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	issueKey, errResult := requiredString(request, "issue_key")
	if errResult != nil {
		return errResult, nil
	}
	changes, err := h.store.FindIssueChanges(ctx, issueKey)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("changelog lookup failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"issue_key": issueKey, "changes": changes})
}

func (h *toolHandler) handleGetPeriods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, errResult := requiredString(request, "project")
	if errResult != nil {
		return errResult, nil
	}
	snapshots, err := h.store.FindProjectSnapshots(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	return jsonResult(snapshots)
}

// Package tools exposes the decimal changer as MCP tools.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/etnz/moredecimal"
)

// RegisterTools adds all the decimal changer tools to the server.
func RegisterTools(s *server.MCPServer, svc *Service) {
	registerListSecurities(s, svc)
	registerInspectSecurity(s, svc)
	registerStageDecimals(s, svc)
	registerCommitDecimals(s, svc)
	registerForgetDecimals(s, svc)
}

func registerListSecurities(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("list_securities",
		mcp.WithDescription("List the securities of the book with their current number of decimal places."),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.ListSecurities(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	})
}

func registerInspectSecurity(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("inspect_security",
		mcp.WithDescription("Show the investment accounts holding a security, with their share balance and cost."),
		mcp.WithString("security",
			mcp.Required(),
			mcp.Description("Security name"),
		),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		security, err := request.RequireString("security")
		if err != nil {
			return mcp.NewToolResultError("security is required"), nil
		}
		result, err := svc.InspectSecurity(ctx, security)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	})
}

func registerStageDecimals(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("stage_decimals",
		mcp.WithDescription("Validate and stage the change of the number of decimal places of a security. Every transaction holding the security is checked; nothing is changed until commit_decimals is called. A new call replaces what was staged before."),
		mcp.WithString("security",
			mcp.Required(),
			mcp.Description("Security name"),
		),
		mcp.WithNumber("decimals",
			mcp.Required(),
			mcp.Description("Target number of decimal places"),
			mcp.Min(0),
			mcp.Max(moredecimal.MaxDecimals),
		),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		security, err := request.RequireString("security")
		if err != nil {
			return mcp.NewToolResultError("security is required"), nil
		}
		decimals, err := request.RequireInt("decimals")
		if err != nil {
			return mcp.NewToolResultError("decimals is required"), nil
		}
		result, err := svc.Stage(ctx, security, decimals)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	})
}

func registerCommitDecimals(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("commit_decimals",
		mcp.WithDescription("Apply the changes staged by stage_decimals. Either every staged transaction is changed or none."),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.Commit(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	})
}

func registerForgetDecimals(s *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("forget_decimals",
		mcp.WithDescription("Drop the changes staged by stage_decimals."),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(svc.Forget()), nil
	})
}

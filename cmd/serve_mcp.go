package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moredecimal/tools"
	"github.com/google/subcommands"
	"github.com/mark3labs/mcp-go/server"
)

// version of the MCP server.
const version = "1.0.0"

type serveMCPCmd struct{}

func (*serveMCPCmd) Name() string     { return "serve-mcp" }
func (*serveMCPCmd) Synopsis() string { return "serve the decimal changer as MCP tools on stdio" }
func (*serveMCPCmd) Usage() string {
	return `mdc serve-mcp

  Runs an MCP server on standard input and output with the tools
  list_securities, inspect_security, stage_decimals, commit_decimals and
  forget_decimals.
`
}

func (*serveMCPCmd) SetFlags(f *flag.FlagSet) {}

func (*serveMCPCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, err := openBook(ctx, *bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book %q: %v\n", *bookPath, err)
		return subcommands.ExitFailure
	}
	defer b.Close()
	cat, err := openCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading messages: %v\n", err)
		return subcommands.ExitUsageError
	}

	s := server.NewMCPServer("mdc", version, server.WithToolCapabilities(false))
	tools.RegisterTools(s, tools.NewService(b.Book, cat, b.Save))
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

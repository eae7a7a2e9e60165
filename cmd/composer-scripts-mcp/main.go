// Package main is the entry point for the composer-scripts-mcp CLI.
//
// Subcommands start the MCP server, register it with Claude Desktop and
// maintain the launcher scripts in the project's composer.json. See
// internal/commands for the command tree.
package main

import (
	"os"

	"composermcp/internal/commands"
)

// Version information set via ldflags at build time
var version = ""

func main() {
	commands.SetVersionInfo(version)
	os.Exit(commands.Execute(os.Args[1:]))
}

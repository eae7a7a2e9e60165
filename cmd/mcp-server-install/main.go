// Package main registers the MCP server with Claude Desktop. It is
// equivalent to "composer-scripts-mcp install-claude" and accepts the same
// flags.
package main

import (
	"os"

	"composermcp/internal/commands"
)

// Version information set via ldflags at build time
var version = ""

func main() {
	commands.SetVersionInfo(version)
	os.Exit(commands.Execute(append([]string{"install-claude"}, os.Args[1:]...)))
}

// Package main is the launcher desktop clients spawn. It is equivalent to
// "composer-scripts-mcp start-server" and accepts the same flags.
package main

import (
	"os"

	"composermcp/internal/commands"
)

// Version information set via ldflags at build time
var version = ""

func main() {
	commands.SetVersionInfo(version)
	os.Exit(commands.Execute(append([]string{"start-server"}, os.Args[1:]...)))
}

// Package mcp exposes a project's Composer scripts to AI assistants over the
// Model Context Protocol, using the mcp-go library.
//
// # Tools
//
// Two tools are registered:
//
//   - composer_list: every script in declaration order with its command line
//   - composer_run: runs one script, appending optional arguments, and
//     returns its output lines, exit code and success flag
//
// Both results are JSON text. A script that exits non-zero is a normal
// result with success set to false. Naming a script the manifest does not
// declare is a tool error and nothing is spawned.
//
// # Transports
//
// ServeStdio speaks JSON-RPC over stdin/stdout, the mode desktop clients use
// when they launch the server as a subprocess:
//
//	composer-scripts-mcp start-server
//
// ServeHTTP serves the streamable HTTP transport on a listener the caller has
// already bound, so an address in use fails before anything is served:
//
//	composer-scripts-mcp start-server --http --host 127.0.0.1 --port 8088
//
// Stdout belongs to the protocol in stdio mode. Logs go to stderr.
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcp

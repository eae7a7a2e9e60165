package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"composermcp/internal/config"
	"composermcp/internal/mcp"
	"composermcp/internal/scripts"
	"composermcp/internal/ui"

	"github.com/spf13/cobra"
)

type startServerOptions struct {
	http     bool
	host     string
	port     int
	endpoint string
	manifest string
}

func (a *app) newStartServerCmd() *cobra.Command {
	opts := &startServerOptions{}

	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Start the MCP server",
		Long: `Starts the MCP server for the project's composer.json.

By default the server speaks JSON-RPC over stdin/stdout, which is how
desktop clients launch it. With --http it serves the streamable HTTP
transport instead.`,
		GroupID: "server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("host") {
				opts.host = a.cfg.Server.Host
			}
			if !cmd.Flags().Changed("port") {
				opts.port = a.cfg.Server.Port
			}
			if !cmd.Flags().Changed("endpoint") {
				opts.endpoint = a.cfg.Server.Endpoint
			}
			return a.runStartServer(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.http, "http", false, "Serve over HTTP instead of stdio")
	cmd.Flags().StringVar(&opts.host, "host", config.DefaultHost, "HTTP bind address")
	cmd.Flags().IntVar(&opts.port, "port", config.DefaultPort, "HTTP port")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", config.DefaultEndpoint, "HTTP endpoint path")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Path to composer.json (default: auto-detect)")
	return cmd
}

func (a *app) runStartServer(ctx context.Context, opts *startServerOptions) error {
	manifestPath, err := a.manifestPath(opts.manifest)
	if err != nil {
		return err
	}

	registry, err := scripts.Load(manifestPath, a.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(registry, a.logger, version)

	if !opts.http {
		return srv.ServeStdio(ctx, a.stdin, a.stdout)
	}

	ln, err := mcp.Listen(opts.host, opts.port)
	if err != nil {
		return err
	}
	ui.NewPrinter(a.stderr).Info(fmt.Sprintf("MCP server listening on http://%s%s", ln.Addr(), opts.endpoint))
	return srv.ServeHTTP(ctx, ln, opts.endpoint)
}

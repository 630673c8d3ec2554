// Package cmd provides the CLI commands for searchctl.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mediasearch/internal/version"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	addr    string
	apiKey  string
	tenant  string
	timeout time.Duration
	format  string // "text", "json"
}

// NewRootCmd creates the root command for the searchctl CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Command-line client for the mediasearch API",
		Long: `searchctl talks to a running mediasearch server.

It searches a tenant's media, indexes items from JSON files,
deletes documents or a whole tenant store, and reports health.`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("searchctl version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.addr, "addr", envOr("MEDIASEARCH_ADDR", "http://localhost:8080"),
		"Server base URL")
	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("MEDIASEARCH_API_KEY"), "Bearer API key")
	cmd.PersistentFlags().StringVarP(&opts.tenant, "tenant", "T", os.Getenv("MEDIASEARCH_TENANT"), "Tenant id")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newDropStoreCmd(opts))
	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command with interrupt handling.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

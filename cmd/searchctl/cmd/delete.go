package cmd

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/mediasearch/internal/transport/chi"
)

func newDeleteCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <doc-id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(global)
			path, err := client.tenantPath(global.tenant, "/documents/"+url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			return runDelete(cmd, client, path, "document "+args[0], global.format)
		},
	}
}

func newDropStoreCmd(global *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop-store",
		Short: "Delete the tenant's primary store",
		Long: `Delete the tenant's primary store and every document in it.

The fallback store is not touched. Pass --yes to confirm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to drop the store of %q without --yes", global.tenant)
			}
			client := newAPIClient(global)
			path, err := client.tenantPath(global.tenant, "/store")
			if err != nil {
				return err
			}
			return runDelete(cmd, client, path, "store of "+global.tenant, global.format)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

func runDelete(cmd *cobra.Command, client *apiClient, path, what, format string) error {
	var resp chiTransport.DeleteResponse
	if _, err := client.do(cmd.Context(), http.MethodDelete, path, nil, &resp); err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	if !resp.Deleted {
		return fmt.Errorf("%s was not deleted", what)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", what)
	return err
}

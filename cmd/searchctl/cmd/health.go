package cmd

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/mediasearch/internal/transport/chi"
)

func newHealthCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newAPIClient(global)
			var resp chiTransport.HealthResponse
			code, err := client.do(cmd.Context(), http.MethodGet, "/health", nil, &resp)
			if err != nil {
				return err
			}

			if global.format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			} else {
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "status: %s\n", resp.Status)
				names := make([]string, 0, len(resp.Checks))
				for name := range resp.Checks {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					_, _ = fmt.Fprintf(w, "  %-10s %s\n", name, resp.Checks[name])
				}
			}

			if code == http.StatusServiceUnavailable {
				return fmt.Errorf("server unhealthy")
			}
			return nil
		},
	}
}

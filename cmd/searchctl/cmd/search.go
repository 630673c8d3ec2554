package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/mediasearch/internal/transport/chi"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	queries     []string
	types       []string
	sources     []string
	collections []string
	tags        []string
	pageSize    int
	pageToken   string
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a tenant's media",
		Long: `Search a tenant's media.

The server expands the query, searches the primary index and falls
back to the fallback store when the primary gives nothing.

Examples:
  searchctl search -T acme "sunset beach"
  searchctl search -T acme "cat" --type image --tag pets -n 5
  searchctl search -T acme --query "red car" --query "sports car"
  searchctl search -T acme "logo" --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if query == "" && len(opts.queries) == 0 {
				return fmt.Errorf("a query argument or --query is required")
			}
			return runSearch(cmd.Context(), cmd, global, query, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.queries, "query", nil, "Explicit query variant (repeatable, disables expansion)")
	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "Filter by type: image, video, other")
	cmd.Flags().StringSliceVar(&opts.sources, "source", nil, "Filter by source: upload, ai-generated, curated, edited")
	cmd.Flags().StringSliceVar(&opts.collections, "collection", nil, "Filter by collection")
	cmd.Flags().StringSliceVar(&opts.tags, "tag", nil, "Filter by tag")
	cmd.Flags().IntVarP(&opts.pageSize, "limit", "n", 0, "Page size (server default when 0)")
	cmd.Flags().StringVar(&opts.pageToken, "page-token", "", "Continue from a previous page")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, global *globalOptions, query string, opts searchOptions) error {
	client := newAPIClient(global)
	path, err := client.tenantPath(global.tenant, "/search")
	if err != nil {
		return err
	}

	req := chiTransport.SearchRequest{
		Query:     query,
		Queries:   opts.queries,
		PageSize:  opts.pageSize,
		PageToken: opts.pageToken,
	}
	if len(opts.types)+len(opts.sources)+len(opts.collections)+len(opts.tags) > 0 {
		req.Filters = &chiTransport.SearchFilters{
			Type:        opts.types,
			Source:      opts.sources,
			Collections: opts.collections,
			Tags:        opts.tags,
		}
	}

	var resp chiTransport.SearchResponse
	if _, err := client.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return err
	}

	if global.format == "json" {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return formatSearch(cmd, &resp)
}

func formatSearch(cmd *cobra.Command, resp *chiTransport.SearchResponse) error {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "status=%s backend=%s total=%d", resp.Status, resp.BackendUsed, resp.TotalCount)
	if resp.Partial {
		_, _ = fmt.Fprint(w, " partial")
	}
	_, _ = fmt.Fprintln(w)
	if len(resp.Queries) > 1 {
		_, _ = fmt.Fprintf(w, "queries: %s\n", strings.Join(resp.Queries, " | "))
	}

	if len(resp.Results) == 0 {
		_, _ = fmt.Fprintln(w, "No results.")
		return nil
	}
	for i, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = "(untitled)"
		}
		_, _ = fmt.Fprintf(w, "%2d. %-24s %-6s %.4f  %s\n", i+1, r.ID, r.Type, r.Score, title)
	}
	if resp.NextPageToken != "" {
		_, _ = fmt.Fprintf(w, "next page: --page-token %s\n", resp.NextPageToken)
	}
	return nil
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/mediasearch/internal/transport/chi"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
)

const maxBatchItems = 100

func newIndexCmd(global *globalOptions) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "index <file.json|->",
		Short: "Index media items from a JSON file",
		Long: `Index media items from a JSON file or stdin.

The input is either an array of items or an object with an "items"
array. Items are sent in batches; per-item failures are reported
without stopping the run.

Examples:
  searchctl index -T acme items.json
  cat items.json | searchctl index -T acme -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 || batchSize > maxBatchItems {
				return fmt.Errorf("--batch must be between 1 and %d", maxBatchItems)
			}
			items, err := readItems(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runIndex(cmd.Context(), cmd, global, items, batchSize)
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch", maxBatchItems, "Items per request")
	return cmd
}

func readItems(stdin io.Reader, path string) ([]indexer.MediaItem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	data = bytes.TrimSpace(data)
	var items []indexer.MediaItem
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &items)
	} else {
		var wrapped chiTransport.BatchUpsertRequest
		err = json.Unmarshal(data, &wrapped)
		items = wrapped.Items
	}
	if err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items in %s", path)
	}
	return items, nil
}

func runIndex(
	ctx context.Context, cmd *cobra.Command, global *globalOptions, items []indexer.MediaItem, batchSize int,
) error {
	client := newAPIClient(global)
	path, err := client.tenantPath(global.tenant, "/documents/batch")
	if err != nil {
		return err
	}

	total := chiTransport.BatchUpsertResponse{Errors: []chiTransport.BatchItemError{}}
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		var resp chiTransport.BatchUpsertResponse
		req := chiTransport.BatchUpsertRequest{Items: items[start:end]}
		if _, err := client.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return fmt.Errorf("batch %d-%d: %w", start, end-1, err)
		}
		total.IndexedCount += resp.IndexedCount
		total.Errors = append(total.Errors, resp.Errors...)
	}

	if global.format == "json" {
		return writeJSON(cmd.OutOrStdout(), total)
	}
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Indexed %d of %d items.\n", total.IndexedCount, len(items))
	for _, e := range total.Errors {
		_, _ = fmt.Fprintf(w, "  %s: %s (%s)\n", e.ID, e.Message, e.Code)
	}
	return nil
}

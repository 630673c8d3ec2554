// Package mediasearch embeds the multi-tenant media search service in a Go
// program without the HTTP layer.
//
// A client needs at least one backend: the Redis Search primary index, the
// SQL fallback store, or both. Searches try the primary first and fall back
// when it is unavailable or returns nothing.
//
//	client, _ := mediasearch.New(ctx,
//	    mediasearch.WithRedis("localhost:6379", ""),
//	    mediasearch.WithFallback("sqlite", "media.db"),
//	)
//	defer client.Close()
//
//	_, _ = client.UpsertBatch(ctx, "acme", []mediasearch.MediaItem{
//	    {ID: "img-1", Type: "image", Title: "Sunset over the bay", Tags: []string{"sunset"}},
//	})
//	resp, _ := client.Search(ctx, "acme", mediasearch.SearchRequest{Query: "sunset"})
package mediasearch

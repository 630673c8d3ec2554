package indexer

import (
	"strings"
	"time"

	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
)

// MediaItem is a media record as it arrives from the ingestion path.
type MediaItem struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Source            string    `json:"source"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Prompt            string    `json:"prompt"`
	Summary           string    `json:"summary"`
	VisionDescription string    `json:"vision_description"`
	VisionKeywords    []string  `json:"vision_keywords"`
	VisionCategories  []string  `json:"vision_categories"`
	Tags              []string  `json:"tags"`
	Collections       []string  `json:"collections"`
	URL               string    `json:"url"`
	ThumbnailURL      string    `json:"thumbnail_url"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToDocument maps an item to a Document. The searchable blob joins the free
// text in a fixed order, skipping empty parts. Unknown sources are kept
// verbatim so validation can reject them.
func ToDocument(item MediaItem) domdoc.Document {
	source, err := domdoc.ParseSource(item.Source)
	if err != nil {
		source = domdoc.Source(item.Source)
	}

	return domdoc.Document{
		ID:                item.ID,
		Type:              domdoc.ParseType(item.Type),
		Source:            source,
		Title:             item.Title,
		Description:       item.Description,
		Prompt:            item.Prompt,
		Summary:           item.Summary,
		VisionDescription: item.VisionDescription,
		VisionKeywords:    item.VisionKeywords,
		VisionCategories:  item.VisionCategories,
		Tags:              item.Tags,
		Collections:       item.Collections,
		URL:               item.URL,
		ThumbnailURL:      item.ThumbnailURL,
		SearchText:        SearchText(item),
		CreatedAt:         item.CreatedAt,
	}
}

// SearchText builds the full-text blob for an item.
func SearchText(item MediaItem) string {
	parts := []string{
		item.Title,
		item.Description,
		item.Prompt,
		strings.Join(item.Tags, " "),
		item.Summary,
		item.VisionDescription,
		strings.Join(item.VisionKeywords, " "),
		strings.Join(item.VisionCategories, " "),
	}

	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

package datastore

import (
	"github.com/kailas-cloud/mediasearch/internal/db"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
)

// ContentField is the TEXT field holding the searchable blob.
const ContentField = "__content"

// buildIndex defines the per-store schema: one TEXT field for full-text
// match plus TAG fields for the pushed-down filters.
func (r *Repo) buildIndex(storeID string) (*db.IndexDefinition, error) {
	return db.NewIndex(r.keys.Index(storeID)).
		Prefix(r.keys.DocPrefix(storeID)).
		Text(ContentField).
		Tag(domdoc.FieldType).
		Tag(domdoc.FieldSource).
		TagWithOpts(domdoc.FieldTags, domdoc.SetSeparator, false).
		TagWithOpts(domdoc.FieldCollections, domdoc.SetSeparator, false).
		SortableNumeric(domdoc.FieldCreatedAt).
		Build()
}

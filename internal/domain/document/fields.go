package document

import (
	"strconv"
	"strings"
	"time"
)

// Metadata field names stored next to the full-text content.
const (
	FieldType              = "type"
	FieldSource            = "source"
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldPrompt            = "prompt"
	FieldSummary           = "summary"
	FieldVisionDescription = "vision_description"
	FieldVisionKeywords    = "vision_keywords"
	FieldVisionCategories  = "vision_categories"
	FieldTags              = "tags"
	FieldCollections       = "collections"
	FieldURL               = "url"
	FieldThumbnailURL      = "thumbnail_url"
	FieldCreatedAt         = "created_at"
)

// SetSeparator joins set-valued fields; it is also the TAG separator.
const SetSeparator = ","

// Index converts d into the backend's generic schema.
func Index(d Document) Indexed {
	fields := map[string]string{
		FieldType:              string(d.Type),
		FieldSource:            string(d.Source),
		FieldTitle:             d.Title,
		FieldDescription:       d.Description,
		FieldPrompt:            d.Prompt,
		FieldSummary:           d.Summary,
		FieldVisionDescription: d.VisionDescription,
		FieldVisionKeywords:    JoinSet(d.VisionKeywords),
		FieldVisionCategories:  JoinSet(d.VisionCategories),
		FieldTags:              JoinSet(d.Tags),
		FieldCollections:       JoinSet(d.Collections),
		FieldURL:               d.URL,
		FieldThumbnailURL:      d.ThumbnailURL,
		FieldCreatedAt:         strconv.FormatInt(d.CreatedAt.UnixMilli(), 10),
	}
	return Indexed{ID: d.ID, Content: d.SearchText, Fields: fields}
}

// FromIndexed rebuilds a Document from its indexed form.
func FromIndexed(ix Indexed) Document {
	f := ix.Fields
	d := Document{
		ID:                ix.ID,
		Type:              ParseType(f[FieldType]),
		Source:            Source(f[FieldSource]),
		Title:             f[FieldTitle],
		Description:       f[FieldDescription],
		Prompt:            f[FieldPrompt],
		Summary:           f[FieldSummary],
		VisionDescription: f[FieldVisionDescription],
		VisionKeywords:    SplitSet(f[FieldVisionKeywords]),
		VisionCategories:  SplitSet(f[FieldVisionCategories]),
		Tags:              SplitSet(f[FieldTags]),
		Collections:       SplitSet(f[FieldCollections]),
		URL:               f[FieldURL],
		ThumbnailURL:      f[FieldThumbnailURL],
		SearchText:        ix.Content,
	}
	if ms, err := strconv.ParseInt(f[FieldCreatedAt], 10, 64); err == nil && ms > 0 {
		d.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return d
}

// JoinSet trims, de-duplicates and joins values. Separators inside a value are dropped.
func JoinSet(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ReplaceAll(v, SetSeparator, " "))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, SetSeparator)
}

// SplitSet is the inverse of JoinSet.
func SplitSet(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, SetSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxIDLength bounds document identifiers.
const MaxIDLength = 256

// Type is the media kind of a document.
type Type string

// Document types.
const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
	TypeOther Type = "other"
)

// ParseType maps a raw value to a Type. Unknown values become TypeOther.
func ParseType(s string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeImage:
		return TypeImage
	case TypeVideo:
		return TypeVideo
	default:
		return TypeOther
	}
}

// Source is where a document came from.
type Source string

// Document sources.
const (
	SourceUpload      Source = "upload"
	SourceAIGenerated Source = "ai-generated"
	SourceCurated     Source = "curated"
	SourceEdited      Source = "edited"
)

// ParseSource validates a raw source value.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	switch src {
	case SourceUpload, SourceAIGenerated, SourceCurated, SourceEdited:
		return src, nil
	case "":
		return SourceUpload, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Document is one media item owned by a tenant.
type Document struct {
	ID                string
	Type              Type
	Source            Source
	Title             string
	Description       string
	Prompt            string
	Summary           string
	VisionDescription string
	VisionKeywords    []string
	VisionCategories  []string
	Tags              []string
	Collections       []string
	URL               string
	ThumbnailURL      string
	// SearchText is the enhanced free-text blob built at index time.
	SearchText string
	CreatedAt  time.Time
}

// Validate checks the identifier and enum fields.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(d.ID) > MaxIDLength {
		return fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(d.ID) {
		return fmt.Errorf("document ID must be alphanumeric with dots, underscores and hyphens")
	}
	switch d.Type {
	case TypeImage, TypeVideo, TypeOther:
	default:
		return fmt.Errorf("unknown document type %q", d.Type)
	}
	if _, err := ParseSource(string(d.Source)); err != nil {
		return err
	}
	return nil
}

// Indexed is the generic schema sent to the primary backend:
// Content feeds full-text matching, Fields feed equality and set filters
// and carry everything needed to rebuild the Document on read.
type Indexed struct {
	ID      string
	Content string
	Fields  map[string]string
}

package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
)

// Record is one document row, partitioned by tenant.
type Record struct {
	TenantID          string    `gorm:"type:text;primaryKey;index:idx_media_tenant_created,priority:1"`
	DocID             string    `gorm:"type:text;primaryKey"`
	Type              string    `gorm:"type:text;index:idx_media_tenant_type"`
	Source            string    `gorm:"type:text"`
	Title             string    `gorm:"type:text"`
	Description       string    `gorm:"type:text"`
	Prompt            string    `gorm:"type:text"`
	Summary           string    `gorm:"type:text"`
	VisionDescription string    `gorm:"type:text"`
	VisionKeywords    []string  `gorm:"serializer:json"`
	VisionCategories  []string  `gorm:"serializer:json"`
	Tags              []string  `gorm:"serializer:json"`
	Collections       []string  `gorm:"serializer:json"`
	URL               string    `gorm:"type:text"`
	ThumbnailURL      string    `gorm:"type:text"`
	SearchText        string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"index:idx_media_tenant_created,priority:2"`
	UpdatedAt         time.Time
}

// TableName pins the table name.
func (Record) TableName() string { return "media_documents" }

// filterColumns whitelists equality filters pushed into SQL.
var filterColumns = map[string]string{
	domdoc.FieldType:   "type",
	domdoc.FieldSource: "source",
}

// Repo is the fallback document store.
type Repo struct {
	db *gorm.DB
}

// New creates a fallback repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping fallback store: %w", err)
	}
	return nil
}

// Upsert creates or replaces a tenant's document keyed by id.
func (r *Repo) Upsert(ctx context.Context, tenant string, doc domdoc.Document) error {
	rec := toRecord(tenant, doc)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "doc_id"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", tenant, doc.ID, err)
	}
	return nil
}

// Delete removes a document. Returns domain.ErrDocumentNotFound if absent.
func (r *Repo) Delete(ctx context.Context, tenant, docID string) error {
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND doc_id = ?", tenant, docID).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", tenant, docID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Query returns up to limit documents of tenant, newest first. Only type
// and source can be filtered; each maps to an IN clause.
func (r *Repo) Query(ctx context.Context, tenant string, equality map[string][]string, limit int) ([]domdoc.Document, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", domain.ErrInvalidRequest)
	}

	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenant)
	for field, values := range equality {
		col, ok := filterColumns[field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter %q: %w", field, domain.ErrInvalidRequest)
		}
		if len(values) > 0 {
			q = q.Where(col+" IN ?", values)
		}
	}

	var recs []Record
	if err := q.Order("created_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query %s: %w: %w", tenant, domain.ErrTransient, err)
		}
		return nil, fmt.Errorf("query %s: %w", tenant, err)
	}

	docs := make([]domdoc.Document, len(recs))
	for i := range recs {
		docs[i] = fromRecord(&recs[i])
	}
	return docs, nil
}

func toRecord(tenant string, d domdoc.Document) Record {
	return Record{
		TenantID:          tenant,
		DocID:             d.ID,
		Type:              string(d.Type),
		Source:            string(d.Source),
		Title:             d.Title,
		Description:       d.Description,
		Prompt:            d.Prompt,
		Summary:           d.Summary,
		VisionDescription: d.VisionDescription,
		VisionKeywords:    d.VisionKeywords,
		VisionCategories:  d.VisionCategories,
		Tags:              d.Tags,
		Collections:       d.Collections,
		URL:               d.URL,
		ThumbnailURL:      d.ThumbnailURL,
		SearchText:        d.SearchText,
		CreatedAt:         d.CreatedAt,
	}
}

func fromRecord(r *Record) domdoc.Document {
	return domdoc.Document{
		ID:                r.DocID,
		Type:              domdoc.ParseType(r.Type),
		Source:            domdoc.Source(r.Source),
		Title:             r.Title,
		Description:       r.Description,
		Prompt:            r.Prompt,
		Summary:           r.Summary,
		VisionDescription: r.VisionDescription,
		VisionKeywords:    r.VisionKeywords,
		VisionCategories:  r.VisionCategories,
		Tags:              r.Tags,
		Collections:       r.Collections,
		URL:               r.URL,
		ThumbnailURL:      r.ThumbnailURL,
		SearchText:        r.SearchText,
		CreatedAt:         r.CreatedAt,
	}
}

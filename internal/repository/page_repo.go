package repository

import (
	"context"
	"time"

	"github.com/brewops/schemasync/internal/domain"
	"gorm.io/gorm"
)

// PageRepository handles page catalog data operations.
type PageRepository struct {
	db *gorm.DB
}

// NewPageRepository creates a new PageRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *PageRepository: repository instance bound to db.
func NewPageRepository(db *gorm.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Create inserts a new page record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - page: page record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *PageRepository) Create(ctx context.Context, page *domain.Page) error {
	return r.db.WithContext(ctx).Create(page).Error
}

// GetByID retrieves a page by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: page ID.
// Returns:
//   - *domain.Page: page record if found.
//   - error: non-nil if lookup fails.
func (r *PageRepository) GetByID(ctx context.Context, id string) (*domain.Page, error) {
	var page domain.Page
	if err := r.db.WithContext(ctx).First(&page, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// GetByPath retrieves a page by its normalized path, the catalog key.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - path: normalized path.
// Returns:
//   - *domain.Page: page record if found.
//   - error: gorm.ErrRecordNotFound if no page has the path.
func (r *PageRepository) GetByPath(ctx context.Context, path string) (*domain.Page, error) {
	var page domain.Page
	if err := r.db.WithContext(ctx).First(&page, "path = ?", path).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateCrawl persists a fresh content fingerprint and crawl timestamp.
// Called on every successful fetch so the watermark always advances, even
// when content did not change.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: page ID.
//   - contentHash: SHA-256 hex fingerprint of the fetched content.
//   - crawledAt: time of the fetch.
// Returns:
//   - error: non-nil if the update fails.
func (r *PageRepository) UpdateCrawl(ctx context.Context, id, contentHash string, crawledAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Page{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content_hash":    contentHash,
			"last_crawled_at": crawledAt,
		}).Error
}

// UpdateStatus sets the lifecycle status of a page.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: page ID.
//   - status: new lifecycle status.
// Returns:
//   - error: non-nil if the update fails.
func (r *PageRepository) UpdateStatus(ctx context.Context, id string, status domain.PageStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Page{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// List retrieves pages filtered by domain with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - siteDomain: domain tag to filter by; empty means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Page: matching page records.
//   - error: non-nil if the query fails.
func (r *PageRepository) List(ctx context.Context, siteDomain domain.SiteDomain, limit, offset int) ([]domain.Page, error) {
	var pages []domain.Page
	query := r.db.WithContext(ctx)
	if siteDomain != "" {
		query = query.Where("domain = ?", siteDomain)
	}
	if err := query.
		Order("path ASC").
		Limit(limit).
		Offset(offset).
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// CountByStatus counts pages by lifecycle status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: page status to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *PageRepository) CountByStatus(ctx context.Context, status domain.PageStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Page{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

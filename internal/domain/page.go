package domain

import "time"

// PageStatus represents the schema lifecycle status of a page.
// Values include PageStatusNotStarted, PageStatusInProgress, and PageStatusLive.
type PageStatus string

const (
	PageStatusNotStarted PageStatus = "not started"
	PageStatusInProgress PageStatus = "in progress"
	PageStatusLive       PageStatus = "live"
)

// SiteDomain is the categorical tag for which brand site a page belongs to.
type SiteDomain string

const (
	DomainCorporate SiteDomain = "Corporate"
	DomainBeer      SiteDomain = "Beer"
	DomainPub       SiteDomain = "Pub"
)

// Page represents one tracked web page in the catalog, keyed by its
// normalized path. Crawl metadata is updated by the fetcher; schema fields
// are owned by the generation step.
type Page struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	Path          string     `gorm:"type:text;not null;uniqueIndex:idx_pages_path" json:"path"`
	Domain        SiteDomain `gorm:"type:text;not null;index:idx_pages_domain" json:"domain"`
	PageType      string     `gorm:"type:text" json:"page_type"`
	Category      string     `gorm:"type:text;index:idx_pages_category" json:"category"`
	Status        PageStatus `gorm:"type:text;default:'not started'" json:"status"`
	ContentHash   string     `gorm:"type:text" json:"content_hash,omitempty"`
	LastCrawledAt *time.Time `json:"last_crawled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Page.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Page) TableName() string {
	return "pages"
}

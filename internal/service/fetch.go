package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/brewops/schemasync/internal/storage"
	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

// defaultUserAgent identifies the crawler when settings carry no override.
const defaultUserAgent = "schemasync-crawler/1.0"

// FetchService retrieves a page's live content, fingerprints it to detect
// change, and records crawl metadata on the page. Fetch configuration comes
// from the settings record injected at construction, never from globals.
type FetchService struct {
	pages    *repository.PageRepository
	settings *repository.SettingsRepository
	archive  storage.SnapshotStore
	client   *resty.Client
	logger   *logger.Logger
}

// FetchClientConfig holds HTTP client configuration for the fetcher.
type FetchClientConfig struct {
	TimeoutSecs int
}

// NewFetchService creates a new fetch service.
// Parameters:
//   - pages: page repository for lookups and crawl-metadata writes.
//   - settings: settings repository supplying base URL and credentials.
//   - archive: optional snapshot store; nil disables archiving.
//   - log: logger instance.
//   - cfg: HTTP client configuration; nil uses defaults.
// Returns:
//   - *FetchService: initialized fetch service.
func NewFetchService(
	pages *repository.PageRepository,
	settings *repository.SettingsRepository,
	archive storage.SnapshotStore,
	log *logger.Logger,
	cfg *FetchClientConfig,
) *FetchService {
	timeout := 60 * time.Second
	if cfg != nil && cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)

	return &FetchService{
		pages:    pages,
		settings: settings,
		archive:  archive,
		client:   client,
		logger:   log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *FetchService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// FetchResult holds the outcome of one page fetch.
type FetchResult struct {
	PageID        string    `json:"page_id"`
	FetchURL      string    `json:"fetch_url"`
	Content       string    `json:"content"`
	ContentHash   string    `json:"content_hash"`
	ContentLength int       `json:"content_length"`
	Changed       bool      `json:"content_changed"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Fetch retrieves the live content of a page, computes its SHA-256
// fingerprint, and compares it against the previously stored one. The new
// fingerprint and a fresh crawl timestamp are persisted unconditionally so
// repeated fetches always advance the last-crawled watermark.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - pageID: catalog page ID.
// Returns:
//   - *FetchResult: content, fingerprint, and change flag on success.
//   - error: NotFoundError, ConfigurationError, UpstreamFetchError, or
//     PersistenceError depending on the failing step.
func (s *FetchService) Fetch(ctx context.Context, pageID string) (*FetchResult, error) {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("page %s not found", pageID)
		}
		return nil, domain.WrapPersistenceError(err)
	}
	if page.Path == "" {
		return nil, domain.NewValidationError("page %s has no path", pageID)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewConfigurationError("fetch settings are not configured")
		}
		return nil, domain.WrapPersistenceError(err)
	}
	if settings.BaseURL == "" {
		return nil, domain.NewConfigurationError("fetch base URL is not configured")
	}

	fetchURL := strings.TrimSuffix(settings.BaseURL, "/") + page.Path

	userAgent := settings.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	req := s.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent)
	if settings.BasicAuthUser != "" {
		req.SetBasicAuth(settings.BasicAuthUser, settings.BasicAuthPass)
	}

	resp, err := req.Get(fetchURL)
	if err != nil {
		return nil, domain.WrapUpstreamFetchError(fetchURL, err)
	}
	if !resp.IsSuccess() {
		return nil, domain.NewUpstreamFetchError(fetchURL, resp.StatusCode())
	}

	content := resp.String()
	contentHash := fingerprint(content)
	changed := page.ContentHash != contentHash
	fetchedAt := time.Now()

	if err := s.pages.UpdateCrawl(ctx, page.ID, contentHash, fetchedAt); err != nil {
		return nil, domain.WrapPersistenceError(err)
	}

	if s.archive != nil && changed {
		s.archiveSnapshot(ctx, contentHash, content)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldPageID: page.ID,
		logger.FieldSize:   len(content),
		"content_changed":  changed,
	}).Info("Fetched page content")

	return &FetchResult{
		PageID:        page.ID,
		FetchURL:      fetchURL,
		Content:       content,
		ContentHash:   contentHash,
		ContentLength: len(content),
		Changed:       changed,
		FetchedAt:     fetchedAt,
	}, nil
}

// archiveSnapshot uploads the fetched content to the snapshot store. Archive
// failures are logged and swallowed; the fingerprint on the page record is
// the system of record for change detection.
func (s *FetchService) archiveSnapshot(ctx context.Context, contentHash, content string) {
	key := storage.SnapshotKey(contentHash)

	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		s.log(ctx).WithError(err).Warn("Failed to check snapshot existence")
		return
	}
	if exists {
		return
	}

	data := []byte(content)
	if err := s.archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "text/html; charset=utf-8"); err != nil {
		s.log(ctx).WithField("snapshot_key", key).WithError(err).Warn("Failed to archive snapshot")
	}
}

// fingerprint computes the lower-case hex SHA-256 digest of page content.
func fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

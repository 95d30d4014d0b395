package service

import (
	"context"
	"errors"
	"strings"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconcileService resolves batch rows against the page catalog: an existing
// page is reused untouched, a missing one is created. Re-running a batch over
// already-ingested paths is therefore a non-destructive refresh.
type ReconcileService struct {
	pages  *repository.PageRepository
	logger *logger.Logger
}

// NewReconcileService creates a new reconcile service.
// Parameters:
//   - pages: page repository.
//   - log: logger instance.
// Returns:
//   - *ReconcileService: initialized service.
func NewReconcileService(pages *repository.PageRepository, log *logger.Logger) *ReconcileService {
	return &ReconcileService{pages: pages, logger: log}
}

// Reconcile finds or creates the page for a batch row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - siteDomain: brand site the page belongs to.
//   - rawPath: raw path or URL from the batch row; normalized before lookup.
//   - pageType: page type identifier.
//   - category: category identifier.
// Returns:
//   - string: resolved page ID.
//   - bool: true if the page was created by this call.
//   - error: ValidationError for empty inputs, PersistenceError for store
//     failures. On validation failure nothing is created or modified.
func (s *ReconcileService) Reconcile(ctx context.Context, siteDomain domain.SiteDomain, rawPath, pageType, category string) (string, bool, error) {
	if err := validateRow(siteDomain, rawPath, pageType, category); err != nil {
		return "", false, err
	}

	path := domain.NormalizePath(rawPath)

	existing, err := s.pages.GetByPath(ctx, path)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, domain.WrapPersistenceError(err)
	}

	page := &domain.Page{
		ID:       uuid.New().String(),
		Path:     path,
		Domain:   siteDomain,
		PageType: pageType,
		Category: category,
		Status:   domain.PageStatusNotStarted,
	}

	if err := s.pages.Create(ctx, page); err != nil {
		// The unique index on path turns a concurrent find-or-create race
		// into a duplicate-key error; the loser re-reads and returns the
		// winning record.
		if isDuplicateKey(err) {
			winner, lookupErr := s.pages.GetByPath(ctx, path)
			if lookupErr != nil {
				return "", false, domain.WrapPersistenceError(lookupErr)
			}
			return winner.ID, false, nil
		}
		return "", false, domain.WrapPersistenceError(err)
	}

	s.logger.WithFields(logger.Fields{
		logger.FieldPageID: page.ID,
		"path":             path,
	}).Info("Created catalog page")

	return page.ID, true, nil
}

// validateRow checks that every row field the reconciler needs is present.
func validateRow(siteDomain domain.SiteDomain, rawPath, pageType, category string) error {
	switch {
	case strings.TrimSpace(string(siteDomain)) == "":
		return domain.NewValidationError("domain is required")
	case strings.TrimSpace(rawPath) == "":
		return domain.NewValidationError("path is required")
	case strings.TrimSpace(pageType) == "":
		return domain.NewValidationError("page type is required")
	case strings.TrimSpace(category) == "":
		return domain.NewValidationError("category is required")
	}
	return nil
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// gorm translates these for postgres; the sqlite driver surfaces them as
// plain errors, so the message is checked as a fallback.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
